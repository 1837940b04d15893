package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
)

// Version is the capture format version written by Write.
const Version = 1

// ErrEmpty is returned when a capture contains no frames.
var ErrEmpty = errors.New("capture has no frames")

// File is a recording of observed frames.
type File struct {
	Version int           `yaml:"version"`
	Frames  []model.Frame `yaml:"frames"`
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// Read loads a capture. Files ending in .zst are zstd-compressed YAML.
func Read(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening capture %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if compressed(path) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	return Decode(r)
}

// Decode parses a capture from r and normalizes every frame.
func Decode(r io.Reader) (*File, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding capture: %w", err)
	}
	if file.Version > Version {
		return nil, fmt.Errorf("capture version %d not supported (max %d)", file.Version, Version)
	}
	if len(file.Frames) == 0 {
		return nil, ErrEmpty
	}
	for i := range file.Frames {
		if unknown := file.Frames[i].Normalize(); len(unknown) > 0 {
			slog.Warn("unknown conditions in capture", "frame", file.Frames[i].Seq, "conditions", unknown)
		}
	}
	return &file, nil
}

// Write stores a capture, compressing it when path ends in .zst.
func Write(path string, file *File) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating capture %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing capture %s: %w", path, cerr)
		}
	}()

	var w io.Writer = f
	if compressed(path) {
		zw, zerr := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zerr != nil {
			return fmt.Errorf("zstd writer %s: %w", path, zerr)
		}
		defer func() {
			if cerr := zw.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("flushing zstd %s: %w", path, cerr)
			}
		}()
		w = zw
	}

	out := File{Version: file.Version, Frames: make([]model.Frame, len(file.Frames))}
	if out.Version == 0 {
		out.Version = Version
	}
	for i, fr := range file.Frames {
		if len(fr.Condition) == 0 {
			fr.Condition = fr.Conditions.Names()
		}
		fr.Entities = slices.Clone(fr.Entities)
		for j := range fr.Entities {
			fr.Entities[j].Normalize()
		}
		out.Frames[i] = fr
	}
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encoding capture %s: %w", path, err)
	}
	return enc.Close()
}

// Player replays the frames of a capture as a frame source.
// With loop set, the capture restarts after the last frame and sequence
// numbers keep increasing.
type Player struct {
	mu     sync.Mutex
	frames []model.Frame
	pos    int
	seq    uint64
	loop   bool
}

// NewPlayer creates a player over file.
func NewPlayer(file *File, loop bool) (*Player, error) {
	if file == nil || len(file.Frames) == 0 {
		return nil, ErrEmpty
	}
	return &Player{frames: file.Frames, loop: loop}, nil
}

// NextFrame returns a copy of the next frame, or io.EOF at the end.
func (p *Player) NextFrame(ctx context.Context) (*model.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pos >= len(p.frames) {
		if !p.loop {
			return nil, io.EOF
		}
		p.pos = 0
	}

	f := p.frames[p.pos]
	p.pos++
	p.seq++

	f.Seq = p.seq
	f.Entities = slices.Clone(f.Entities)
	f.PartyIDs = slices.Clone(f.PartyIDs)
	return &f, nil
}
