// Synthetic capture generator for load testing visibilityd.
//
// Usage:
//
//	go run ./cmd/gencapture -players 2000 -frames 600 -out captures/crowd.yaml.zst
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/capture"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
)

func main() {
	var (
		out       = flag.String("out", "crowd.yaml.zst", "output path (.zst compresses)")
		seed      = flag.Uint64("seed", 1, "random seed")
		frames    = flag.Int("frames", 300, "number of frames")
		players   = flag.Int("players", 500, "players around the observer")
		territory = flag.Uint("territory", 132, "territory type")
		world     = flag.Uint("world", 73, "home world of every player")
		bound     = flag.Bool("bound", false, "observer bound by duty")
		combat    = flag.Bool("combat", false, "observer in combat every other frame")
	)
	flag.Parse()

	file, err := capture.Synthesize(capture.Scene{
		Seed:      *seed,
		Frames:    *frames,
		Players:   *players,
		Territory: model.TerritoryID(*territory),
		World:     model.WorldID(*world),
		Bound:     *bound,
		Combat:    *combat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "synthesizing capture: %v\n", err)
		os.Exit(1)
	}

	if err := capture.Write(*out, file); err != nil {
		fmt.Fprintf(os.Stderr, "writing capture: %v\n", err)
		os.Exit(1)
	}

	slog.Info("capture written", "path", *out, "frames", len(file.Frames), "entities", len(file.Frames[0].Entities))
}
