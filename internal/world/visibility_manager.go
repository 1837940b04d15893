package world

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/config"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/container"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/framework"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/handler"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/render"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/voidlist"
)

// ErrNoObserver is returned when the frame does not contain the local player.
var ErrNoObserver = errors.New("observer not in entity table")

// Source supplies observed frames. NextFrame returns io.EOF when exhausted.
type Source interface {
	NextFrame(ctx context.Context) (*model.Frame, error)
}

// Options tunes the pass loop.
type Options struct {
	Interval          time.Duration  // pass interval (default: 16ms)
	FlushInterval     time.Duration  // void list persistence interval (default: 5s)
	Workers           int            // parallel workers (default: runtime.NumCPU())
	ParallelThreshold int            // entity count before the worker pool is used (default: 1000)
	Store             voidlist.Store // optional, nil disables persistence
}

// PassStats summarizes one frame pass.
type PassStats struct {
	Frame     uint64
	Entities  int
	Shown     int
	Hidden    int
	Untouched int // no verdict: sentinel, forced visible or bound territory
	Skipped   int // no handler for the entity kind
	Failed    int // processing panicked
	Changes   render.Changes
}

// VisibilityManager runs the per-frame visibility pass over the entity table.
// One pass at a time; entities inside a pass may be processed in parallel.
type VisibilityManager struct {
	mu sync.Mutex // serializes passes

	runtime    *config.Runtime
	containers *container.Manager
	lists      *voidlist.Manager
	vis        *render.Manager
	handlers   *handler.Set
	table      *Table

	interval          time.Duration
	flushInterval     time.Duration
	numWorkers        int
	parallelThreshold int
	store             voidlist.Store
}

// NewVisibilityManager wires the pass over the given collaborators.
func NewVisibilityManager(rt *config.Runtime, containers *container.Manager, lists *voidlist.Manager, vis *render.Manager, opts Options) *VisibilityManager {
	if opts.Interval <= 0 {
		opts.Interval = 16 * time.Millisecond
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 5 * time.Second
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.ParallelThreshold < 1 {
		opts.ParallelThreshold = 1000
	}
	return &VisibilityManager{
		runtime:           rt,
		containers:        containers,
		lists:             lists,
		vis:               vis,
		handlers:          handler.NewSet(containers, lists, vis),
		table:             NewTable(),
		interval:          opts.Interval,
		flushInterval:     opts.FlushInterval,
		numWorkers:        opts.Workers,
		parallelThreshold: opts.ParallelThreshold,
		store:             opts.Store,
	}
}

// SetNumWorkers sets number of parallel workers for large tables.
func (vm *VisibilityManager) SetNumWorkers(n int) {
	if n < 1 {
		n = 1
	}
	vm.mu.Lock()
	vm.numWorkers = n
	vm.mu.Unlock()
}

// SetParallelThreshold sets the entity count at which the worker pool is used.
func (vm *VisibilityManager) SetParallelThreshold(n int) {
	if n < 1 {
		n = 1
	}
	vm.mu.Lock()
	vm.parallelThreshold = n
	vm.mu.Unlock()
}

// Start runs passes on every tick until ctx is cancelled or source is
// exhausted. Hidden entities are restored on the way out.
func (vm *VisibilityManager) Start(ctx context.Context, source Source) error {
	ticker := time.NewTicker(vm.interval)
	defer ticker.Stop()

	lastFlush := time.Now()
	defer func() {
		restored := vm.vis.RestoreAll()
		vm.flush(context.WithoutCancel(ctx))
		slog.Info("Visibility manager stopped", "restored", restored)
	}()

	slog.Info("Visibility manager started", "interval", vm.interval, "workers", vm.numWorkers)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Visibility manager stopping")
			return ctx.Err()

		case <-ticker.C:
			frame, err := source.NextFrame(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// A missed frame self-corrects on the next tick.
				slog.Warn("reading frame", "err", err)
				continue
			}

			if _, err := vm.RunPass(frame); err != nil {
				slog.Debug("pass skipped", "frame", frame.Seq, "err", err)
			}

			if time.Since(lastFlush) >= vm.flushInterval {
				vm.flush(ctx)
				lastFlush = time.Now()
			}
		}
	}
}

// Flush persists void list and whitelist hits.
func (vm *VisibilityManager) Flush(ctx context.Context) error {
	if vm.store == nil {
		return nil
	}
	return vm.lists.Flush(ctx, vm.store)
}

func (vm *VisibilityManager) flush(ctx context.Context) {
	if err := vm.Flush(ctx); err != nil {
		slog.Warn("flushing list entries", "err", err)
	}
}

// RunPass processes one frame: territory selection, per-entity decisions,
// container sweep and render state update.
func (vm *VisibilityManager) RunPass(frame *model.Frame) (PassStats, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	stats := PassStats{Frame: frame.Seq}

	if frame.Conditions.BetweenAreas() {
		return stats, fmt.Errorf("frame %d: zone transition in progress", frame.Seq)
	}

	vm.runtime.SelectTerritory(frame.Territory)
	settings := vm.runtime.Settings()

	vm.table.Reset(frame.Seq, frame.Entities)
	stats.Frame = vm.table.Frame()
	stats.Entities = vm.table.Len()

	observer, ok := vm.table.Lookup(frame.ObserverID)
	if !ok {
		return stats, fmt.Errorf("frame %d: %w", frame.Seq, ErrNoObserver)
	}

	env := &handler.Env{
		Settings:  settings,
		Framework: framework.NewSnapshot(observer, frame.Conditions, frame.PartyIDs, vm.table),
		Entities:  vm.table,
	}
	bound := frame.Conditions.BoundByDuty()

	vm.vis.BeginFrame()

	var c counters
	if stats.Entities < vm.parallelThreshold || vm.numWorkers == 1 {
		vm.processRange(env, observer, bound, 0, stats.Entities, &c)
	} else {
		vm.processParallel(env, observer, bound, stats.Entities, &c)
	}

	for _, u := range model.UnitTypes {
		vm.containers.Retain(u, vm.table.Contains)
	}
	vm.lists.RetainCache(vm.table.Contains)
	stats.Changes = vm.vis.EndFrame(vm.table.Contains)

	stats.Shown = int(c.shown.Load())
	stats.Hidden = int(c.hidden.Load())
	stats.Untouched = int(c.untouched.Load())
	stats.Skipped = int(c.skipped.Load())
	stats.Failed = int(c.failed.Load())

	slog.Debug("Visibility pass completed",
		"frame", stats.Frame,
		"territory", settings.Territory,
		"entities", stats.Entities,
		"shown", stats.Shown,
		"hidden", stats.Hidden,
		"untouched", stats.Untouched,
		"failed", stats.Failed)

	return stats, nil
}

type counters struct {
	shown, hidden, untouched, skipped, failed atomic.Int32
}

// processParallel splits the table into one chunk per worker.
func (vm *VisibilityManager) processParallel(env *handler.Env, observer *model.Entity, bound bool, n int, c *counters) {
	numWorkers := vm.numWorkers
	if numWorkers > n {
		numWorkers = n
	}
	chunkSize := n / numWorkers

	var g errgroup.Group
	for i := range numWorkers {
		start := i * chunkSize
		end := start + chunkSize
		// Last worker takes the remainder
		if i == numWorkers-1 {
			end = n
		}
		g.Go(func() error {
			vm.processRange(env, observer, bound, start, end, c)
			return nil
		})
	}
	_ = g.Wait()
}

func (vm *VisibilityManager) processRange(env *handler.Env, observer *model.Entity, bound bool, start, end int, c *counters) {
	for i := start; i < end; i++ {
		e, ok := vm.table.Get(vm.table.Handle(i))
		if !ok || e.ID == observer.ID {
			continue
		}
		// No verdict for objects without a real id: the renderer cannot address them.
		if !e.HasIdentity() {
			c.untouched.Add(1)
			continue
		}

		u, ok := model.UnitTypeOf(e)
		if !ok {
			c.skipped.Add(1)
			continue
		}

		v, err := vm.processEntity(env, u, e, observer, bound)
		if err != nil {
			c.failed.Add(1)
			slog.Warn("processing entity", "entity", e.ID, "unit", u.String(), "err", err)
			continue
		}

		switch v {
		case render.VerdictShow:
			c.shown.Add(1)
		case render.VerdictHide:
			c.hidden.Add(1)
		default:
			c.untouched.Add(1)
		}
	}
}

// processEntity isolates one entity: a panic is turned into an error so the
// rest of the frame is still processed.
func (vm *VisibilityManager) processEntity(env *handler.Env, u model.UnitType, e, observer *model.Entity, bound bool) (v render.Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			v = render.VerdictNone
		}
	}()

	h := vm.handlers.For(u)
	if h == nil {
		return render.VerdictNone, fmt.Errorf("no handler for unit %s", u)
	}
	return h.Process(env, e, observer, bound), nil
}
