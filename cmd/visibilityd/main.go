package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/capture"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/config"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/container"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/db"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/render"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/voidlist"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/world"
)

const DaemonConfigPath = "config/visibilityd.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := flag.String("config", DaemonConfigPath, "daemon config path")
	capturePath := flag.String("capture", "", "capture to replay (overrides config)")
	flag.Parse()

	if p := os.Getenv("VISIBILITY_CONFIG"); p != "" && *cfgPath == DaemonConfigPath {
		*cfgPath = p
	}
	cfg, err := config.LoadDaemon(*cfgPath)
	if err != nil {
		return fmt.Errorf("loading daemon config: %w", err)
	}
	if *capturePath != "" {
		cfg.CapturePath = *capturePath
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("visibilityd starting", "log_level", cfg.LogLevel, "storage", cfg.Storage)

	storage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.close()

	vis, err := storage.load(ctx)
	if err != nil {
		return fmt.Errorf("loading visibility settings: %w", err)
	}
	slog.Info("visibility settings loaded",
		"enabled", vis.Enabled,
		"advanced", vis.AdvancedEnabled,
		"territories", len(vis.Territories),
		"void", len(vis.VoidList),
		"whitelist", len(vis.Whitelist))

	if cfg.CapturePath == "" {
		return errors.New("no frame source: set capture_path or -capture")
	}
	file, err := capture.Read(cfg.CapturePath)
	if err != nil {
		return fmt.Errorf("reading capture: %w", err)
	}
	source, err := capture.NewPlayer(file, cfg.Loop)
	if err != nil {
		return fmt.Errorf("creating capture player: %w", err)
	}
	slog.Info("capture loaded", "path", cfg.CapturePath, "frames", len(file.Frames), "loop", cfg.Loop)

	rt := config.NewRuntime(vis)
	lists := voidlist.NewManager(vis.VoidList, vis.Whitelist)
	vm := world.NewVisibilityManager(rt,
		container.NewManager(),
		lists,
		render.NewManager(logRenderer{}),
		world.Options{
			Interval:          cfg.FrameInterval,
			FlushInterval:     cfg.FlushInterval,
			Workers:           cfg.Workers,
			ParallelThreshold: cfg.ParallelThreshold,
			Store:             storage.store,
		})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting visibility manager", "interval", cfg.FrameInterval)
		if err := vm.Start(gctx, source); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("visibility manager: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	snapshot := rt.Snapshot()
	snapshot.VoidList = lists.Entries(voidlist.KindVoid)
	snapshot.Whitelist = lists.Entries(voidlist.KindWhitelist)
	if err := storage.save(context.WithoutCancel(ctx), snapshot); err != nil {
		return fmt.Errorf("saving visibility settings: %w", err)
	}

	slog.Info("visibilityd stopped")
	return nil
}

// storage binds the configured backend to load/save/flush operations.
type storage struct {
	load  func(context.Context) (config.Visibility, error)
	save  func(context.Context, config.Visibility) error
	store voidlist.Store
	close func()
}

func openStorage(ctx context.Context, cfg config.Daemon) (*storage, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		dsn := cfg.Database.DSN()
		database, err := db.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, dsn); err != nil {
			database.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		repo := db.NewVisibilityRepository(database.Pool())
		return &storage{
			load:  repo.Load,
			save:  repo.Save,
			store: repo.Lists(),
			close: database.Close,
		}, nil

	default:
		path := cfg.VisibilityPath
		return &storage{
			load: func(context.Context) (config.Visibility, error) {
				return config.LoadVisibility(path)
			},
			save: func(_ context.Context, v config.Visibility) error {
				return config.SaveVisibility(path, v)
			},
			store: voidlist.NewFileStore(path),
			close: func() {},
		}, nil
	}
}

// logRenderer stands in for the client draw call when replaying captures.
type logRenderer struct{}

func (logRenderer) SetVisible(id model.EntityID, visible bool) {
	slog.Debug("render state", "id", id, "visible", visible)
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
