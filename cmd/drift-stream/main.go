// Command drift-stream serves the particle backdrop to browsers: the
// animation runs in this process and every frame is pushed to connected
// pages over a websocket.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/frame"
	"github.com/pthm-cable/drift/game"
	"github.com/pthm-cable/drift/stream"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	addr := flag.String("addr", "", "Listen address (empty = use config)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	listen := cfg.Stream.Address
	if *addr != "" {
		listen = *addr
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := stream.NewHub(cfg.Screen.Width, cfg.Screen.Height, cfg.Stream.WriteTimeout)
	queue := frame.NewQueue()

	opts := game.OptionsFromConfig(cfg)
	opts.Seed = rngSeed
	opts.LogStats = *logStats
	opts.OutputDir = *outputDir

	anim, err := game.New(hub, hub, queue, opts)
	if err != nil {
		slog.Error("failed to create animation", "error", err)
		os.Exit(1)
	}
	if err := anim.Initialize(); err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	if err := anim.Start(); err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	// Page resizes arrive on connection goroutines; the pacer runs them
	// between steps.
	events := make(chan func(), 16)
	hub.OnViewport = func(width, height int) {
		select {
		case events <- func() {
			if err := anim.Resize(); err != nil {
				slog.Error("resize failed", "error", err)
				return
			}
			slog.Debug("viewport_resized", "width", width, "height", height, "particles", anim.ParticleCount())
		}:
		case <-ctx.Done():
		}
	}

	srv := &http.Server{Addr: listen, Handler: hub.Handler()}
	go func() {
		slog.Info("serving", "addr", listen, "seed", rngSeed)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	pacer := frame.NewPacer(queue, cfg.Derived.StreamFrameInterval)
	if err := pacer.Run(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("pacer stopped", "error", err)
	}

	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	if err := anim.Teardown(); err != nil {
		slog.Error("teardown failed", "error", err)
	}
	slog.Info("stopped", "frames", pacer.Frames(), "tick", anim.Tick())
}
