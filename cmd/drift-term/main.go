// Command drift-term runs the particle backdrop in a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/frame"
	"github.com/pthm-cable/drift/game"
	"github.com/pthm-cable/drift/terminal"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logFile := flag.String("log-file", "drift-term.log", "Log destination (the terminal itself is the screen)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	if err := run(*configPath, *logFile, *logStats, *outputDir, *seed, *debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, logFile string, logStats bool, outputDir string, seed int64, debug bool) error {
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})))

	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	surf := terminal.NewSurface(screen, cfg.Terminal.CellWidth, cfg.Terminal.CellHeight, color.NRGBA{A: 255})
	queue := frame.NewQueue()

	opts := game.OptionsFromConfig(cfg)
	opts.Seed = seed
	opts.LogStats = logStats
	opts.OutputDir = outputDir

	anim, err := game.New(surf, surf, queue, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := anim.Teardown(); err != nil {
			slog.Error("teardown failed", "error", err)
		}
	}()

	if err := anim.Initialize(); err != nil {
		return err
	}
	if err := anim.Start(); err != nil {
		return err
	}

	slog.Info("starting terminal backdrop",
		"seed", seed,
		"cell_width", cfg.Terminal.CellWidth,
		"cell_height", cfg.Terminal.CellHeight,
		"target_fps", cfg.Terminal.TargetFPS,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Input is read on its own goroutine; everything that touches the
	// animation is handed to the pacer so it runs between steps.
	events := make(chan func(), 16)
	go pollInput(ctx, screen, anim, events, cancel)

	pacer := frame.NewPacer(queue, cfg.Derived.TerminalFrameInterval)
	err = pacer.Run(ctx, events)
	slog.Info("stopped", "frames", pacer.Frames(), "tick", anim.Tick())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func pollInput(ctx context.Context, screen tcell.Screen, anim *game.Animation, events chan<- func(), quit context.CancelFunc) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			// Screen finalized
			return
		}

		var fn func()
		switch terminal.Decode(ev) {
		case terminal.ActionQuit:
			quit()
			return
		case terminal.ActionTogglePause:
			fn = func() {
				if anim.Running() {
					anim.Stop()
					return
				}
				if err := anim.Start(); err != nil {
					slog.Error("failed to resume", "error", err)
				}
			}
		case terminal.ActionResize:
			fn = func() {
				screen.Sync()
				if err := anim.Resize(); err != nil {
					slog.Error("resize failed", "error", err)
					return
				}
				w, h := anim.Size()
				slog.Debug("viewport_resized", "width", w, "height", h, "particles", anim.ParticleCount())
			}
		default:
			continue
		}

		select {
		case events <- fn:
		case <-ctx.Done():
			return
		}
	}
}
