package main

import (
	"flag"
	"image/color"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/frame"
	"github.com/pthm-cable/drift/game"
	"github.com/pthm-cable/drift/renderer"
	"github.com/pthm-cable/drift/surface"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in frames (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.OptionsFromConfig(cfg)
	opts.Seed = rngSeed
	opts.LogStats = *logStats
	opts.OutputDir = *outputDir
	if *statsWindow > 0 {
		opts.StatsWindow = *statsWindow
	}

	if *headless {
		runHeadless(cfg, opts, int64(*maxTicks))
		return
	}
	runWindow(cfg, opts, int64(*maxTicks))
}

// start initializes the animation and schedules the first step. Exits on
// failure.
func start(anim *game.Animation) {
	if err := anim.Initialize(); err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	if err := anim.Start(); err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
}

func teardown(anim *game.Animation) {
	if err := anim.Teardown(); err != nil {
		slog.Error("teardown failed", "error", err)
	}
}

// runHeadless steps the animation against an in-memory surface as fast as
// possible. Without -max-ticks it runs until killed.
func runHeadless(cfg *config.Config, opts game.Options, maxTicks int64) {
	rec := surface.NewRecorder(cfg.Screen.Width, cfg.Screen.Height)
	queue := frame.NewQueue()

	anim, err := game.New(rec, rec, queue, opts)
	if err != nil {
		slog.Error("failed to create animation", "error", err)
		os.Exit(1)
	}
	defer teardown(anim)

	start(anim)

	slog.Info("starting headless run",
		"seed", opts.Seed,
		"width", cfg.Screen.Width,
		"height", cfg.Screen.Height,
		"stats_window", opts.StatsWindow,
		"max_ticks", maxTicks,
	)

	for queue.Flush() > 0 {
		if maxTicks > 0 && anim.Tick() >= maxTicks {
			slog.Info("max ticks reached", "tick", anim.Tick())
			return
		}
	}
}

// runWindow drives the animation from the raylib window loop: each display
// refresh polls for resizes, runs the scheduled step and composes the frame.
func runWindow(cfg *config.Config, opts game.Options, maxTicks int64) {
	if cfg.Screen.Resizable {
		rl.SetConfigFlags(rl.FlagWindowResizable)
	}
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	window := renderer.NewWindow(color.NRGBA{A: 255})
	queue := frame.NewQueue()

	anim, err := game.New(window, window, queue, opts)
	if err != nil {
		slog.Error("failed to create animation", "error", err)
		os.Exit(1)
	}
	// Release the render texture before the window closes
	defer teardown(anim)

	start(anim)

	hud := renderer.NewHUD(anim)

	slog.Info("starting window",
		"seed", opts.Seed,
		"width", cfg.Screen.Width,
		"height", cfg.Screen.Height,
		"frame_interval", cfg.Derived.ScreenFrameInterval,
	)

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeySpace) {
			hud.TogglePause()
		}
		if rl.IsKeyPressed(rl.KeyH) {
			hud.ToggleVisible()
		}
		if rl.IsKeyPressed(rl.KeyF11) {
			rl.ToggleFullscreen()
		}

		if window.Resized() {
			if err := anim.Resize(); err != nil {
				slog.Error("resize failed", "error", err)
			} else {
				w, h := anim.Size()
				slog.Debug("viewport_resized", "width", w, "height", h, "particles", anim.ParticleCount())
			}
		}

		queue.Flush()

		rl.BeginDrawing()
		window.Draw()
		hud.Draw()
		rl.EndDrawing()

		if maxTicks > 0 && anim.Tick() >= maxTicks {
			slog.Info("max ticks reached", "tick", anim.Tick())
			break
		}
	}
}
