package renderer

import (
	"fmt"
	"log/slog"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Controller is the part of the animation the HUD drives and reports on.
type Controller interface {
	Running() bool
	Start() error
	Stop()
	ParticleCount() int
	Tick() int64
}

// HUD renders the pause/resume button and a status line.
type HUD struct {
	anim    Controller
	visible bool
}

// NewHUD creates a HUD for anim. It starts visible.
func NewHUD(anim Controller) *HUD {
	return &HUD{anim: anim, visible: true}
}

// ToggleVisible shows or hides the HUD.
func (h *HUD) ToggleVisible() {
	h.visible = !h.visible
}

// TogglePause stops a running animation or restarts a stopped one.
func (h *HUD) TogglePause() {
	if h.anim.Running() {
		h.anim.Stop()
		return
	}
	if err := h.anim.Start(); err != nil {
		slog.Error("failed to resume", "error", err)
	}
}

// Draw renders the HUD. Must be called between rl.BeginDrawing and rl.EndDrawing.
func (h *HUD) Draw() {
	if !h.visible {
		return
	}

	running := h.anim.Running()
	if gui.Button(rl.Rectangle{X: 10, Y: 10, Width: 90, Height: 26}, toggleText(running, "Pause", "Resume")) {
		h.TogglePause()
	}

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Tick: %d | FPS: %d", h.anim.ParticleCount(), h.anim.Tick(), rl.GetFPS()),
		110, 16, 16, rl.LightGray,
	)
	if !running {
		rl.DrawText("PAUSED", 10, 44, 16, rl.Yellow)
	}

	rl.DrawText("[Space] pause  [H] hide HUD  [F11] fullscreen", 10, int32(rl.GetScreenHeight())-25, 14, rl.Gray)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
