// Package renderer draws the particle backdrop into a raylib window.
package renderer

import (
	"errors"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ErrNoWindow is returned by Attach when the raylib window is not open.
var ErrNoWindow = errors.New("renderer: window not initialized")

// Window is a raylib-backed surface. Frames are drawn into an off-screen
// render texture the size of the surface, which Draw composes onto the
// screen every display refresh so the last frame persists while paused.
type Window struct {
	target     rl.RenderTexture2D
	hasTarget  bool
	width      int32
	height     int32
	background rl.Color

	attached bool
	drawing  bool
}

// NewWindow creates a surface cleared to background each frame.
func NewWindow(background color.NRGBA) *Window {
	return &Window{
		background: rl.NewColor(background.R, background.G, background.B, background.A),
	}
}

// Attach binds the surface to the open raylib window.
// Must be called after rl.InitWindow.
func (w *Window) Attach() error {
	if !rl.IsWindowReady() {
		return ErrNoWindow
	}
	w.attached = true
	return nil
}

// Detach releases the render texture.
func (w *Window) Detach() error {
	w.unloadTarget()
	w.attached = false
	return nil
}

// Size reports the current screen size, which the surface follows.
func (w *Window) Size() (int, int) {
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}

// Resized reports whether the window was resized since the last frame.
func (w *Window) Resized() bool {
	return rl.IsWindowResized()
}

// SetSize recreates the render texture at width x height. Like resizing a
// canvas, this discards the previous contents even if the size is unchanged.
func (w *Window) SetSize(width, height int) {
	w.unloadTarget()
	w.width, w.height = int32(width), int32(height)
	if width <= 0 || height <= 0 {
		return
	}
	w.target = rl.LoadRenderTexture(w.width, w.height)
	w.hasTarget = true

	// Start from the background rather than uninitialised texture memory
	rl.BeginTextureMode(w.target)
	rl.ClearBackground(w.background)
	rl.EndTextureMode()
}

// Clear begins a frame on the render texture.
func (w *Window) Clear() {
	if !w.hasTarget {
		return
	}
	rl.BeginTextureMode(w.target)
	rl.ClearBackground(w.background)
	w.drawing = true
}

// FillCircle draws a filled circle in the frame begun by Clear.
func (w *Window) FillCircle(x, y, radius float64, fill color.NRGBA) {
	if !w.drawing {
		return
	}
	rl.DrawCircleV(
		rl.Vector2{X: float32(x), Y: float32(y)},
		float32(radius),
		rl.NewColor(fill.R, fill.G, fill.B, fill.A),
	)
}

// Present ends the frame begun by Clear.
func (w *Window) Present() {
	if !w.drawing {
		return
	}
	rl.EndTextureMode()
	w.drawing = false
}

// Draw composes the last presented frame onto the screen.
// Must be called between rl.BeginDrawing and rl.EndDrawing.
func (w *Window) Draw() {
	rl.ClearBackground(w.background)
	if !w.hasTarget {
		return
	}
	// Render textures are stored upside down, so flip the source rect
	src := rl.Rectangle{
		X:      0,
		Y:      float32(w.height),
		Width:  float32(w.width),
		Height: -float32(w.height),
	}
	dst := rl.Rectangle{
		X:      0,
		Y:      0,
		Width:  float32(w.width),
		Height: float32(w.height),
	}
	rl.DrawTexturePro(w.target.Texture, src, dst, rl.Vector2{}, 0, rl.White)
}

func (w *Window) unloadTarget() {
	if w.drawing {
		rl.EndTextureMode()
		w.drawing = false
	}
	if w.hasTarget {
		rl.UnloadRenderTexture(w.target)
		w.hasTarget = false
	}
}
