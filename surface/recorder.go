package surface

import "image/color"

// Circle is a recorded FillCircle command.
type Circle struct {
	X, Y, Radius float64
	Fill         color.NRGBA
}

// Recorder is an in-memory Surface and Viewport. It keeps the draw
// commands of the frame in progress and of the last presented frame.
// Used by headless runs and tests.
type Recorder struct {
	ViewportWidth  int
	ViewportHeight int

	width, height int
	current       []Circle
	last          []Circle

	Attaches  int
	Detaches  int
	Resizes   int
	Clears    int
	Presents  int
	drawCalls int
}

// NewRecorder creates a recorder whose viewport reports w x h.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{ViewportWidth: w, ViewportHeight: h}
}

// Size implements Viewport.
func (r *Recorder) Size() (int, int) {
	return r.ViewportWidth, r.ViewportHeight
}

// SetViewport changes what Size reports, simulating a viewport resize.
func (r *Recorder) SetViewport(w, h int) {
	r.ViewportWidth, r.ViewportHeight = w, h
}

// Attach implements Attacher.
func (r *Recorder) Attach() error {
	r.Attaches++
	return nil
}

// Detach implements Detacher.
func (r *Recorder) Detach() error {
	r.Detaches++
	return nil
}

// SetSize implements Surface.
func (r *Recorder) SetSize(width, height int) {
	r.width, r.height = width, height
	r.Resizes++
}

// Dimensions returns the surface size last set.
func (r *Recorder) Dimensions() (int, int) {
	return r.width, r.height
}

// Clear implements Surface.
func (r *Recorder) Clear() {
	r.current = r.current[:0]
	r.Clears++
}

// FillCircle implements Surface.
func (r *Recorder) FillCircle(x, y, radius float64, fill color.NRGBA) {
	r.current = append(r.current, Circle{X: x, Y: y, Radius: radius, Fill: fill})
	r.drawCalls++
}

// Present implements Surface.
func (r *Recorder) Present() {
	r.last = append(r.last[:0], r.current...)
	r.Presents++
}

// Frame returns a copy of the last presented frame.
func (r *Recorder) Frame() []Circle {
	return append([]Circle(nil), r.last...)
}

// DrawCalls returns the total number of FillCircle calls.
func (r *Recorder) DrawCalls() int {
	return r.drawCalls
}
