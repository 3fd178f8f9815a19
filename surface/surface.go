// Package surface keeps a drawing surface sized to the viewport and
// triggers particle re-population whenever that size changes.
package surface

import "image/color"

// Surface is the 2D pixel drawing target provided by the host.
type Surface interface {
	// SetSize sets the pixel dimensions of the surface.
	SetSize(width, height int)
	// Clear erases the whole surface and begins a frame.
	Clear()
	// FillCircle draws a filled circle centred on (x, y).
	FillCircle(x, y, radius float64, fill color.NRGBA)
	// Present ends the frame begun by Clear.
	Present()
}

// Viewport reports the current size of the rendering viewport.
type Viewport interface {
	Size() (width, height int)
}

// Attacher is implemented by surfaces that must be attached to a host
// container before use. Attach is called exactly once.
type Attacher interface {
	Attach() error
}

// Detacher is implemented by surfaces that release host resources on teardown.
type Detacher interface {
	Detach() error
}

// Repopulator rebuilds the particle population for new surface dimensions.
type Repopulator interface {
	Repopulate(width, height int)
}

// RepopulatorFunc adapts a function to the Repopulator interface.
type RepopulatorFunc func(width, height int)

// Repopulate calls f(width, height).
func (f RepopulatorFunc) Repopulate(width, height int) {
	f(width, height)
}
