// Package components defines the ECS components that make up a particle.
package components

// Position represents a particle's location on the surface.
// Unbounded: a particle may sit up to one step outside the surface
// before its velocity reflects.
type Position struct {
	X, Y float64
}

// Velocity is the per-step displacement. Magnitude is fixed at creation;
// boundary reflection only flips the sign of a component.
type Velocity struct {
	X, Y float64
}

// Appearance holds the render properties fixed at creation.
type Appearance struct {
	Size    float64 // circle radius in pixels
	Opacity float64 // fill alpha in [0, 1]
}
