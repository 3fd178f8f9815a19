package surface

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/drift/systems"
)

// Lifecycle errors.
var (
	ErrAlreadyInitialized = errors.New("surface: already initialized")
	ErrNotInitialized     = errors.New("surface: not initialized")
)

// Manager owns the surface's pixel dimensions and keeps them in step with
// the viewport. Every size change fully replaces the particle population.
type Manager struct {
	viewport Viewport
	surface  Surface
	repop    Repopulator

	width, height int
	initialized   bool
	attached      bool
}

// NewManager creates a manager. Nothing is read or drawn until Initialize.
func NewManager(viewport Viewport, s Surface, repop Repopulator) *Manager {
	return &Manager{
		viewport: viewport,
		surface:  s,
		repop:    repop,
	}
}

// Initialize attaches the surface (once per manager lifetime), sizes it to
// the viewport and triggers the first population.
func (m *Manager) Initialize() error {
	if m.initialized {
		return ErrAlreadyInitialized
	}
	if !m.attached {
		if a, ok := m.surface.(Attacher); ok {
			if err := a.Attach(); err != nil {
				return fmt.Errorf("attaching surface: %w", err)
			}
		}
		m.attached = true
	}
	m.initialized = true
	m.sync()
	return nil
}

// OnViewportResize re-reads the viewport, resizes the surface and triggers
// a full re-population. It is not debounced: each call resizes and
// re-populates, even if the dimensions did not change.
func (m *Manager) OnViewportResize() error {
	if !m.initialized {
		return ErrNotInitialized
	}
	m.sync()
	return nil
}

// Teardown releases the surface. Calling it more than once is harmless.
func (m *Manager) Teardown() error {
	if !m.initialized {
		return nil
	}
	m.initialized = false
	if d, ok := m.surface.(Detacher); ok {
		if err := d.Detach(); err != nil {
			return fmt.Errorf("detaching surface: %w", err)
		}
	}
	return nil
}

// Initialized reports whether the manager is between Initialize and Teardown.
func (m *Manager) Initialized() bool {
	return m.initialized
}

// Width returns the surface width in pixels.
func (m *Manager) Width() int {
	return m.width
}

// Height returns the surface height in pixels.
func (m *Manager) Height() int {
	return m.height
}

// Bounds returns the surface extent particles reflect against.
func (m *Manager) Bounds() systems.Bounds {
	return systems.Bounds{Width: float64(m.width), Height: float64(m.height)}
}

func (m *Manager) sync() {
	w, h := m.viewport.Size()
	m.width = max(w, 0)
	m.height = max(h, 0)
	m.surface.SetSize(m.width, m.height)
	if m.repop != nil {
		m.repop.Repopulate(m.width, m.height)
	}
}
