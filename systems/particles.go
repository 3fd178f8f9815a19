// Package systems contains the ECS systems that drive the particle field.
package systems

import (
	"image/color"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drift/components"
	"github.com/pthm-cable/drift/config"
)

// Rand is the randomness source used when seeding particles.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Canvas receives the draw commands issued by a step. The fill alpha is the
// particle's opacity rounded to 8 bits.
type Canvas interface {
	FillCircle(x, y, radius float64, fill color.NRGBA)
}

// Bounds represents the surface extent particles reflect against.
type Bounds struct {
	Width, Height float64
}

// Particle is a copy of one particle's state.
type Particle struct {
	X, Y    float64
	VX, VY  float64
	Size    float64
	Opacity float64
}

// FieldParams controls population density and the creation distributions.
// Each range is sampled uniformly as [Min, Max).
type FieldParams struct {
	AreaPerParticle int
	MaxParticles    int
	SpeedMin        float64
	SpeedMax        float64
	SizeMin         float64
	SizeMax         float64
	OpacityMin      float64
	OpacityMax      float64
	Color           color.NRGBA // alpha is replaced by each particle's opacity
}

// DefaultFieldParams returns one particle per 10000 px², at most 100,
// velocity in [-1, 1), size in [1, 3), opacity in [0.2, 0.7), white.
func DefaultFieldParams() FieldParams {
	return FieldParams{
		AreaPerParticle: 10000,
		MaxParticles:    100,
		SpeedMin:        -1,
		SpeedMax:        1,
		SizeMin:         1,
		SizeMax:         3,
		OpacityMin:      0.2,
		OpacityMax:      0.7,
		Color:           color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// FieldParamsFromConfig converts the field section of the config.
func FieldParamsFromConfig(cfg config.FieldConfig) FieldParams {
	return FieldParams{
		AreaPerParticle: cfg.AreaPerParticle,
		MaxParticles:    cfg.MaxParticles,
		SpeedMin:        cfg.SpeedMin,
		SpeedMax:        cfg.SpeedMax,
		SizeMin:         cfg.SizeMin,
		SizeMax:         cfg.SizeMax,
		OpacityMin:      cfg.OpacityMin,
		OpacityMax:      cfg.OpacityMax,
		Color:           color.NRGBA{R: cfg.Color[0], G: cfg.Color[1], B: cfg.Color[2], A: 255},
	}
}

// TargetCount returns min(floor(width*height/AreaPerParticle), MaxParticles).
// Non-positive dimensions yield zero.
func (p FieldParams) TargetCount(width, height int) int {
	if width <= 0 || height <= 0 || p.AreaPerParticle <= 0 || p.MaxParticles <= 0 {
		return 0
	}
	w, h := int64(width), int64(height)
	// An area that does not fit in int64 is far past the cap
	if w > math.MaxInt64/h {
		return p.MaxParticles
	}
	n := w * h / int64(p.AreaPerParticle)
	if n > int64(p.MaxParticles) {
		return p.MaxParticles
	}
	return int(n)
}

// ParticleField owns the particle population. Particles live as entities in
// a private ECS world; nothing outside the field holds a reference to them.
type ParticleField struct {
	world  *ecs.World
	params FieldParams

	mapper *ecs.Map3[components.Position, components.Velocity, components.Appearance]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Appearance]

	count int
}

// NewParticleField creates an empty field.
func NewParticleField(params FieldParams) *ParticleField {
	world := ecs.NewWorld()
	return &ParticleField{
		world:  world,
		params: params,
		mapper: ecs.NewMap3[components.Position, components.Velocity, components.Appearance](world),
		filter: ecs.NewFilter3[components.Position, components.Velocity, components.Appearance](world),
	}
}

// Populate discards every existing particle and seeds TargetCount(width, height)
// new ones with positions uniform over [0, width) x [0, height).
func (f *ParticleField) Populate(width, height int, rng Rand) {
	f.clear()

	n := f.params.TargetCount(width, height)
	for i := 0; i < n; i++ {
		pos := components.Position{
			X: rng.Float64() * float64(width),
			Y: rng.Float64() * float64(height),
		}
		vel := components.Velocity{
			X: uniform(rng, f.params.SpeedMin, f.params.SpeedMax),
			Y: uniform(rng, f.params.SpeedMin, f.params.SpeedMax),
		}
		look := components.Appearance{
			Size:    uniform(rng, f.params.SizeMin, f.params.SizeMax),
			Opacity: uniform(rng, f.params.OpacityMin, f.params.OpacityMax),
		}
		f.mapper.NewEntity(&pos, &vel, &look)
	}
	f.count = n
}

// Add inserts a particle with explicit state.
func (f *ParticleField) Add(p Particle) {
	pos := components.Position{X: p.X, Y: p.Y}
	vel := components.Velocity{X: p.VX, Y: p.VY}
	look := components.Appearance{Size: p.Size, Opacity: p.Opacity}
	f.mapper.NewEntity(&pos, &vel, &look)
	f.count++
}

// Step advances every particle by its velocity, reflects velocity components
// whose coordinate left [0, bounds], and draws the particle onto dst.
// Positions are never clamped. Returns the number of reflected components.
func (f *ParticleField) Step(bounds Bounds, dst Canvas) int {
	reflections := 0
	fill := f.params.Color

	query := f.filter.Query()
	for query.Next() {
		pos, vel, look := query.Get()

		pos.X += vel.X
		pos.Y += vel.Y

		if pos.X < 0 || pos.X > bounds.Width {
			vel.X = -vel.X
			reflections++
		}
		if pos.Y < 0 || pos.Y > bounds.Height {
			vel.Y = -vel.Y
			reflections++
		}

		if dst != nil {
			fill.A = alpha(look.Opacity)
			dst.FillCircle(pos.X, pos.Y, look.Size, fill)
		}
	}
	return reflections
}

// Count returns the number of live particles.
func (f *ParticleField) Count() int {
	return f.count
}

// Particles returns a copy of every particle's state.
func (f *ParticleField) Particles() []Particle {
	out := make([]Particle, 0, f.count)
	query := f.filter.Query()
	for query.Next() {
		pos, vel, look := query.Get()
		out = append(out, Particle{
			X: pos.X, Y: pos.Y,
			VX: vel.X, VY: vel.Y,
			Size:    look.Size,
			Opacity: look.Opacity,
		})
	}
	return out
}

// clear removes all particle entities.
func (f *ParticleField) clear() {
	if f.count == 0 {
		return
	}

	// Collect first: entities cannot be removed while a query is open
	toRemove := make([]ecs.Entity, 0, f.count)
	query := f.filter.Query()
	for query.Next() {
		toRemove = append(toRemove, query.Entity())
	}
	for _, e := range toRemove {
		f.world.RemoveEntity(e)
	}
	f.count = 0
}

func uniform(rng Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// alpha converts an opacity in [0, 1] to an 8-bit alpha.
func alpha(opacity float64) uint8 {
	if opacity <= 0 {
		return 0
	}
	if opacity >= 1 {
		return 255
	}
	return uint8(opacity*255 + 0.5)
}
