package game

import (
	"math"
	"math/rand/v2"

	"github.com/playmatatu/arcade/internal/physics"
)

const (
	burstSize       = 18
	particleLife    = 0.8
	particleGravity = 400.0
	maxParticles    = burstSize * 30
)

// Particle is a visual-only spark. It never interacts with bodies.
type Particle struct {
	Position physics.Vec2 `json:"position"`
	Velocity physics.Vec2 `json:"-"`
	Life     float64      `json:"life"`
	Color    string       `json:"color"`
}

// ParticleField holds the sparks spawned by destruction and blasts. It is seeded so
// a replayed session produces the same sparks.
type ParticleField struct {
	particles []Particle
	rng       *rand.Rand
}

func NewParticleField(seed uint64) *ParticleField {
	return &ParticleField{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Burst spawns a ring of sparks at pos.
func (f *ParticleField) Burst(pos physics.Vec2, color string) {
	for i := 0; i < burstSize; i++ {
		angle := float64(i) / burstSize * 2 * math.Pi
		speed := 80 + f.rng.Float64()*80
		f.particles = append(f.particles, Particle{
			Position: pos,
			Velocity: physics.NewVec2(math.Cos(angle)*speed, math.Sin(angle)*speed),
			Life:     particleLife,
			Color:    color,
		})
	}
	if over := len(f.particles) - maxParticles; over > 0 {
		f.particles = append(f.particles[:0], f.particles[over:]...)
	}
}

// Step advances every spark and drops the expired ones.
func (f *ParticleField) Step(dt float64) {
	kept := f.particles[:0]
	for _, p := range f.particles {
		p.Position = p.Position.Plus(p.Velocity.Times(dt))
		p.Velocity = p.Velocity.Plus(physics.NewVec2(0, particleGravity*dt))
		p.Life -= dt
		if p.Life > 0 {
			kept = append(kept, p)
		}
	}
	f.particles = kept
}

func (f *ParticleField) Len() int {
	return len(f.particles)
}

// Particles returns a copy of the live sparks.
func (f *ParticleField) Particles() []Particle {
	if len(f.particles) == 0 {
		return nil
	}
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}
