package spawn

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// Emitter spawns from a Cone continuously at Rate particles per second.
// Fractional particles carry over between updates.
type Emitter struct {
	Cone    Cone
	Rate    float32
	Enabled bool

	// MaxPerUpdate caps a single Update, e.g. after a long stall. 0 means
	// no cap.
	MaxPerUpdate int

	acc float32
}

func NewEmitter(cone Cone, rate float32) *Emitter {
	return &Emitter{Cone: cone, Rate: rate, Enabled: true}
}

// MoveTo changes the emission point without resetting the accumulator.
func (e *Emitter) MoveTo(pos mgl32.Vec2) { e.Cone.Position = pos }

// Update advances the emitter by dt seconds and spawns the particles due,
// stamped with spawn time now. It returns the number spawned.
func (e *Emitter) Update(dst Spawner, rng *rand.Rand, now, dt float32) int {
	if !e.Enabled || e.Rate <= 0 || dt <= 0 {
		return 0
	}
	e.acc += e.Rate * dt
	n := int(e.acc)
	if n == 0 {
		return 0
	}
	e.acc -= float32(n)
	if e.MaxPerUpdate > 0 && n > e.MaxPerUpdate {
		n = e.MaxPerUpdate
	}

	e.Cone.SpawnTime = now
	e.Cone.SpawnRand(dst, rng, n)
	return n
}

// Reset drops any carried-over fractional particle.
func (e *Emitter) Reset() { e.acc = 0 }
