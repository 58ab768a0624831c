// Package spawn generates batches of particles from high-level emission
// parameters and queues them on a particle system.
package spawn

import (
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	frenzy "github.com/leod/particle-frenzy"
)

// Spawner receives generated particles. *frenzy.System implements it.
type Spawner interface {
	Spawn(p frenzy.Particle)
}

// Cone emits particles from Position in direction Orientation (radians),
// spread out by Spread radians to either side.
type Cone struct {
	SpawnTime   float32
	Position    mgl32.Vec2
	Orientation float32
	Spread      float32

	// Speed is drawn uniformly from [MinSpeed, MaxSpeed].
	MinSpeed float32
	MaxSpeed float32

	Angle           float32
	AngularVelocity float32
	// Friction decelerates particles; a particle lives speed/Friction seconds.
	Friction      float32
	Size          mgl32.Vec2
	AlphaExponent float32

	// Color picks the color of each particle from its angle and speed.
	// Nil means white.
	Color ColorFunc
}

// Burst returns a cone covering the full circle around pos.
func Burst(spawnTime float32, pos mgl32.Vec2, minSpeed, maxSpeed, friction float32, size mgl32.Vec2, color ColorFunc) Cone {
	return Cone{
		SpawnTime: spawnTime,
		Position:  pos,
		Spread:    math32.Pi,
		MinSpeed:  minSpeed,
		MaxSpeed:  maxSpeed,
		Friction:  friction,
		Size:      size,
		Color:     color,
	}
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

func uniform(rng *rand.Rand, lo, hi float32) float32 {
	if rng == nil {
		return lerp(lo, hi, rand.Float32())
	}
	return lerp(lo, hi, rng.Float32())
}

// Particle draws one particle from the cone.
func (c Cone) Particle(rng *rand.Rand) frenzy.Particle {
	angle := uniform(rng, c.Orientation-c.Spread, c.Orientation+c.Spread)
	speed := uniform(rng, c.MinSpeed, c.MaxSpeed)
	sin, cos := math32.Sincos(angle)

	color := mgl32.Vec3{1, 1, 1}
	if c.Color != nil {
		color = c.Color(angle, speed)
	}
	alphaExp := c.AlphaExponent
	if alphaExp == 0 {
		alphaExp = 1
	}

	return frenzy.Particle{
		SpawnTime:       c.SpawnTime,
		LifeTime:        speed / c.Friction,
		Position:        c.Position,
		Velocity:        mgl32.Vec2{cos * speed, sin * speed},
		Angle:           c.Angle,
		AngularVelocity: c.AngularVelocity,
		Friction:        c.Friction,
		Color:           color,
		AlphaExponent:   alphaExp,
		Size:            c.Size,
	}
}

// Generate returns n particles drawn from the cone. A nil rng uses the
// global math/rand source.
func (c Cone) Generate(rng *rand.Rand, n int) []frenzy.Particle {
	out := make([]frenzy.Particle, n)
	for i := range out {
		out[i] = c.Particle(rng)
	}
	return out
}

// Spawn queues n particles on dst using the global math/rand source.
func (c Cone) Spawn(dst Spawner, n int) {
	c.SpawnRand(dst, nil, n)
}

func (c Cone) SpawnRand(dst Spawner, rng *rand.Rand, n int) {
	for i := 0; i < n; i++ {
		dst.Spawn(c.Particle(rng))
	}
}
