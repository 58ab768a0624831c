package spawn

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestEmitter_AccumulatesFractions(t *testing.T) {
	e := NewEmitter(Cone{MinSpeed: 1, MaxSpeed: 1, Friction: 1}, 10)
	dst := &collector{}
	rng := testRand()

	// 10/s at 0.25s per update: 2.5 per update.
	assert.Equal(t, 2, e.Update(dst, rng, 0.25, 0.25))
	assert.Equal(t, 3, e.Update(dst, rng, 0.5, 0.25))
	assert.Equal(t, 2, e.Update(dst, rng, 0.75, 0.25))
	assert.Len(t, dst.particles, 7)

	assert.Equal(t, float32(0.75), dst.particles[6].SpawnTime)
}

func TestEmitter_DisabledAndCapped(t *testing.T) {
	e := NewEmitter(Cone{MinSpeed: 1, MaxSpeed: 1, Friction: 1}, 100)
	dst := &collector{}

	e.Enabled = false
	assert.Zero(t, e.Update(dst, testRand(), 1, 1))

	e.Enabled = true
	e.MaxPerUpdate = 5
	assert.Equal(t, 5, e.Update(dst, testRand(), 1, 1))
	assert.Zero(t, e.Update(dst, testRand(), 1, 0), "zero dt")

	e.MoveTo(mgl32.Vec2{3, 4})
	e.Update(dst, testRand(), 2, 0.1)
	last := dst.particles[len(dst.particles)-1]
	assert.Equal(t, mgl32.Vec2{3, 4}, last.Position)
}

func TestEmitter_Reset(t *testing.T) {
	e := NewEmitter(Cone{MinSpeed: 1, MaxSpeed: 1, Friction: 1}, 1)
	dst := &collector{}
	assert.Zero(t, e.Update(dst, testRand(), 0, 0.9))
	e.Reset()
	assert.Zero(t, e.Update(dst, testRand(), 0, 0.9), "reset dropped the carried 0.9")
	assert.Equal(t, 1, e.Update(dst, testRand(), 0, 0.2))
}
