package frenzy

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticleLayout(t *testing.T) {
	layout := ParticleLayout()
	require.Len(t, layout, 10)

	var offset uint64
	for i, a := range layout {
		assert.Equal(t, uint32(i), a.Location, a.Name)
		assert.Equal(t, offset, a.Offset, a.Name)
		offset += uint64(a.Format.Components() * 4)
	}
	assert.Equal(t, uint64(ParticleStride), offset)

	assert.Equal(t, "spawn_time", layout[0].Name)
	assert.Equal(t, Float32x3, layout[7].Format)
	assert.Equal(t, "size", layout[9].Name)

	layout[0].Name = "changed"
	assert.Equal(t, "spawn_time", ParticleLayout()[0].Name, "callers get a copy")
}

func TestEncodeParticles(t *testing.T) {
	p := Particle{
		SpawnTime:       1,
		LifeTime:        2,
		Position:        mgl32.Vec2{3, 4},
		Velocity:        mgl32.Vec2{5, 6},
		Angle:           7,
		AngularVelocity: 8,
		Friction:        9,
		Color:           mgl32.Vec3{10, 11, 12},
		AlphaExponent:   13,
		Size:            mgl32.Vec2{14, 15},
	}
	b := EncodeParticles(nil, []Particle{p, p})
	require.Len(t, b, 2*ParticleStride)
	assert.Equal(t, p, DecodeParticle(b))
	assert.Equal(t, p, DecodeParticle(b[ParticleStride:]))

	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, b[0:4], "spawn_time 1.0 little endian")
	assert.Equal(t, []byte{0, 0, 0x70, 0x41}, b[14*4:15*4], "size.y 15.0 little endian")
}

func TestParticle_DeathTime(t *testing.T) {
	assert.Equal(t, float32(3.5), Particle{SpawnTime: 1, LifeTime: 2.5}.DeathTime())
}

func TestParticle_At(t *testing.T) {
	p := Particle{
		SpawnTime:     10,
		LifeTime:      2,
		Position:      mgl32.Vec2{1, 1},
		Velocity:      mgl32.Vec2{4, 0},
		Friction:      2,
		AlphaExponent: 1,
	}

	st := p.At(9)
	assert.False(t, st.Alive, "not yet spawned")

	st = p.At(10)
	require.True(t, st.Alive)
	assert.InDelta(t, 1, st.Position.X(), 1e-5)
	assert.InDelta(t, 1, st.Alpha, 1e-5)

	// x(t) = 4t - t^2 until the particle stops at t=2.
	st = p.At(11)
	require.True(t, st.Alive)
	assert.InDelta(t, 1+3, st.Position.X(), 1e-5)
	assert.InDelta(t, 1, st.Position.Y(), 1e-5)
	assert.InDelta(t, 0.5, st.Alpha, 1e-5)

	assert.False(t, p.At(12).Alive, "expires at spawn + life")
}

func TestParticle_AtStopsUnderFriction(t *testing.T) {
	p := Particle{
		LifeTime: 10,
		Velocity: mgl32.Vec2{0, 2},
		Friction: 1,
	}
	// Stops at t=2 after travelling 2*2 - 0.5*1*4 = 2.
	assert.InDelta(t, 2, p.At(2).Position.Y(), 1e-5)
	assert.InDelta(t, 2, p.At(5).Position.Y(), 1e-5)
}

func TestParticle_AtAlphaExponent(t *testing.T) {
	p := Particle{LifeTime: 4, AlphaExponent: 2, AngularVelocity: 1, Angle: 0.5}
	st := p.At(2)
	assert.InDelta(t, 0.25, st.Alpha, 1e-5)
	assert.InDelta(t, 2.5, st.Angle, 1e-5)

	p.AlphaExponent = 0
	assert.InDelta(t, 0.5, p.At(2).Alpha, 1e-5, "zero exponent falls back to linear fade")
}

func TestEncodeGlobals(t *testing.T) {
	b := EncodeGlobals(Globals{Transform: mgl32.Ident4(), Time: 1})
	require.Len(t, b, GlobalsSize)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, b[0:4], "m[0][0]")
	assert.Equal(t, []byte{0, 0, 0, 0}, b[4:8], "m[0][1]")
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, b[60:64], "m[3][3]")
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, b[64:68], "time")
	assert.Equal(t, make([]byte, 12), b[68:80], "padding")
}
