package frenzy

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Particle stores the initial state and lifetime of one particle.
// Field order and types match the instance layout in particles.wgsl.
type Particle struct {
	SpawnTime float32
	LifeTime  float32

	Position        mgl32.Vec2
	Velocity        mgl32.Vec2
	Angle           float32
	AngularVelocity float32
	Friction        float32

	Color         mgl32.Vec3
	AlphaExponent float32

	Size mgl32.Vec2
}

// ParticleStride is the size of one encoded Particle in bytes.
const ParticleStride = 15 * 4

// DeathTime is the absolute instant at which the particle expires.
func (p Particle) DeathTime() float32 {
	return p.SpawnTime + p.LifeTime
}

// VertexFormat names the wire format of one attribute.
type VertexFormat int

const (
	Float32 VertexFormat = iota + 1
	Float32x2
	Float32x3
)

func (f VertexFormat) Components() int {
	switch f {
	case Float32:
		return 1
	case Float32x2:
		return 2
	case Float32x3:
		return 3
	default:
		return 0
	}
}

func (f VertexFormat) String() string {
	switch f {
	case Float32:
		return "float32"
	case Float32x2:
		return "float32x2"
	case Float32x3:
		return "float32x3"
	default:
		return "undefined"
	}
}

// Attribute describes one field of the particle instance layout.
type Attribute struct {
	Name     string
	Format   VertexFormat
	Offset   uint64
	Location uint32
}

var particleLayout = buildLayout([]struct {
	name   string
	format VertexFormat
}{
	{"spawn_time", Float32},
	{"life_time", Float32},
	{"position", Float32x2},
	{"velocity", Float32x2},
	{"angle", Float32},
	{"angular_velocity", Float32},
	{"friction", Float32},
	{"color", Float32x3},
	{"alpha_exponent", Float32},
	{"size", Float32x2},
})

func buildLayout(fields []struct {
	name   string
	format VertexFormat
}) []Attribute {
	attrs := make([]Attribute, len(fields))
	var offset uint64
	for i, f := range fields {
		attrs[i] = Attribute{Name: f.name, Format: f.format, Offset: offset, Location: uint32(i)}
		offset += uint64(f.format.Components() * 4)
	}
	return attrs
}

// ParticleLayout returns the ordered attribute list of an encoded Particle.
// The returned slice is a copy.
func ParticleLayout() []Attribute {
	out := make([]Attribute, len(particleLayout))
	copy(out, particleLayout)
	return out
}

// EncodeParticles appends the little-endian wire form of ps to dst.
func EncodeParticles(dst []byte, ps []Particle) []byte {
	for i := range ps {
		dst = appendParticle(dst, &ps[i])
	}
	return dst
}

func appendParticle(dst []byte, p *Particle) []byte {
	put := func(v float32) {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	put(p.SpawnTime)
	put(p.LifeTime)
	put(p.Position[0])
	put(p.Position[1])
	put(p.Velocity[0])
	put(p.Velocity[1])
	put(p.Angle)
	put(p.AngularVelocity)
	put(p.Friction)
	put(p.Color[0])
	put(p.Color[1])
	put(p.Color[2])
	put(p.AlphaExponent)
	put(p.Size[0])
	put(p.Size[1])
	return dst
}

// DecodeParticle reads one particle from its wire form. b must hold at least
// ParticleStride bytes.
func DecodeParticle(b []byte) Particle {
	get := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return Particle{
		SpawnTime:       get(0),
		LifeTime:        get(1),
		Position:        mgl32.Vec2{get(2), get(3)},
		Velocity:        mgl32.Vec2{get(4), get(5)},
		Angle:           get(6),
		AngularVelocity: get(7),
		Friction:        get(8),
		Color:           mgl32.Vec3{get(9), get(10), get(11)},
		AlphaExponent:   get(12),
		Size:            mgl32.Vec2{get(13), get(14)},
	}
}

// ParticleState is a particle evaluated at a point in time.
type ParticleState struct {
	Position mgl32.Vec2
	Angle    float32
	Alpha    float32
	Alive    bool
}

// At extrapolates the particle to time now. Friction decelerates the particle
// along its initial direction until it stops; particles.wgsl does the same math.
func (p Particle) At(now float32) ParticleState {
	t := now - p.SpawnTime
	st := ParticleState{
		Alive: t >= 0 && t < p.LifeTime,
	}
	if !st.Alive {
		return st
	}

	speed := p.Velocity.Len()
	travel := speed * t
	if p.Friction > 0 && speed > 0 {
		tStop := math32.Min(t, speed/p.Friction)
		travel = speed*tStop - 0.5*p.Friction*tStop*tStop
	}
	st.Position = p.Position
	if speed > 0 {
		st.Position = p.Position.Add(p.Velocity.Mul(travel / speed))
	}
	st.Angle = p.Angle + p.AngularVelocity*t

	percent := t / p.LifeTime
	exp := p.AlphaExponent
	if exp <= 0 {
		exp = 1
	}
	st.Alpha = math32.Pow(1-percent, exp)
	return st
}
