package frenzy

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Device allocates the GPU resources a System needs. Implementations live in
// the gpu (WebGPU) and soft (CPU) packages.
type Device interface {
	// CreatePipeline compiles the particle shading stages.
	CreatePipeline() (Pipeline, error)
	// CreateVertexBuffer allocates a dynamically updatable buffer of capacity particles.
	CreateVertexBuffer(label string, capacity int) (VertexBuffer, error)
	// CreateGlobalsBuffer allocates the uniform block described by Globals.
	CreateGlobalsBuffer(label string) (GlobalsBuffer, error)
}

// CommandRecorder receives the commands of one frame. The caller owns it and
// decides when Flush submits the recorded work.
type CommandRecorder interface {
	UpdateBuffer(buf VertexBuffer, offset int, ps []Particle) error
	UpdateGlobals(buf GlobalsBuffer, g Globals) error
	Draw(call DrawCall) error
	Flush() error
}

// RenderTarget is an opaque handle to the surface draws are recorded against.
type RenderTarget any

type Pipeline interface {
	Release()
}

type VertexBuffer interface {
	Capacity() int
	Release()
}

type GlobalsBuffer interface {
	Release()
}

// DrawCall covers the slot range [First, First+Count) of Buffer.
type DrawCall struct {
	Pipeline Pipeline
	Buffer   VertexBuffer
	Globals  GlobalsBuffer
	Target   RenderTarget
	First    int
	Count    int
}

// Globals is the per-frame uniform block shared by all draws.
type Globals struct {
	Transform mgl32.Mat4
	Time      float32
}

// GlobalsSize is the encoded size of Globals: mat4 followed by time, padded to 16 bytes.
const GlobalsSize = 80

// EncodeGlobals packs g in the layout of the WGSL Globals struct:
//
//	struct Globals {
//	  transform: mat4x4<f32>; -- 64
//	  time: f32;              -- 68
//	} -> 80 bytes (padded)
func EncodeGlobals(g Globals) []byte {
	buf := make([]byte, GlobalsSize)
	for i, v := range g.Transform {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[64:], math.Float32bits(g.Time))
	return buf
}
