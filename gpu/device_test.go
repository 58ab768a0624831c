package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	frenzy "github.com/leod/particle-frenzy"
)

func TestVertexLayout(t *testing.T) {
	layout := VertexLayout()
	assert.Equal(t, uint64(frenzy.ParticleStride), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeInstance, layout.StepMode)

	attrs := frenzy.ParticleLayout()
	require.Len(t, layout.Attributes, len(attrs))
	for i, a := range layout.Attributes {
		assert.Equal(t, attrs[i].Offset, a.Offset, attrs[i].Name)
		assert.Equal(t, attrs[i].Location, a.ShaderLocation, attrs[i].Name)
		assert.NotEqual(t, wgpu.VertexFormatUndefined, a.Format, attrs[i].Name)
	}
	assert.Equal(t, wgpu.VertexFormatFloat32, layout.Attributes[0].Format, "spawn_time")
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[2].Format, "position")
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[7].Format, "color")
}

func TestVertexFormat_Unknown(t *testing.T) {
	assert.Equal(t, wgpu.VertexFormatUndefined, vertexFormat(frenzy.VertexFormat(99)))
}

type foreign struct{}

func (foreign) Capacity() int { return 1 }
func (foreign) Release()      {}

func TestRecorder_RejectsForeignResources(t *testing.T) {
	rec := NewRecorder(&Device{}, nil)

	assert.ErrorIs(t, rec.UpdateBuffer(foreign{}, 0, nil), ErrForeignResource)
	assert.ErrorIs(t, rec.UpdateGlobals(foreign{}, frenzy.Globals{}), ErrForeignResource)

	target := &Target{}
	call := frenzy.DrawCall{
		Pipeline: &Pipeline{},
		Buffer:   &VertexBuffer{capacity: 4},
		Globals:  &GlobalsBuffer{},
		Target:   target,
		Count:    4,
	}
	missingTarget := call
	missingTarget.Target = "screen"
	assert.ErrorIs(t, rec.Draw(missingTarget), ErrForeignResource)

	wrongBuffer := call
	wrongBuffer.Buffer = foreign{}
	assert.ErrorIs(t, rec.Draw(wrongBuffer), ErrForeignResource)

	wrongPipeline := call
	wrongPipeline.Pipeline = foreign{}
	assert.ErrorIs(t, rec.Draw(wrongPipeline), ErrForeignResource)
}

func TestRecorder_UpdateOutOfRange(t *testing.T) {
	rec := NewRecorder(&Device{}, nil)
	vb := &VertexBuffer{capacity: 2}

	assert.ErrorIs(t, rec.UpdateBuffer(vb, 1, make([]frenzy.Particle, 2)), ErrOutOfRange)
	assert.ErrorIs(t, rec.UpdateBuffer(vb, -1, make([]frenzy.Particle, 1)), ErrOutOfRange)
}
