// Package gpu implements the particle system's device and command recorder
// on top of WebGPU.
package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	frenzy "github.com/leod/particle-frenzy"
	"github.com/leod/particle-frenzy/shaders"
)

var (
	// ErrForeignResource is returned when a recorder is handed a resource
	// allocated by another backend.
	ErrForeignResource = errors.New("gpu: resource was not created by this backend")

	// ErrOutOfRange is returned when an update does not fit its buffer.
	ErrOutOfRange = errors.New("gpu: buffer update out of range")
)

// uniformBufferSize is the allocation size of the globals block. The encoded
// block is smaller; uniform bindings are padded to 256 bytes.
const uniformBufferSize = 256

// Device allocates particle pipelines and buffers on a WebGPU device.
type Device struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue
	Format wgpu.TextureFormat

	globalsLayout *wgpu.BindGroupLayout
}

var _ frenzy.Device = (*Device)(nil)

func NewDevice(device *wgpu.Device, format wgpu.TextureFormat) *Device {
	return &Device{
		Device: device,
		Queue:  device.GetQueue(),
		Format: format,
	}
}

type Pipeline struct {
	Render *wgpu.RenderPipeline
	layout *wgpu.PipelineLayout
	shader *wgpu.ShaderModule
}

func (p *Pipeline) Release() {
	p.Render.Release()
	p.layout.Release()
	p.shader.Release()
}

type VertexBuffer struct {
	Buffer   *wgpu.Buffer
	capacity int
}

func (b *VertexBuffer) Capacity() int { return b.capacity }

func (b *VertexBuffer) Release() { b.Buffer.Release() }

type GlobalsBuffer struct {
	Buffer    *wgpu.Buffer
	BindGroup *wgpu.BindGroup
}

func (g *GlobalsBuffer) Release() {
	g.BindGroup.Release()
	g.Buffer.Release()
}

func (d *Device) bindGroupLayout() (*wgpu.BindGroupLayout, error) {
	if d.globalsLayout != nil {
		return d.globalsLayout, nil
	}
	bgl, err := d.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ParticleGlobalsBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					MinBindingSize:   frenzy.GlobalsSize,
					HasDynamicOffset: false,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	d.globalsLayout = bgl
	return bgl, nil
}

// VertexLayout maps frenzy.ParticleLayout onto one instance-rate vertex buffer.
func VertexLayout() wgpu.VertexBufferLayout {
	layout := frenzy.ParticleLayout()
	attrs := make([]wgpu.VertexAttribute, len(layout))
	for i, a := range layout {
		attrs[i] = wgpu.VertexAttribute{
			Format:         vertexFormat(a.Format),
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: frenzy.ParticleStride,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes:  attrs,
	}
}

func vertexFormat(f frenzy.VertexFormat) wgpu.VertexFormat {
	switch f {
	case frenzy.Float32:
		return wgpu.VertexFormatFloat32
	case frenzy.Float32x2:
		return wgpu.VertexFormatFloat32x2
	case frenzy.Float32x3:
		return wgpu.VertexFormatFloat32x3
	default:
		return wgpu.VertexFormatUndefined
	}
}

// CreatePipeline compiles particles.wgsl into an alpha-blended render pipeline
// drawing one triangle-strip quad per particle instance.
func (d *Device) CreatePipeline() (frenzy.Pipeline, error) {
	shaderModule, err := d.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "ParticleShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ParticlesWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: particle shader: %w", err)
	}

	bgl, err := d.bindGroupLayout()
	if err != nil {
		shaderModule.Release()
		return nil, fmt.Errorf("gpu: globals layout: %w", err)
	}

	pipelineLayout, err := d.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "ParticlePipelineLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		shaderModule.Release()
		return nil, fmt.Errorf("gpu: pipeline layout: %w", err)
	}

	pipeline, err := d.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "ParticlePipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{VertexLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    d.Format,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						},
						Alpha: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						},
					},
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleStrip,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		pipelineLayout.Release()
		shaderModule.Release()
		return nil, fmt.Errorf("gpu: particle pipeline: %w", err)
	}

	return &Pipeline{Render: pipeline, layout: pipelineLayout, shader: shaderModule}, nil
}

func (d *Device) CreateVertexBuffer(label string, capacity int) (frenzy.VertexBuffer, error) {
	buf, err := d.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(capacity) * frenzy.ParticleStride,
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	return &VertexBuffer{Buffer: buf, capacity: capacity}, nil
}

func (d *Device) CreateGlobalsBuffer(label string) (frenzy.GlobalsBuffer, error) {
	bgl, err := d.bindGroupLayout()
	if err != nil {
		return nil, err
	}
	buf, err := d.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uniformBufferSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	bg, err := d.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + "/bindgroup",
		Layout: bgl,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  buf,
				Size:    uniformBufferSize,
			},
		},
	})
	if err != nil {
		buf.Release()
		return nil, err
	}
	return &GlobalsBuffer{Buffer: buf, BindGroup: bg}, nil
}

// Release frees the shared bind group layout. Resources handed out earlier
// are released by their owners.
func (d *Device) Release() {
	if d.globalsLayout != nil {
		d.globalsLayout.Release()
		d.globalsLayout = nil
	}
}
