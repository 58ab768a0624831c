package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	frenzy "github.com/leod/particle-frenzy"
)

// Target is a color attachment draws are recorded against. View may change
// between frames; the Target pointer handed to frenzy.New stays the same.
type Target struct {
	View *wgpu.TextureView
	// Clear, when set, clears the attachment before the first draw of a frame.
	Clear *wgpu.Color
}

// Recorder implements frenzy.CommandRecorder. Buffer and globals updates go
// straight to the queue; draws are batched per target and encoded by Flush.
type Recorder struct {
	device *Device
	frame  *Target

	targets []*Target
	draws   map[*Target][]frenzy.DrawCall
	scratch []byte
}

var _ frenzy.CommandRecorder = (*Recorder)(nil)

// NewRecorder returns a recorder for one frame. frame, if non-nil, always
// receives a render pass so its Clear color applies even without draws.
func NewRecorder(device *Device, frame *Target) *Recorder {
	r := &Recorder{
		device: device,
		frame:  frame,
		draws:  make(map[*Target][]frenzy.DrawCall),
	}
	if frame != nil {
		r.targets = append(r.targets, frame)
	}
	return r
}

func (r *Recorder) UpdateBuffer(buf frenzy.VertexBuffer, offset int, ps []frenzy.Particle) error {
	vb, ok := buf.(*VertexBuffer)
	if !ok {
		return ErrForeignResource
	}
	if offset < 0 || offset+len(ps) > vb.capacity {
		return fmt.Errorf("%w: %d particles at %d, capacity %d", ErrOutOfRange, len(ps), offset, vb.capacity)
	}
	r.scratch = frenzy.EncodeParticles(r.scratch[:0], ps)
	return r.device.Queue.WriteBuffer(vb.Buffer, uint64(offset)*frenzy.ParticleStride, r.scratch)
}

func (r *Recorder) UpdateGlobals(buf frenzy.GlobalsBuffer, g frenzy.Globals) error {
	gb, ok := buf.(*GlobalsBuffer)
	if !ok {
		return ErrForeignResource
	}
	return r.device.Queue.WriteBuffer(gb.Buffer, 0, frenzy.EncodeGlobals(g))
}

func (r *Recorder) Draw(call frenzy.DrawCall) error {
	t, ok := call.Target.(*Target)
	if !ok || t == nil {
		return fmt.Errorf("%w: target %T", ErrForeignResource, call.Target)
	}
	if _, ok := call.Pipeline.(*Pipeline); !ok {
		return fmt.Errorf("%w: pipeline %T", ErrForeignResource, call.Pipeline)
	}
	if _, ok := call.Buffer.(*VertexBuffer); !ok {
		return fmt.Errorf("%w: buffer %T", ErrForeignResource, call.Buffer)
	}
	if _, ok := call.Globals.(*GlobalsBuffer); !ok {
		return fmt.Errorf("%w: globals %T", ErrForeignResource, call.Globals)
	}
	if _, seen := r.draws[t]; !seen && t != r.frame {
		r.targets = append(r.targets, t)
	}
	r.draws[t] = append(r.draws[t], call)
	return nil
}

// Flush encodes one render pass per target and submits the command buffer.
func (r *Recorder) Flush() error {
	encoder, err := r.device.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	defer encoder.Release()

	for _, t := range r.targets {
		if t.View == nil {
			continue
		}
		attachment := wgpu.RenderPassColorAttachment{
			View:    t.View,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}
		if t.Clear != nil {
			attachment.LoadOp = wgpu.LoadOpClear
			attachment.ClearValue = *t.Clear
		}
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{attachment},
		})
		for _, call := range r.draws[t] {
			vb := call.Buffer.(*VertexBuffer)
			pass.SetPipeline(call.Pipeline.(*Pipeline).Render)
			pass.SetBindGroup(0, call.Globals.(*GlobalsBuffer).BindGroup, nil)
			pass.SetVertexBuffer(0, vb.Buffer, 0, vb.Buffer.GetSize())
			pass.Draw(4, uint32(call.Count), 0, uint32(call.First))
		}
		if err := pass.End(); err != nil {
			return fmt.Errorf("gpu: particle pass: %w", err)
		}
		pass.Release()
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("gpu: finish encoder: %w", err)
	}
	defer cmd.Release()
	r.device.Queue.Submit(cmd)

	r.reset()
	return nil
}

func (r *Recorder) reset() {
	clear(r.draws)
	r.targets = r.targets[:0]
	if r.frame != nil {
		r.targets = append(r.targets, r.frame)
	}
}
