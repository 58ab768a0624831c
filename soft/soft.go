// Package soft is a CPU implementation of the particle system's device and
// command recorder. It rasterizes into an image.RGBA with the same shading
// model as particles.wgsl, which makes it usable in tests and on terminals.
package soft

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	frenzy "github.com/leod/particle-frenzy"
)

var (
	// ErrOutOfRange is returned when an update does not fit its buffer.
	ErrOutOfRange = errors.New("soft: buffer update out of range")

	// ErrForeignResource is returned for resources created by another backend.
	ErrForeignResource = errors.New("soft: resource was not created by this backend")
)

// Device owns the color target all draws land in.
type Device struct {
	img *image.RGBA

	// Background is written over the whole image at the start of every Flush.
	Background color.RGBA
	// FailUpdates, when set, is returned by every UpdateBuffer call. It
	// simulates a device rejecting writes, e.g. after device loss.
	FailUpdates error

	buffers int
}

var _ frenzy.Device = (*Device)(nil)

func NewDevice(width, height int) *Device {
	return &Device{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		Background: color.RGBA{A: 0xff},
	}
}

func (d *Device) Image() *image.RGBA { return d.img }

// Resize replaces the color target. Existing content is discarded.
func (d *Device) Resize(width, height int) {
	if width == d.img.Rect.Dx() && height == d.img.Rect.Dy() {
		return
	}
	d.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

type Pipeline struct{}

func (*Pipeline) Release() {}

type VertexBuffer struct {
	Label string
	slots []frenzy.Particle
}

func (b *VertexBuffer) Capacity() int { return len(b.slots) }

func (b *VertexBuffer) Release() { b.slots = nil }

// Slot returns the device copy of slot i.
func (b *VertexBuffer) Slot(i int) frenzy.Particle { return b.slots[i] }

type GlobalsBuffer struct {
	Label  string
	Values frenzy.Globals
}

func (*GlobalsBuffer) Release() {}

func (d *Device) CreatePipeline() (frenzy.Pipeline, error) { return &Pipeline{}, nil }

func (d *Device) CreateVertexBuffer(label string, capacity int) (frenzy.VertexBuffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("soft: vertex buffer %q: capacity %d", label, capacity)
	}
	d.buffers++
	return &VertexBuffer{Label: label, slots: make([]frenzy.Particle, capacity)}, nil
}

func (d *Device) CreateGlobalsBuffer(label string) (frenzy.GlobalsBuffer, error) {
	return &GlobalsBuffer{Label: label}, nil
}

// BufferCount is the number of vertex buffers allocated so far.
func (d *Device) BufferCount() int { return d.buffers }

// Recorder implements frenzy.CommandRecorder against a Device.
type Recorder struct {
	device *Device
	draws  []frenzy.DrawCall

	// Counters of commands since the last Flush.
	Updates int
	Written int
	Draws   int
}

var _ frenzy.CommandRecorder = (*Recorder)(nil)

func (d *Device) NewRecorder() *Recorder {
	return &Recorder{device: d}
}

func (r *Recorder) UpdateBuffer(buf frenzy.VertexBuffer, offset int, ps []frenzy.Particle) error {
	if r.device.FailUpdates != nil {
		return r.device.FailUpdates
	}
	vb, ok := buf.(*VertexBuffer)
	if !ok {
		return ErrForeignResource
	}
	if offset < 0 || offset+len(ps) > len(vb.slots) {
		return fmt.Errorf("%w: %d particles at %d, capacity %d", ErrOutOfRange, len(ps), offset, len(vb.slots))
	}
	copy(vb.slots[offset:], ps)
	r.Updates++
	r.Written += len(ps)
	return nil
}

func (r *Recorder) UpdateGlobals(buf frenzy.GlobalsBuffer, g frenzy.Globals) error {
	gb, ok := buf.(*GlobalsBuffer)
	if !ok {
		return ErrForeignResource
	}
	gb.Values = g
	return nil
}

func (r *Recorder) Draw(call frenzy.DrawCall) error {
	vb, ok := call.Buffer.(*VertexBuffer)
	if !ok {
		return ErrForeignResource
	}
	if _, ok := call.Globals.(*GlobalsBuffer); !ok {
		return ErrForeignResource
	}
	if call.First < 0 || call.First+call.Count > len(vb.slots) {
		return fmt.Errorf("%w: draw [%d, %d) of %d", ErrOutOfRange, call.First, call.First+call.Count, len(vb.slots))
	}
	r.draws = append(r.draws, call)
	r.Draws++
	return nil
}

// Flush clears the image to Background and rasterizes every recorded draw.
func (r *Recorder) Flush() error {
	img := r.device.img
	bg := r.device.Background
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = bg.R
		img.Pix[i+1] = bg.G
		img.Pix[i+2] = bg.B
		img.Pix[i+3] = bg.A
	}

	for _, call := range r.draws {
		vb := call.Buffer.(*VertexBuffer)
		g := call.Globals.(*GlobalsBuffer).Values
		for _, p := range vb.slots[call.First : call.First+call.Count] {
			rasterize(img, p, g)
		}
	}

	r.draws = r.draws[:0]
	r.Updates, r.Written, r.Draws = 0, 0, 0
	return nil
}
