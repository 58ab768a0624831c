package frenzy

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Cursor is the next free write position of the ring.
type Cursor struct {
	Buffer int
	Offset int
}

// Stats holds cumulative counters of a System.
type Stats struct {
	Spawned     uint64 // particles accepted by Spawn
	Dropped     uint64 // particles rejected by a bounded queue
	Written     uint64 // slots sent through UpdateBuffer
	Overwritten uint64 // written slots whose previous particle was still alive
	Grown       uint64 // buffers allocated after New
	Draws       uint64
	Skipped     uint64 // dead buffers not drawn
}

// System manages a ring of particle buffers and renders the live ones.
//
// A System is not safe for concurrent use. Spawn and Render are meant to be
// called from the same render loop.
type System struct {
	id     uuid.UUID
	cfg    Config
	log    Logger
	label  string
	device Device
	target RenderTarget

	pipeline  Pipeline
	globals   GlobalsBuffer
	transform mgl32.Mat4

	// Ring buffer of particles.
	buffers []*Buffer
	// New particles that will be inserted with the next Render call.
	pending []Particle
	// Position at which the next particle will be inserted.
	cursor Cursor

	stats              Stats
	droppedSinceRender uint64
}

// New compiles the particle pipeline on device and pre-allocates
// cfg.InitialBuffers buffers of cfg.BufferCapacity slots each.
func New(device Device, target RenderTarget, cfg Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &System{
		id:        uuid.New(),
		cfg:       cfg,
		label:     cfg.Label,
		device:    device,
		target:    target,
		transform: mgl32.Ident4(),
		buffers:   make([]*Buffer, 0, cfg.InitialBuffers),
	}
	if s.label == "" {
		s.label = "frenzy-" + s.id.String()[:8]
	}
	s.log = Scoped(cfg.Logger, s.label)

	var err error
	s.pipeline, err = device.CreatePipeline()
	if err != nil {
		return nil, fmt.Errorf("frenzy: create pipeline: %w", err)
	}
	s.globals, err = device.CreateGlobalsBuffer(s.label + "/globals")
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("frenzy: create globals buffer: %w", err)
	}
	for i := 0; i < cfg.InitialBuffers; i++ {
		b, err := s.newBuffer()
		if err != nil {
			s.Release()
			return nil, err
		}
		s.buffers = append(s.buffers, b)
	}

	s.log.Infof("%d buffers x %d particles, overflow=%s, deathtime=%s",
		cfg.InitialBuffers, cfg.BufferCapacity, cfg.Overflow, cfg.DeathTime)
	return s, nil
}

func (s *System) newBuffer() (*Buffer, error) {
	label := fmt.Sprintf("%s/buffer-%d", s.label, len(s.buffers))
	vbuf, err := s.device.CreateVertexBuffer(label, s.cfg.BufferCapacity)
	if err != nil {
		return nil, fmt.Errorf("frenzy: create %s: %w", label, err)
	}
	return newBuffer(vbuf, s.cfg.BufferCapacity), nil
}

func (s *System) ID() uuid.UUID { return s.id }

func (s *System) Config() Config { return s.cfg }

func (s *System) Cursor() Cursor { return s.cursor }

func (s *System) Pending() int { return len(s.pending) }

func (s *System) Stats() Stats { return s.stats }

// Buffers returns the ring in index order.
func (s *System) Buffers() []*Buffer {
	out := make([]*Buffer, len(s.buffers))
	copy(out, s.buffers)
	return out
}

// SetTransform sets the projection × view matrix uploaded with the next Render.
func (s *System) SetTransform(m mgl32.Mat4) { s.transform = m }

// Spawn queues a particle to be written by the next Render call.
func (s *System) Spawn(p Particle) {
	if s.cfg.Overflow == OverflowDrop && len(s.pending) >= s.cfg.MaxPending {
		s.stats.Dropped++
		s.droppedSinceRender++
		return
	}
	s.pending = append(s.pending, p)
	s.stats.Spawned++
}

func (s *System) SpawnAll(ps ...Particle) {
	for _, p := range ps {
		s.Spawn(p)
	}
}

// Render writes all pending particles into the ring and records one draw per
// buffer that may still hold a living particle at now. Commands go into rec;
// submitting them is up to the caller.
func (s *System) Render(rec CommandRecorder, now float32) error {
	if err := rec.UpdateGlobals(s.globals, Globals{Transform: s.transform, Time: now}); err != nil {
		return fmt.Errorf("%w: globals: %w", ErrBufferWrite, err)
	}

	if s.droppedSinceRender > 0 {
		s.log.Warnf("dropped %d particles, queue bound %d", s.droppedSinceRender, s.cfg.MaxPending)
		s.droppedSinceRender = 0
	}

	if err := s.flush(rec, now); err != nil {
		return err
	}
	return s.draw(rec, now)
}

func (s *System) flush(rec CommandRecorder, now float32) error {
	if len(s.pending) == 0 {
		return nil
	}
	for _, b := range s.buffers {
		b.touched = false
	}

	var (
		written, overwritten int
		limitWarned          bool
	)
	capacity := s.cfg.BufferCapacity
	i := 0
	for i < len(s.pending) {
		if s.cursor.Offset == 0 && s.cfg.Overflow == OverflowGrow {
			grown, err := s.growIfOccupied(now, &limitWarned)
			if err != nil {
				s.pending = append(s.pending[:0], s.pending[i:]...)
				return err
			}
			if grown {
				s.stats.Grown++
			}
		}

		// We always point at a buffer that has some space left.
		b := s.buffers[s.cursor.Buffer]
		space := capacity - s.cursor.Offset
		n := min(space, len(s.pending)-i)
		run := s.pending[i : i+n]

		if err := rec.UpdateBuffer(b.vbuf, s.cursor.Offset, run); err != nil {
			s.pending = append(s.pending[:0], s.pending[i:]...)
			return fmt.Errorf("%w: buffer %d offset %d: %w", ErrBufferWrite, s.cursor.Buffer, s.cursor.Offset, err)
		}
		overwritten += b.write(s.cursor.Offset, run, now, s.cfg.DeathTime)
		written += n

		if n == space {
			// Filled up this buffer completely, move on to the next one.
			s.cursor = Cursor{Buffer: (s.cursor.Buffer + 1) % len(s.buffers)}
		} else {
			s.cursor.Offset += n
		}
		i += n
	}

	s.pending = s.pending[:0]
	s.stats.Written += uint64(written)
	s.stats.Overwritten += uint64(overwritten)

	if overwritten > 0 {
		s.log.Warnf("overwrote %d live particles, ring holds %d", overwritten, len(s.buffers)*capacity)
	}
	s.log.Debugf("flushed %d particles, cursor at (%d, %d)", written, s.cursor.Buffer, s.cursor.Offset)
	return nil
}

// growIfOccupied inserts a new buffer at the cursor when the buffer about to
// be entered is still live or already written during this flush. The
// occupied buffer keeps its place in ring order, right after the new one.
func (s *System) growIfOccupied(now float32, limitWarned *bool) (bool, error) {
	next := s.buffers[s.cursor.Buffer]
	if !next.touched && !next.Live(now) {
		return false, nil
	}
	if s.cfg.MaxBuffers != 0 && len(s.buffers) >= s.cfg.MaxBuffers {
		if !*limitWarned {
			s.log.Warnf("buffer limit %d reached, overwriting live buffer %d", s.cfg.MaxBuffers, s.cursor.Buffer)
			*limitWarned = true
		}
		return false, nil
	}

	b, err := s.newBuffer()
	if err != nil {
		return false, err
	}
	at := s.cursor.Buffer
	s.buffers = append(s.buffers, nil)
	copy(s.buffers[at+1:], s.buffers[at:])
	s.buffers[at] = b

	s.log.Infof("grew ring to %d buffers", len(s.buffers))
	return true, nil
}

func (s *System) draw(rec CommandRecorder, now float32) error {
	for i, b := range s.buffers {
		if !b.Live(now) {
			s.stats.Skipped++
			continue
		}
		err := rec.Draw(DrawCall{
			Pipeline: s.pipeline,
			Buffer:   b.vbuf,
			Globals:  s.globals,
			Target:   s.target,
			First:    0,
			Count:    b.Capacity(),
		})
		if err != nil {
			return fmt.Errorf("frenzy: draw buffer %d: %w", i, err)
		}
		s.stats.Draws++
	}
	return nil
}

// Release frees every device resource owned by the System.
func (s *System) Release() {
	for _, b := range s.buffers {
		b.release()
	}
	s.buffers = nil
	if s.globals != nil {
		s.globals.Release()
		s.globals = nil
	}
	if s.pipeline != nil {
		s.pipeline.Release()
		s.pipeline = nil
	}
}
