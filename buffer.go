package frenzy

// Buffer is one fixed-capacity slot array of the ring. The System owns it;
// callers only get read access.
type Buffer struct {
	vbuf  VertexBuffer
	slots []Particle

	// Time at which the longest-living particle written into the buffer dies.
	maxDeathTime float32
	// Number of times the cursor entered the buffer at slot 0.
	generation uint64

	// Written during the flush in progress.
	touched bool
}

func newBuffer(vbuf VertexBuffer, capacity int) *Buffer {
	return &Buffer{
		vbuf:  vbuf,
		slots: make([]Particle, capacity),
	}
}

func (b *Buffer) Capacity() int { return len(b.slots) }

func (b *Buffer) MaxDeathTime() float32 { return b.maxDeathTime }

func (b *Buffer) Generation() uint64 { return b.generation }

// Live reports whether the buffer may still hold a visible particle at now.
func (b *Buffer) Live(now float32) bool { return b.maxDeathTime > now }

// Slot returns the host copy of slot i.
func (b *Buffer) Slot(i int) Particle { return b.slots[i] }

// VertexBuffer returns the device buffer backing b.
func (b *Buffer) VertexBuffer() VertexBuffer { return b.vbuf }

// write copies run into the host mirror at offset and folds its death times
// into the cached maximum. It returns how many overwritten slots still held a
// particle alive at now.
func (b *Buffer) write(offset int, run []Particle, now float32, policy DeathTimePolicy) (overwritten int) {
	var runMax float32
	for i, p := range run {
		if old := b.slots[offset+i]; old.LifeTime > 0 && old.DeathTime() > now {
			overwritten++
		}
		b.slots[offset+i] = p
		if d := p.DeathTime(); i == 0 || d > runMax {
			runMax = d
		}
	}

	newGeneration := offset == 0
	if newGeneration {
		b.generation++
	}

	switch {
	case newGeneration && policy == DeathTimePerGeneration:
		// Slots past the run still hold the previous generation.
		b.maxDeathTime = max(runMax, b.maxDeathTimeFrom(offset+len(run)))
	case runMax > b.maxDeathTime:
		b.maxDeathTime = runMax
	}
	b.touched = true
	return overwritten
}

// maxDeathTimeFrom is the latest death time among written slots [from, C).
func (b *Buffer) maxDeathTimeFrom(from int) float32 {
	var m float32
	for _, p := range b.slots[from:] {
		if p.LifeTime > 0 && p.DeathTime() > m {
			m = p.DeathTime()
		}
	}
	return m
}

func (b *Buffer) release() {
	if b.vbuf != nil {
		b.vbuf.Release()
	}
}
