package frenzy

import (
	"fmt"
	"strings"
)

// OverflowPolicy decides what happens when spawning outruns the ring.
type OverflowPolicy int

const (
	// OverflowOverwrite wraps the cursor and overwrites the oldest slots, even
	// when their buffer is still being drawn.
	OverflowOverwrite OverflowPolicy = iota
	// OverflowGrow inserts a fresh buffer instead of wrapping into a live one.
	OverflowGrow
	// OverflowDrop bounds the pending queue and discards spawns beyond it.
	OverflowDrop
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowOverwrite:
		return "overwrite"
	case OverflowGrow:
		return "grow"
	case OverflowDrop:
		return "drop"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(s) {
	case "overwrite", "":
		return OverflowOverwrite, nil
	case "grow":
		return OverflowGrow, nil
	case "drop":
		return OverflowDrop, nil
	}
	return 0, fmt.Errorf("%w: unknown overflow policy %q", ErrInvalidConfig, s)
}

// DeathTimePolicy decides how a buffer's cached death time is maintained.
type DeathTimePolicy int

const (
	// DeathTimeAccumulate only ever raises the cached death time.
	DeathTimeAccumulate DeathTimePolicy = iota
	// DeathTimePerGeneration resets the cached death time whenever the cursor
	// re-enters the buffer at slot 0.
	DeathTimePerGeneration
)

func (p DeathTimePolicy) String() string {
	switch p {
	case DeathTimeAccumulate:
		return "accumulate"
	case DeathTimePerGeneration:
		return "generation"
	default:
		return fmt.Sprintf("DeathTimePolicy(%d)", int(p))
	}
}

func ParseDeathTimePolicy(s string) (DeathTimePolicy, error) {
	switch strings.ToLower(s) {
	case "accumulate", "":
		return DeathTimeAccumulate, nil
	case "generation":
		return DeathTimePerGeneration, nil
	}
	return 0, fmt.Errorf("%w: unknown death time policy %q", ErrInvalidConfig, s)
}

// Config configures a System.
type Config struct {
	// BufferCapacity is the number of particle slots per buffer.
	BufferCapacity int
	// InitialBuffers is the number of buffers allocated by New.
	InitialBuffers int
	// MaxBuffers caps growth under OverflowGrow. Zero means unlimited.
	MaxBuffers int
	// MaxPending bounds the spawn queue under OverflowDrop. It may not exceed
	// InitialBuffers*BufferCapacity.
	MaxPending int

	Overflow  OverflowPolicy
	DeathTime DeathTimePolicy

	// Label prefixes GPU resource labels. Defaults to the system ID.
	Label  string
	Logger Logger
}

func DefaultConfig() Config {
	return Config{
		BufferCapacity: 1000,
		InitialBuffers: 10,
	}
}

func (c Config) Validate() error {
	if c.InitialBuffers <= 0 {
		return ErrNoBuffers
	}
	if c.BufferCapacity <= 0 {
		return ErrInvalidCapacity
	}
	if c.MaxBuffers < 0 || c.MaxPending < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidConfig)
	}
	if c.MaxBuffers != 0 && c.MaxBuffers < c.InitialBuffers {
		return fmt.Errorf("%w: max buffers %d below initial buffers %d", ErrInvalidConfig, c.MaxBuffers, c.InitialBuffers)
	}
	if c.Overflow == OverflowDrop && c.MaxPending == 0 {
		return fmt.Errorf("%w: drop policy needs MaxPending", ErrInvalidConfig)
	}
	if ring := c.InitialBuffers * c.BufferCapacity; c.Overflow == OverflowDrop && c.MaxPending > ring {
		// A larger queue would wrap onto itself within one flush.
		return fmt.Errorf("%w: max pending %d exceeds ring of %d slots", ErrInvalidConfig, c.MaxPending, ring)
	}
	switch c.Overflow {
	case OverflowOverwrite, OverflowGrow, OverflowDrop:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.Overflow)
	}
	switch c.DeathTime {
	case DeathTimeAccumulate, DeathTimePerGeneration:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.DeathTime)
	}
	return nil
}
