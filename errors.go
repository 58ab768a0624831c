package frenzy

import "errors"

var (
	// ErrNoBuffers is returned by New when no initial buffers are requested.
	ErrNoBuffers = errors.New("frenzy: particle system needs at least one buffer")

	// ErrInvalidCapacity is returned by New when the buffer capacity is not positive.
	ErrInvalidCapacity = errors.New("frenzy: buffer capacity must be positive")

	// ErrInvalidConfig wraps any other inconsistent configuration.
	ErrInvalidConfig = errors.New("frenzy: invalid configuration")

	// ErrBufferWrite wraps a rejected buffer update during Render.
	ErrBufferWrite = errors.New("frenzy: buffer write failed")
)
