package frenzy

import (
	"time"
)

// Clock tracks frame time for render loops. Particle spawn times and the
// now argument of Render are both expressed in Seconds since Start.
type Clock struct {
	Start time.Time
	Time  time.Time
	Dt    time.Duration
}

func NewClock() *Clock {
	now := time.Now()
	return &Clock{Start: now, Time: now}
}

// Tick advances the clock to the current wall time.
func (c *Clock) Tick() {
	c.tickTo(time.Now())
}

func (c *Clock) tickTo(now time.Time) {
	c.Dt = now.Sub(c.Time)
	c.Time = now
}

// Seconds is the time of the last Tick relative to Start.
func (c *Clock) Seconds() float32 {
	return float32(c.Time.Sub(c.Start).Seconds())
}
