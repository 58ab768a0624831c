package frenzy

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.BufferCapacity)
	assert.Equal(t, 10, cfg.InitialBuffers)
	assert.Equal(t, OverflowOverwrite, cfg.Overflow)
	assert.Equal(t, DeathTimeAccumulate, cfg.DeathTime)
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero buffers", Config{BufferCapacity: 1}, ErrNoBuffers},
		{"zero capacity", Config{InitialBuffers: 1}, ErrInvalidCapacity},
		{"negative limit", Config{BufferCapacity: 1, InitialBuffers: 1, MaxPending: -1}, ErrInvalidConfig},
		{"limit below initial", Config{BufferCapacity: 1, InitialBuffers: 4, MaxBuffers: 2}, ErrInvalidConfig},
		{"drop without bound", Config{BufferCapacity: 1, InitialBuffers: 1, Overflow: OverflowDrop}, ErrInvalidConfig},
		{"unknown overflow", Config{BufferCapacity: 1, InitialBuffers: 1, Overflow: 7}, ErrInvalidConfig},
		{"unknown death time", Config{BufferCapacity: 1, InitialBuffers: 1, DeathTime: 7}, ErrInvalidConfig},
		{"grow unlimited", Config{BufferCapacity: 1, InitialBuffers: 1, Overflow: OverflowGrow}, nil},
		{"drop bound beyond ring", Config{BufferCapacity: 2, InitialBuffers: 1, Overflow: OverflowDrop, MaxPending: 5}, ErrInvalidConfig},
		{"drop bounded", Config{BufferCapacity: 4, InitialBuffers: 2, Overflow: OverflowDrop, MaxPending: 8}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParsePolicies(t *testing.T) {
	for _, p := range []OverflowPolicy{OverflowOverwrite, OverflowGrow, OverflowDrop} {
		got, err := ParseOverflowPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	for _, p := range []DeathTimePolicy{DeathTimeAccumulate, DeathTimePerGeneration} {
		got, err := ParseDeathTimePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParseOverflowPolicy("GROW")
	require.NoError(t, err)
	assert.Equal(t, OverflowGrow, got)

	_, err = ParseOverflowPolicy("explode")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = ParseDeathTimePolicy("forever")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, "OverflowPolicy(9)", OverflowPolicy(9).String())
}

func TestClock(t *testing.T) {
	c := NewClock()
	assert.Zero(t, c.Seconds())

	c.tickTo(c.Start.Add(1500 * time.Millisecond))
	assert.InDelta(t, 1.5, c.Seconds(), 1e-6)
	assert.Equal(t, 1500*time.Millisecond, c.Dt)

	c.tickTo(c.Start.Add(2 * time.Second))
	assert.Equal(t, 500*time.Millisecond, c.Dt)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
	l.Debugf("ignored %d", 1)
}

func TestDefaultLogger_Debug(t *testing.T) {
	l := NewDefaultLogger("test", false)
	assert.False(t, l.DebugEnabled())
	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
}

func TestDefaultLogger_Scopes(t *testing.T) {
	var out, errOut bytes.Buffer
	root := NewWriterLogger(&out, &errOut, "frenzy", false)
	fx := root.With("fx")

	fx.Infof("hello %d", 1)
	fx.Warnf("careful")
	fx.Debugf("hidden")
	assert.Contains(t, out.String(), "INFO frenzy/fx: hello 1")
	assert.Contains(t, errOut.String(), "WARN frenzy/fx: careful")
	assert.NotContains(t, out.String(), "hidden")

	root.SetDebug(true)
	assert.True(t, fx.DebugEnabled(), "children share the debug switch")
	fx.Debugf("shown")
	assert.Contains(t, out.String(), "DEBUG frenzy/fx: shown")
}

type lineLogger struct {
	nopLogger
	lines []string
}

func (l *lineLogger) Warnf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestScoped_WrapsForeignLoggers(t *testing.T) {
	l := &lineLogger{}
	Scoped(l, "fx").Warnf("dropped %d", 3)
	assert.Equal(t, []string{"fx: dropped 3"}, l.lines)

	assert.NotPanics(t, func() { Scoped(nil, "fx").Infof("ignored") })
}

func TestSystem_LogsUnderItsLabel(t *testing.T) {
	var out, errOut bytes.Buffer
	cfg := Config{
		BufferCapacity: 2,
		InitialBuffers: 1,
		Label:          "sparks",
		Logger:         NewWriterLogger(&out, &errOut, "frenzy", false),
	}
	s, _ := newTestSystem(t, cfg)
	for i := 0; i < 3; i++ {
		s.Spawn(particleAt(0, 10))
	}
	require.NoError(t, s.Render(&mockRecorder{}, 0))

	assert.Contains(t, out.String(), "INFO frenzy/sparks: 1 buffers x 2 particles")
	warn := strings.TrimSpace(errOut.String())
	assert.Contains(t, warn, "WARN frenzy/sparks: overwrote 1 live particles")
}
