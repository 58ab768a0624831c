package frenzy

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes leveled lines through the standard log package.
// Loggers derived with With share the debug switch of their root.
type DefaultLogger struct {
	debug *atomic.Bool
	scope string
	out   *log.Logger
	err   *log.Logger
}

// NewDefaultLogger logs info and debug lines to stdout, warnings and errors
// to stderr.
func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewWriterLogger(os.Stdout, os.Stderr, prefix, debug)
}

func NewWriterLogger(out, errOut io.Writer, prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	l := &DefaultLogger{
		debug: new(atomic.Bool),
		scope: prefix,
		out:   log.New(out, "", flags),
		err:   log.New(errOut, "", flags),
	}
	l.debug.Store(debug)
	return l
}

// With returns a logger whose lines carry scope after the parent's scope,
// e.g. "frenzy/fx".
func (l *DefaultLogger) With(scope string) Logger {
	child := *l
	child.scope = joinScope(l.scope, scope)
	return &child
}

func (l *DefaultLogger) DebugEnabled() bool { return l.debug.Load() }

func (l *DefaultLogger) SetDebug(enabled bool) { l.debug.Store(enabled) }

func (l *DefaultLogger) line(level, format string, args []any) string {
	msg := fmt.Sprintf(format, args...)
	if l.scope == "" {
		return level + " " + msg
	}
	return level + " " + l.scope + ": " + msg
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if l.DebugEnabled() {
		l.out.Print(l.line("DEBUG", format, args))
	}
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.line("INFO", format, args))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print(l.line("WARN", format, args))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.line("ERROR", format, args))
}

// Scoped narrows l to scope. Loggers without a With method are wrapped so
// that every message is prefixed instead.
func Scoped(l Logger, scope string) Logger {
	if l == nil {
		return NewNopLogger()
	}
	if w, ok := l.(interface{ With(string) Logger }); ok {
		return w.With(scope)
	}
	return scopedLogger{Logger: l, scope: scope}
}

type scopedLogger struct {
	Logger
	scope string
}

func (s scopedLogger) Debugf(format string, args ...any) { s.Logger.Debugf(s.scope+": "+format, args...) }
func (s scopedLogger) Infof(format string, args ...any)  { s.Logger.Infof(s.scope+": "+format, args...) }
func (s scopedLogger) Warnf(format string, args ...any)  { s.Logger.Warnf(s.scope+": "+format, args...) }
func (s scopedLogger) Errorf(format string, args ...any) { s.Logger.Errorf(s.scope+": "+format, args...) }

func joinScope(parent, child string) string {
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	}
	return strings.Join([]string{parent, child}, "/")
}

type nopLogger struct{}

func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool    { return false }
func (nopLogger) SetDebug(bool)         {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
