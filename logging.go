package tracerfx

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is the logging surface systems and the particle manager write to.
// Tracef carries per-particle lifecycle events (add, retire); they are noisy
// enough at a few hundred shots per second to get their own switch.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	TraceEnabled() bool
	SetTrace(enabled bool)
	Tracef(format string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// Named returns a logger writing to the same sink under prefix/scope.
	Named(scope string) Logger
}

type logLevel int

const (
	levelTrace logLevel = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
)

var levelNames = [...]string{
	levelTrace: "TRACE",
	levelDebug: "DEBUG",
	levelInfo:  "INFO",
	levelWarn:  "WARN",
	levelError: "ERROR",
}

// logSink is shared by a logger and every logger Named from it, so toggling
// debug or trace on one affects them all.
type logSink struct {
	mu    sync.Mutex
	debug bool
	trace bool
	out   *log.Logger
	err   *log.Logger
}

func (s *logSink) enabled(level logLevel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch level {
	case levelTrace:
		return s.trace
	case levelDebug:
		return s.debug
	default:
		return true
	}
}

type DefaultLogger struct {
	sink   *logSink
	prefix string
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return newLogger(prefix, os.Stdout, os.Stderr, log.LstdFlags|log.Lmicroseconds, debug)
}

func newLogger(prefix string, out, errOut io.Writer, flags int, debug bool) *DefaultLogger {
	return &DefaultLogger{
		sink: &logSink{
			debug: debug,
			out:   log.New(out, "", flags),
			err:   log.New(errOut, "", flags),
		},
		prefix: prefix,
	}
}

func (l *DefaultLogger) DebugEnabled() bool { return l.sink.enabled(levelDebug) }

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.sink.mu.Lock()
	l.sink.debug = enabled
	l.sink.mu.Unlock()
}

func (l *DefaultLogger) TraceEnabled() bool { return l.sink.enabled(levelTrace) }

func (l *DefaultLogger) SetTrace(enabled bool) {
	l.sink.mu.Lock()
	l.sink.trace = enabled
	l.sink.mu.Unlock()
}

func (l *DefaultLogger) Named(scope string) Logger {
	prefix := scope
	if l.prefix != "" {
		prefix = l.prefix + "/" + scope
	}
	return &DefaultLogger{sink: l.sink, prefix: prefix}
}

func (l *DefaultLogger) print(level logLevel, format string, args ...any) {
	if !l.sink.enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	line := levelNames[level] + ": " + msg
	if l.prefix != "" {
		line = "[" + l.prefix + "] " + line
	}
	if level >= levelWarn {
		l.sink.err.Print(line)
		return
	}
	l.sink.out.Print(line)
}

func (l *DefaultLogger) Tracef(format string, args ...any) { l.print(levelTrace, format, args...) }
func (l *DefaultLogger) Debugf(format string, args ...any) { l.print(levelDebug, format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.print(levelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.print(levelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.print(levelError, format, args...) }

// LoggingModule installs a DefaultLogger as an app resource. Trace turns on
// per-particle lifecycle lines.
type LoggingModule struct {
	Prefix string
	Debug  bool
	Trace  bool
}

func (m LoggingModule) Install(app *App) {
	l := NewDefaultLogger(m.Prefix, m.Debug)
	l.SetTrace(m.Trace)
	app.addResources(l)
}

type nopLogger struct{}

func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool                { return false }
func (nopLogger) SetDebug(enabled bool)             {}
func (nopLogger) TraceEnabled() bool                { return false }
func (nopLogger) SetTrace(enabled bool)             {}
func (nopLogger) Tracef(format string, args ...any) {}
func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Infof(format string, args ...any)  {}
func (nopLogger) Warnf(format string, args ...any)  {}
func (nopLogger) Errorf(format string, args ...any) {}
func (n nopLogger) Named(string) Logger             { return n }

// Logger returns the first Logger resource if present, otherwise a no-op
// logger. Never returns nil.
func (app *App) Logger() Logger {
	if app == nil {
		return NewNopLogger()
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return NewNopLogger()
}
