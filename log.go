package pmm

import (
	"fmt"
	"os"
	"strings"
	"sync"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Logger is the logging hook applications can supply to integrate
// pmm's diagnostics with their own logging, the same shape as the
// teacher's Logger interface (log.go) trimmed to the levels pmm actually
// emits: bind/unbind transitions, OOM, and validator failures.
type Logger interface {
	SetLogLevel(lvl string)
	Errorf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// defaultLogger backs Logger with github.com/go-kit/log, the structured
// logger the rest of the retrieved example pack (grafana-loki) actually
// uses, in place of the teacher's hand-rolled fmt.Fprintf implementation.
type defaultLogger struct {
	mu       sync.Mutex
	base     kitlog.Logger
	filtered kitlog.Logger
}

// NewLogger builds a Logger that writes logfmt lines to stderr, filtered
// to lvl ("debug", "info", "warn", or "error"; unrecognized names fall
// back to "info").
func NewLogger(lvl string) Logger {
	base := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	base = kitlog.With(base, "ts", kitlog.DefaultTimestampUTC, "component", "pmm")
	l := &defaultLogger{base: base}
	l.SetLogLevel(lvl)
	return l
}

func (l *defaultLogger) SetLogLevel(lvl string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filtered = level.NewFilter(l.base, levelOption(lvl))
}

func (l *defaultLogger) current() kitlog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filtered
}

func (l *defaultLogger) Errorf(format string, v ...interface{}) {
	level.Error(l.current()).Log("msg", fmt.Sprintf(format, v...))
}

func (l *defaultLogger) Warnf(format string, v ...interface{}) {
	level.Warn(l.current()).Log("msg", fmt.Sprintf(format, v...))
}

func (l *defaultLogger) Infof(format string, v ...interface{}) {
	level.Info(l.current()).Log("msg", fmt.Sprintf(format, v...))
}

func (l *defaultLogger) Debugf(format string, v ...interface{}) {
	level.Debug(l.current()).Log("msg", fmt.Sprintf(format, v...))
}

func levelOption(lvl string) level.Option {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug()
	case "warn", "warning":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

// noopLogger discards everything; used when Settings.Logger is left nil
// by a caller that wants pmm silent.
type noopLogger struct{}

func (noopLogger) SetLogLevel(string)            {}
func (noopLogger) Errorf(string, ...interface{}) {}
func (noopLogger) Warnf(string, ...interface{})  {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Debugf(string, ...interface{}) {}
