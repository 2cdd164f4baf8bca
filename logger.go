package flowdsl

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Logger is the logging contract the package accepts. It matches the shape
// of github.com/goliatone/go-logger/glog loggers so callers can pass one in
// directly through a small adapter; when none is configured the package
// stays silent.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// FmtLogger is the local fallback logger for tools that want output without
// configuring an external logger.
type FmtLogger struct {
	out io.Writer
}

// NewFmtLogger writes to stderr when out is nil.
func NewFmtLogger(out io.Writer) *FmtLogger {
	if out == nil {
		out = os.Stderr
	}
	return &FmtLogger{out: out}
}

func (l *FmtLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *FmtLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *FmtLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *FmtLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }

func (l *FmtLogger) log(level, msg string, args ...any) {
	if l == nil || l.out == nil {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	fmt.Fprintf(l.out, "%s %-5s %s\n", time.Now().UTC().Format(time.RFC3339), level, msg)
}
