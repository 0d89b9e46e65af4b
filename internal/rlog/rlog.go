// Package rlog is a thin leveled logger over fatih/color, generalizing
// the teacher's scanner.DebugLogger/NoopLogger (pkg/scanner/types.go)
// from a single Log(format, args...) method into Info/Warn/Error/Debug.
package rlog

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Level controls which calls actually print.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// Logger is the interface consumed by the rest of the module, so
// callers that want silence (tests, library embedders) can pass Noop.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// colorLogger writes leveled, colored lines to an io.Writer (stderr by
// default), matching the teacher's practice of logging progress/errors
// to stderr while reserving stdout for scan output.
type colorLogger struct {
	w     io.Writer
	level Level
	color bool
}

// New builds a Logger writing to os.Stderr at level, with ANSI color
// enabled or not per useColor (the CLI passes the config file's
// `color` setting).
func New(level Level, useColor bool) Logger {
	return &colorLogger{w: os.Stderr, level: level, color: useColor}
}

func (l *colorLogger) log(level Level, prefix string, c *color.Color, format string, args ...interface{}) {
	if level > l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.color {
		fmt.Fprintln(l.w, c.Sprintf("%s %s", prefix, msg))
		return
	}
	fmt.Fprintf(l.w, "%s %s\n", prefix, msg)
}

func (l *colorLogger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, "[debug]", color.New(color.FgCyan), format, args...)
}

func (l *colorLogger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, "[info]", color.New(color.FgGreen), format, args...)
}

func (l *colorLogger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, "[warn]", color.New(color.FgYellow), format, args...)
}

func (l *colorLogger) Error(format string, args ...interface{}) {
	l.log(LevelError, "[error]", color.New(color.FgRed), format, args...)
}

// Noop discards everything; useful as a library default.
type Noop struct{}

func (Noop) Debug(string, ...interface{}) {}
func (Noop) Info(string, ...interface{})  {}
func (Noop) Warn(string, ...interface{})  {}
func (Noop) Error(string, ...interface{}) {}
