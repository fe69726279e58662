// Package applog wires the process's two independent log sinks (the
// general log and the SIP message transcript) the way
// cmd/proxysip/main.go wires its single sink: a zerolog.Logger bridged
// to log/slog through samber/slog-zerolog, writing to stdout or, when a
// path is configured, a lumberjack-rotated file.
package applog

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Sink returns an io.Writer for path: stdout if path is empty, or a
// lumberjack-rotated file otherwise. Rotation defaults mirror the
// teacher's lumberjack wiring for an appliance log that is expected to
// run unattended for a long time.
func Sink(path string) io.Writer {
	if path == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

// New builds a *slog.Logger backed by zerolog, console-formatted when w
// is os.Stdout and zerolog's JSON lines for any other writer —
// matching cmd/proxysip/main.go's zerolog.ConsoleWriter setup.
func New(w io.Writer, debug bool) *slog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	out := w
	if w == io.Writer(os.Stdout) {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.StampMicro}
	}

	zl := zerolog.New(out).Level(level).With().Timestamp().Logger()

	slLevel := slog.LevelInfo
	if debug {
		slLevel = slog.LevelDebug
	}
	return slog.New(slogzerolog.Option{Level: slLevel, Logger: &zl}.NewZerologHandler())
}
