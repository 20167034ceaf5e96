// Package logging wires up the server's structured logger: a
// logiface.Logger backed by stumpy's JSON encoder, matching how the
// rest of the corpus pairs those two modules.
package logging

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the concrete logger type used throughout the server.
type Logger = logiface.Logger[*stumpy.Event]

// New builds a Logger writing level-filtered JSON lines to w (os.Stderr
// if nil), at the given minimum level.
func New(w io.Writer, level logiface.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		logiface.WithLevel[*stumpy.Event](level),
	)
}

// ParseLevel maps a config string onto a logiface.Level, defaulting to
// LevelInformational for anything unrecognised.
func ParseLevel(s string) logiface.Level {
	switch s {
	case "trace":
		return logiface.LevelTrace
	case "debug":
		return logiface.LevelDebug
	case "info", "":
		return logiface.LevelInformational
	case "notice":
		return logiface.LevelNotice
	case "warning", "warn":
		return logiface.LevelWarning
	case "error", "err":
		return logiface.LevelError
	case "critical", "crit":
		return logiface.LevelCritical
	default:
		return logiface.LevelInformational
	}
}
