// Package logflags centralizes diagnostic logging configuration.
// Diagnostics always go to the error stream; the structured record
// stream on stdout is never written through here.
package logflags

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	level           = logrus.InfoLevel
	out   io.Writer = os.Stderr
)

// Setup selects the diagnostic level and destination. Called once at
// startup before any logger is handed out.
func Setup(verbose bool, w io.Writer) {
	if verbose {
		level = logrus.DebugLevel
	}
	if w != nil {
		out = w
	}
}

func makeLogger(fields logrus.Fields) *logrus.Entry {
	logger := logrus.New().WithFields(fields)
	logger.Logger.Level = level
	logger.Logger.Out = out
	return logger
}

// LoaderLogger returns a logger for binary loading and format probing.
func LoaderLogger() *logrus.Entry {
	return makeLogger(logrus.Fields{"layer": "loader"})
}

// SessionLogger returns a logger for session construction and engine
// lifecycle events.
func SessionLogger() *logrus.Entry {
	return makeLogger(logrus.Fields{"layer": "session"})
}

// CommandLogger returns a logger for command dispatch diagnostics.
func CommandLogger() *logrus.Entry {
	return makeLogger(logrus.Fields{"layer": "command"})
}

// BatchLogger returns a logger for the batch collector.
func BatchLogger() *logrus.Entry {
	return makeLogger(logrus.Fields{"layer": "batch"})
}
