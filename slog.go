package robocoop

import (
	"fmt"
	"log"
)

// SLogger is the internal logging interface. The standard library logger
// implements the Printf part of this interface
type SLogger interface {
	Printf(format string, v ...interface{})

	Debugf(format string, v ...interface{})
}

type sLogger struct {
	logger *log.Logger
	debug  bool
}

// NewSLogger creates a new logger wrapping a standard library logger with a
// debug flag controlling whether Debugf lines are emitted
func NewSLogger(log *log.Logger, debug bool) (l *sLogger) {
	sl := new(sLogger)
	sl.debug = debug
	sl.logger = log
	return sl
}

// Debugf logs a debug line after checking if the logger is in debug mode
func (sl *sLogger) Debugf(format string, v ...interface{}) {
	if sl.debug {
		sl.Printf(format, v...)
	}
}

// Printf logs a line by delegating the call to Output
func (sl *sLogger) Printf(format string, v ...interface{}) {
	sl.logger.Output(2, fmt.Sprintf(format, v...))
}
