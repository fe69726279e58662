// Package sip implements the line-oriented, deliberately tolerant SIP
// message model this appliance forwards. It is not an RFC 3261 grammar
// parser: a message is an ordered sequence of text lines, and fields are
// pulled out of individual lines with precompiled regular expressions,
// exactly the way the engine this package reimplements works.
package sip

import "log/slog"

var defLogger *slog.Logger

// SetDefaultLogger sets the logger used by this package. Must be called
// before any other use of the package if the default slog logger is not
// wanted.
func SetDefaultLogger(l *slog.Logger) {
	defLogger = l
}

// DefaultLogger returns the logger configured with SetDefaultLogger, or
// slog.Default() if none was set.
func DefaultLogger() *slog.Logger {
	if defLogger != nil {
		return defLogger
	}
	return slog.Default()
}
