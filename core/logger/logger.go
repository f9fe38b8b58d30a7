// Package logger declares the logging contract shared by the core packages.
package logger

// Logger exposes printf style and structured methods per severity. The
// structured variants attach fields to the entry instead of formatting them
// into the message.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Infow(msg string, fields map[string]any)
	Warnf(format string, args ...any)
	Warnw(msg string, fields map[string]any)
	Errorf(format string, args ...any)
	Errorw(msg string, fields map[string]any)
}
