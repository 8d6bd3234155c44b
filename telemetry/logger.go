package telemetry

import "log"

// Logger is the logging surface the server components need.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts a function into a Logger.
type LoggerFunc func(format string, args ...any)

func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// OrDefault returns l, or the standard logger when l is nil.
func OrDefault(l Logger) Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
