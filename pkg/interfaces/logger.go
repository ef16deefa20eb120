package interfaces

import "context"

// Logger is the leveled logging contract used throughout the wiki module.
// The method set matches github.com/goliatone/go-logger, so a host already
// using that package can pass its loggers straight through.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out loggers by name. Implementations may return one
// shared instance or scope children per module name.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is an optional extension for loggers that can carry
// persistent structured fields. WithFields returns a logger that emits the
// supplied fields on every entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
