package output

// LoggerPort is a leveled key/value logger; args alternate key, value.
type LoggerPort interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	Named(component string) LoggerPort
	WithField(key string, value any) LoggerPort
	WithFields(fields map[string]any) LoggerPort

	Close() error
}
