package core

// Logger is any leveled logger that can additionally be switched off
// (eg. in DEV/TEST mode for services that report errors remotely).
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
