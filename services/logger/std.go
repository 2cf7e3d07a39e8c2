package logsvc

import "log"

// StdLogger is a plain stdlib-backed core.Logger; used in DEV/TEST mode
// where remote error reporting is unwanted.
type StdLogger struct {
	std *log.Logger
}

func NewStdLogger(std *log.Logger) *StdLogger {
	return &StdLogger{std: std}
}

func (l StdLogger) Enable(bool) {}

func (l StdLogger) log(level, msg string, args []interface{}) {
	l.std.Printf("%s: %s", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l StdLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l StdLogger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l StdLogger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l StdLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l StdLogger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args); l.std.Fatal(msg) }
