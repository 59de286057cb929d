package core

// Logger is implemented by every logging backend.
// args may carry errors, extra data maps and the user the event relates to.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// LogUser identifies the account an event relates to.
type LogUser struct {
	ID    string
	Role  string
	Email string
}
