package services

// LogHandler is the logging surface passed into every service.
type LogHandler interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string, err error)
}
