package internal

import (
	"time"

	"go.uber.org/zap"

	"epaygate/services"
)

// Logger implements services.LogHandler on top of zap, with an optional
// database sink for the payment log. Debug records stay out of the sink.
type Logger struct {
	module   string
	zap      *zap.Logger
	database services.Database
}

type logRecord struct {
	Time    time.Time `json:"time" bson:"time"`
	Level   string    `json:"level" bson:"level"`
	Module  string    `json:"module" bson:"module"`
	Message string    `json:"message" bson:"message"`
	Error   string    `json:"error,omitempty" bson:"error,omitempty"`
}

func (logRecord) DataType() string {
	return "log"
}

func NewLogger(module string, debug bool, database services.Database) services.LogHandler {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.DisableStacktrace = true
	return &Logger{
		module:   module,
		zap:      zap.Must(cfg.Build()),
		database: database,
	}
}

func (l *Logger) Debug(msg string) {
	l.zap.Debug(msg, zap.String("module", l.module))
}

func (l *Logger) Info(msg string) {
	l.zap.Info(msg, zap.String("module", l.module))
	l.sink("info", msg, "")
}

func (l *Logger) Warn(msg string) {
	l.zap.Warn(msg, zap.String("module", l.module))
	l.sink("warn", msg, "")
}

func (l *Logger) Error(msg string, err error) {
	l.zap.Error(msg, zap.String("module", l.module), zap.Error(err))
	text := ""
	if err != nil {
		text = err.Error()
	}
	l.sink("error", msg, text)
}

// sink is best effort: a failing log store never breaks the payment flow.
func (l *Logger) sink(level, msg, errText string) {
	if l.database == nil {
		return
	}
	_ = l.database.WriteLogMessage(logRecord{
		Time:    time.Now().UTC(),
		Level:   level,
		Module:  l.module,
		Message: msg,
		Error:   errText,
	})
}
