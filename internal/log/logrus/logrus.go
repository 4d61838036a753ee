package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/mcsr-tools/splitwatch/internal/log"
)

type logger struct {
	*logrus.Entry
}

// NewLogrus returns a new log.Logger for a logrus implementation.
func NewLogrus(l *logrus.Entry) log.Logger {
	return logger{Entry: l}
}

func (l logger) WithValues(kv map[string]interface{}) log.Logger {
	newLogger := l.Entry.WithFields(kv)
	return NewLogrus(newLogger)
}

func (l logger) Warningf(format string, args ...interface{}) {
	l.Entry.Warnf(format, args...)
}
