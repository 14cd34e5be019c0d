package launcher

import (
	logrusr "github.com/bombsimon/logrusr/v3"
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"
)

// newLogger builds a logr.Logger from the capsule.log level
// (none|quiet|verbose|debug), grounded on the teacher's
// logrus.New + logrusr.New(logrusLog) construction.
func newLogger(level string) logr.Logger {
	logrusLog := logrus.New()
	logrusLog.SetFormatter(&logrus.TextFormatter{})
	logrusLog.SetLevel(logrusLevel(level))
	return logrusr.New(logrusLog)
}

func logrusLevel(level string) logrus.Level {
	switch level {
	case "none":
		return logrus.PanicLevel
	case "quiet":
		return logrus.ErrorLevel
	case "debug":
		return logrus.TraceLevel
	case "verbose":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}
