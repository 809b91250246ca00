package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// LogTimestampFormat defines the timestamp format in log output
const LogTimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// New returns a logger writing to stdout, configured with format and level.
func New(format, level string) *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stdout
	Configure(l, format, level)
	return l
}

// Configure sets the format and level on the logger. Unknown levels fall back
// to info, unknown formats keep the current formatter.
func Configure(l *logrus.Logger, format string, level string) {
	switch format {
	case "json":
		l.Formatter = &logrus.JSONFormatter{TimestampFormat: LogTimestampFormat}
	case "text":
		l.Formatter = &logrus.TextFormatter{TimestampFormat: LogTimestampFormat, FullTimestamp: true}
	case "":
		// Just stick with the default
	default:
		l.WithField("format", format).Warn("invalid logger format, keeping default")
	}

	logrusLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrusLevel = logrus.InfoLevel
	}
	l.SetLevel(logrusLevel)
}
