package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// New builds a logrus logger writing to stdout. Unknown levels fall back to info.
func New(level, format string) *logrus.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

func NewWithWriter(w io.Writer, level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.EqualFold(format, FormatText) {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	log.AddHook(RedactionHook{})
	return log
}

// RedactionHook scrubs credentials from the message and fields of every entry.
type RedactionHook struct{}

func (RedactionHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (RedactionHook) Fire(entry *logrus.Entry) error {
	entry.Message = SanitizeLogMessage(entry.Message)
	for k, v := range entry.Data {
		if IsSensitiveKey(k) {
			entry.Data[k] = redactedPlaceholder
			continue
		}
		if s, ok := v.(string); ok {
			entry.Data[k] = SanitizeLogMessage(s)
		}
	}
	return nil
}

// Discard returns a logger that drops everything; used by tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
