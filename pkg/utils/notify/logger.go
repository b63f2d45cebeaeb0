package notify

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
)

// Log formats accepted by NewLogger.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// NewLogger returns a logrus logger writing to writer.
//
// The text format renders each entry as a notify message line so that log output
// from the orchestration packages blends with the CLI's own messages. Debug entries
// are emitted only when verbose is set.
func NewLogger(writer io.Writer, verbose bool, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(writer)
	logger.SetLevel(logrus.InfoLevel)

	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if format == LogFormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&MessageFormatter{})
	}

	return logger
}

// MessageFormatter is a logrus.Formatter that renders entries with notify symbols.
// Fields are appended as sorted key=value pairs.
type MessageFormatter struct{}

// Format implements logrus.Formatter.
func (MessageFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	content := entry.Message

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for key := range entry.Data {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			content += fmt.Sprintf(" %s=%v", key, entry.Data[key])
		}
	}

	var buf bytes.Buffer

	WriteMessage(Message{
		Type:    levelMessageType(entry.Level),
		Content: "%s",
		Args:    []any{content},
		Writer:  &buf,
	})

	return buf.Bytes(), nil
}

func levelMessageType(level logrus.Level) MessageType {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return ErrorType
	case logrus.WarnLevel:
		return WarningType
	case logrus.InfoLevel:
		return ActivityType
	case logrus.DebugLevel, logrus.TraceLevel:
		return InfoType
	default:
		return ActivityType
	}
}
