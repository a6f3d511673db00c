package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

/* Vars */

var (
	loggingFilePath string

	// default prefix length (unpadded)
	prefixLen = 12
)

/* Public */

// Init configures the global logrus instance. Verbosity 0 = info,
// 1 = debug, 2+ = trace. When logFilePath is set, log lines are also
// written to a rotating file.
func Init(verbosity int, logFilePath string) error {
	level := logrus.InfoLevel
	switch {
	case verbosity == 1:
		level = logrus.DebugLevel
	case verbosity > 1:
		level = logrus.TraceLevel
	}

	logrus.SetOutput(io.Discard)
	logrus.SetLevel(level)

	// console
	logrus.AddHook(&writerHook{
		writer: os.Stdout,
		formatter: &prefixed.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
			ForceFormatting: true,
		},
	})

	// file
	if logFilePath != "" {
		loggingFilePath = logFilePath
		logrus.AddHook(&writerHook{
			writer: &lumberjack.Logger{
				Filename:   logFilePath,
				MaxSize:    5,
				MaxBackups: 1,
				MaxAge:     30,
			},
			formatter: &prefixed.TextFormatter{
				TimestampFormat: "2006-01-02 15:04:05",
				FullTimestamp:   true,
				ForceFormatting: true,
				DisableColors:   true,
			},
		})
	}

	return nil
}

// GetLogger returns a component logger with a padded prefix field.
func GetLogger(prefix string) *logrus.Entry {
	if len(prefix) > prefixLen {
		prefixLen = len(prefix)
	}

	return logrus.WithField("prefix", padPrefix(prefix))
}

// ShowUsing prints where logs are being written, for startup output.
func ShowUsing(log *logrus.Entry) {
	if loggingFilePath != "" {
		log.Infof("Using %s = %q", leftJust("log", " ", 10), loggingFilePath)
	}
}

/* Private */

func padPrefix(prefix string) string {
	if len(prefix) >= prefixLen {
		return prefix
	}
	return prefix + strings.Repeat(" ", prefixLen-len(prefix))
}

func leftJust(text string, filler string, size int) string {
	repSize := size - len(text)
	if repSize <= 0 {
		return text
	}
	return fmt.Sprintf("%s%s", text, strings.Repeat(filler, repSize))
}

// writerHook sends every entry to one writer with one formatter, which lets
// the console and the log file carry different color settings.
type writerHook struct {
	writer    io.Writer
	formatter logrus.Formatter
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}

func (h *writerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
