// Copyright (c) 2024 RoseLoverX

package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
)

// Logger is a prefixed structured logger. Every component gets its own
// instance so log lines can be traced back to a session or worker.
type Logger struct {
	entry  *logrus.Entry
	prefix string
}

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
	return l
}

// NewLogger returns a logger tagged with prefix, writing to the shared output.
func NewLogger(prefix string) *Logger {
	return &Logger{entry: logrus.NewEntry(base).WithField("component", prefix), prefix: prefix}
}

// NewDiscardLogger returns a logger that writes nowhere. Tests use it.
func NewDiscardLogger() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(l)}
}

// FromLogrus wraps an existing logrus logger.
func FromLogrus(l *logrus.Logger) *Logger {
	return &Logger{entry: logrus.NewEntry(l)}
}

// SetOutput redirects every logger created from the shared base.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// WithPrefix returns a child logger whose component is parent/prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	full := prefix
	if l.prefix != "" {
		full = l.prefix + "/" + prefix
	}
	return &Logger{entry: l.entry.WithField("component", full), prefix: full}
}

func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value), prefix: l.prefix}
}

func (l *Logger) WithFields(fields map[string]any) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields)), prefix: l.prefix}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err), prefix: l.prefix}
}

// SetLevel accepts logrus level names ("debug", "info", "warn", ...).
// "disable" and "none" silence the logger.
func (l *Logger) SetLevel(level string) *Logger {
	lvl := strings.ToLower(strings.TrimSpace(level))
	if lvl == "disable" || lvl == "none" {
		l.entry.Logger.SetLevel(logrus.PanicLevel)
		return l
	}
	parsed, err := logrus.ParseLevel(lvl)
	if err != nil {
		l.Warnf("unknown log level %q, keeping %s", level, l.entry.Logger.GetLevel())
		return l
	}
	l.entry.Logger.SetLevel(parsed)
	return l
}

func (l *Logger) Level() string {
	return l.entry.Logger.GetLevel().String()
}

func (l *Logger) Prefix() string {
	return l.prefix
}

func (l *Logger) Debug(args ...any) { l.entry.Debug(args...) }
func (l *Logger) Info(args ...any)  { l.entry.Info(args...) }
func (l *Logger) Warn(args ...any)  { l.entry.Warn(args...) }
func (l *Logger) Error(args ...any) { l.entry.Error(args...) }

func (l *Logger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

// Dump writes a deep dump of v at debug level.
func (l *Logger) Dump(label string, v any) {
	if !l.entry.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	l.entry.Debug(fmt.Sprintf("%s: %s", label, spewConfig.Sdump(v)))
}

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	MaxDepth:                6,
}
