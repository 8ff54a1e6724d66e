// Package logger provides the structured logger shared by every component of
// the service. It is a thin layer over logrus that fixes the configuration
// surface and tags each component's entries.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LoggingConfig controls level, encoding and destination of log output.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"`
	Output     string `yaml:"output" env:"LOG_OUTPUT"`
	FilePrefix string `yaml:"file_prefix" env:"LOG_FILE_PREFIX"`
}

// Logger is a logrus entry bound to a component.
type Logger struct {
	*logrus.Entry
}

// New builds a logger from cfg. Unknown levels fall back to info, unknown
// formats to text, and an unusable file output to stdout.
func New(cfg LoggingConfig) *Logger {
	base := logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out, err := openOutput(cfg)
	if err != nil {
		base.SetOutput(os.Stdout)
		base.WithError(err).Warn("log file unavailable, using stdout")
	} else {
		base.SetOutput(out)
	}

	return &Logger{Entry: logrus.NewEntry(base)}
}

// NewDefault returns an info-level text logger on stdout tagged with component.
func NewDefault(component string) *Logger {
	return New(LoggingConfig{Level: "info", Format: "text", Output: "stdout"}).Component(component)
}

// Component returns a child logger whose entries carry the component name.
func (l *Logger) Component(name string) *Logger {
	if name == "" {
		return l
	}
	return &Logger{Entry: l.Entry.WithField("component", name)}
}

// SetOutput redirects the underlying logger, mostly useful in tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.Entry.Logger.SetOutput(w)
}

func openOutput(cfg LoggingConfig) (io.Writer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	case "file":
		prefix := cfg.FilePrefix
		if prefix == "" {
			prefix = "social_layer"
		}
		return os.OpenFile(prefix+".log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	default:
		return os.Stdout, nil
	}
}
