// Package logger builds the process-wide logger.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

type config struct {
	debug  bool
	json   bool
	prefix string
	writer io.Writer
}

// Option configures a logger created with New.
type Option func(*config)

// WithDebug sets the log level to Debug when true, Info otherwise.
func WithDebug(debug bool) Option {
	return func(c *config) { c.debug = debug }
}

// WithJSON switches to the JSON formatter for structured service logs.
func WithJSON(json bool) Option {
	return func(c *config) { c.json = json }
}

// WithPrefix sets the subsystem prefix shown on every line.
func WithPrefix(prefix string) Option {
	return func(c *config) { c.prefix = prefix }
}

// WithWriter overrides the output writer. Defaults to os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(c *config) { c.writer = w }
}

// New creates a logger with timestamps enabled and the given options
// applied.
func New(opts ...Option) *log.Logger {
	cfg := config{writer: os.Stderr}
	for _, opt := range opts {
		opt(&cfg)
	}

	l := log.NewWithOptions(cfg.writer, log.Options{
		ReportTimestamp: true,
		Prefix:          cfg.prefix,
	})
	if cfg.debug {
		l.SetLevel(log.DebugLevel)
	}
	if cfg.json {
		l.SetFormatter(log.JSONFormatter)
	}
	return l
}
