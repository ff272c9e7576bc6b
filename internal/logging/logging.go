// Package logging builds the logrus logger used by the treedoc command.
//
// Library packages do not log; they return errors. Only the application
// layer logs, with structured fields such as run_id and doc.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
)

// ErrUnknownFormat is returned for a format other than text or json.
var ErrUnknownFormat = errors.New("unknown log format")

// Formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Option configures a logger.
type Option func(*options)

type options struct {
	out    io.Writer
	errOut io.Writer
}

// WithOutput sets where log entries are written. Defaults to stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithErrorOutput sends warnings and errors to w instead of the main
// output.
func WithErrorOutput(w io.Writer) Option {
	return func(o *options) {
		o.errOut = w
	}
}

// New returns a logger at the given level ("debug", "info", "warn" or
// "error") using the text or json formatter.
func New(level, format string, opts ...Option) (*logrus.Logger, error) {
	o := &options{out: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			DisableColors:    !isTerminal(o.out),
			QuoteEmptyFields: true,
		})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if o.errOut == nil {
		logger.SetOutput(o.out)
		return logger, nil
	}

	logger.SetOutput(io.Discard)
	logger.AddHook(&writer.Hook{
		Writer: o.errOut,
		LogLevels: []logrus.Level{
			logrus.WarnLevel,
			logrus.ErrorLevel,
			logrus.FatalLevel,
			logrus.PanicLevel,
		},
	})
	logger.AddHook(&writer.Hook{
		Writer: o.out,
		LogLevels: []logrus.Level{
			logrus.TraceLevel,
			logrus.DebugLevel,
			logrus.InfoLevel,
		},
	})
	return logger, nil
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
