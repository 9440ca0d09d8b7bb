// Package logger builds the process logger: stdout, an optional rotating
// log file, and Sentry for errors.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"

	"portal/internal/config"
)

// Options selects the logger outputs
type Options struct {
	Dev         bool
	Stdout      io.Writer
	LogDir      string
	LogMaxFiles int
	SentryDSN   string
	Environment string
}

// OptionsFromConfig maps the server config onto logger options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Dev:         cfg.IsDev(),
		Stdout:      os.Stdout,
		LogDir:      cfg.LogDir,
		LogMaxFiles: cfg.LogMaxFiles,
		SentryDSN:   cfg.SentryDSN,
		Environment: cfg.Environment,
	}
}

// New builds the logger and sets it as the slog default.
// Development: text on stdout at Debug. Otherwise JSON at Info.
// The returned func flushes Sentry and closes the log file.
func New(opts Options) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if opts.Dev {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	var handlers []slog.Handler
	if opts.Dev {
		handlers = append(handlers, slog.NewTextHandler(stdout, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(stdout, handlerOpts))
	}

	var closers []func()

	if opts.LogDir != "" {
		f, err := config.SetupLogFile(opts.LogDir, opts.LogMaxFiles, time.Now())
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { f.Close() })
		handlers = append(handlers, slog.NewJSONHandler(f, handlerOpts))
	}

	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Environment,
		})
		if err != nil {
			for _, fn := range closers {
				fn()
			}
			return nil, nil, fmt.Errorf("init sentry: %w", err)
		}
		closers = append(closers, func() { sentry.Flush(2 * time.Second) })
		handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
