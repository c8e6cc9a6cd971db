// Package logx builds the process logger and annotates it with panel identifiers.
package logx

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
	"pkt.systems/pslog"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/paths"
)

// FileName is the log file written under the state directory.
const FileName = "vtabs.log"

// Options configures the rotating file logger.
type Options struct {
	Level      string
	MaxSizeMB  int
	MaxBackups int
	// Dir overrides the state directory.
	Dir string
}

// New returns a structured logger writing to a rotating file in the state directory,
// along with the writer so callers can close it on exit.
func New(opts Options) (pslog.Logger, io.Closer, error) {
	base, err := WithLevel(pslog.Options{Mode: pslog.ModeStructured, NoColor: true}, opts.Level)
	if err != nil {
		return Discard(), nil, err
	}
	dir := opts.Dir
	if dir == "" {
		d, err := paths.EnsureStateDir()
		if err != nil {
			return Discard(), nil, err
		}
		dir = d
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 5
	}
	if opts.MaxBackups < 0 {
		opts.MaxBackups = 0
	}
	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, FileName),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	return pslog.NewWithOptions(w, base), w, nil
}

// Console returns a logger for one-shot commands that write to the terminal.
func Console(w io.Writer, level string) pslog.Logger {
	opts, _ := WithLevel(pslog.Options{Mode: pslog.ModeConsole}, level)
	return pslog.NewWithOptions(w, opts)
}

// Discard returns a logger that drops everything.
func Discard() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.ErrorLevel,
	})
}

// WithLevel sets opts.MinLevel from a configured level name. Unknown names keep info
// and return an error.
func WithLevel(opts pslog.Options, name string) (pslog.Options, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		opts.MinLevel = pslog.InfoLevel
	case "debug":
		opts.MinLevel = pslog.DebugLevel
	case "trace":
		opts.MinLevel = pslog.TraceLevel
	case "error":
		opts.MinLevel = pslog.ErrorLevel
	default:
		opts.MinLevel = pslog.InfoLevel
		return opts, fmt.Errorf("unknown log level %q", name)
	}
	return opts, nil
}

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithWindow annotates the logger with the mirrored window id.
func WithWindow(log pslog.Logger, id browser.WindowID) pslog.Logger {
	return log.With("window", int(id))
}

// WithTab annotates the logger with a tab id.
func WithTab(log pslog.Logger, id browser.TabID) pslog.Logger {
	return log.With("tab", int(id))
}

// WithSource annotates the logger with the directory source name.
func WithSource(log pslog.Logger, source string) pslog.Logger {
	if source != "" {
		log = log.With("source", source)
	}
	return log
}
