// Package logging builds the structured logger shared by every command.
package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// New creates a structured logger writing to w at the given level.
// When w is a terminal the output uses slog.TextHandler for human-readable
// lines; when it is piped or redirected it uses slog.JSONHandler so scripts
// and CI can parse it.
func New(w io.Writer, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(w) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

// Level maps the --debug flag to a log level. Normal runs only surface
// warnings so status output stays readable.
func Level(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// Discard returns a logger that drops everything. Tests and library callers
// that do not care about diagnostics use it as the zero value.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
