// Package cli implements the arbor command-line interface: validating scene
// files, printing and drawing their trees, and stepping through their
// scripted operations.
//
// # Commands
//
//   - validate: check scene files without building them
//   - inspect: print the selected trees, the shared tree registry and the
//     marker state of every entity
//   - render: draw one tree as text, DOT or SVG
//   - step: apply scripted operations one key press at a time
//
// # Logging
//
// Commands log through a charmbracelet logger carried in the command
// context. --verbose lowers the level to debug, which also surfaces tree
// lifecycle and cascade logs from the hierarchy registry.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, stamped "15:04:05.00".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step of a command, such as building a scene.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time, rounded to
// the millisecond.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey struct{}

// withLogger attaches l to ctx for the command's helpers.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() for contexts that never passed through the root command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
