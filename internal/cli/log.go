// Package cli implements the stamboom command-line interface.
//
// Commands read their records either from a seed file given as the first
// argument or from the configured storage with --family:
//   - layout: position a family tree and write the layout as JSON
//   - render: write SVG, PNG, DOT or layout JSON
//   - stats, search, map: inspect a family
//   - families, seed, copy: manage stored families
//   - serve: run the HTTP API
//   - cache: manage the layout and geocoding cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels in the command context; see withLogger and loggerFromContext.
//
// # Progress
//
// Long operations log one info line when they finish, with the elapsed
// time in parentheses. Operations on a whole family use progress.family,
// which adds the record counts as structured fields:
//
//	INFO Laid out Smit (84ms) people=4 marriages=2 children=1
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with "HH:MM:SS.ms"
// timestamps (e.g. "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took.
//
// # Concurrency
//
// A progress is meant for the goroutine that created it. The logger itself
// is safe for concurrent use, so shared calls only interleave their lines.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Located 42 people (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, p.elapsed())
}

// family logs that verb finished for the named family, with the number of
// records involved, e.g. "Seeded Smit (12ms) people=4 marriages=2 children=1".
// An empty name is logged as "family".
func (p *progress) family(verb, name string, people, marriages, children int) {
	if name == "" {
		name = "family"
	}
	p.logger.Info(fmt.Sprintf("%s %s (%s)", verb, name, p.elapsed()),
		"people", people, "marriages", marriages, "children", children)
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
