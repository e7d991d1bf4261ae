// Package monitor drives the collect and render cycle, either once or on a
// fixed interval until the user quits.
package monitor

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/tahoe/rnvtop/internal/logger"
	"github.com/tahoe/rnvtop/internal/render"
	"github.com/tahoe/rnvtop/internal/telemetry"
)

const (
	clearScreen = "\x1b[2J\x1b[1;1H"
	// pollSlice bounds a single input poll so context cancellation is
	// noticed promptly.
	pollSlice = 100 * time.Millisecond
)

type Config struct {
	Loop     bool
	Interval time.Duration
	Render   render.Options
}

type Monitor struct {
	cfg    Config
	source telemetry.Source
	out    io.Writer
	keys   KeyPoller
	now    func() time.Time
	logger logger.Logger
}

type Option func(*Monitor)

// WithKeyPoller sets the input source used between ticks.
func WithKeyPoller(keys KeyPoller) Option {
	return func(m *Monitor) {
		m.keys = keys
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

func WithLogger(log logger.Logger) Option {
	return func(m *Monitor) {
		m.logger = log
	}
}

func New(cfg Config, source telemetry.Source, out io.Writer, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:    cfg,
		source: source,
		out:    out,
		keys:   sleepPoller{},
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.keys.Raw() {
		m.out = &crlfWriter{w: out}
	}

	return m
}

// Run performs one tick in single-shot mode. In repeating mode it ticks every
// Interval until a quit key is read or ctx is done. A quit key returns
// immediately, without another wait or collect.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.cfg.Loop {
		return m.tick(time.Time{})
	}

	m.logger.Debug().Dur("interval", m.cfg.Interval).Msg("Starting repeating mode")

	for ctx.Err() == nil {
		if _, err := io.WriteString(m.out, clearScreen); err != nil {
			return err
		}
		if err := m.tick(m.now()); err != nil {
			return err
		}

		quit, err := m.wait(ctx)
		if err != nil {
			return err
		}
		if quit {
			m.logger.Debug().Msg("Quit requested")
			return nil
		}
	}

	return nil
}

func (m *Monitor) tick(ts time.Time) error {
	opts := m.cfg.Render
	opts.Timestamp = ts

	return render.Render(m.out, m.source.Collect(), opts)
}

// wait blocks for one interval, polling for input in bounded slices. It
// reports true when the session should end.
func (m *Monitor) wait(ctx context.Context) (bool, error) {
	deadline := m.now().Add(m.cfg.Interval)

	for {
		if ctx.Err() != nil {
			return true, nil
		}

		remaining := deadline.Sub(m.now())
		if remaining <= 0 {
			return false, nil
		}

		key, ok, err := m.keys.Poll(min(remaining, pollSlice))
		if err != nil {
			return false, err
		}
		if ok && IsQuitKey(key) {
			return true, nil
		}
	}
}

// crlfWriter translates LF into CRLF for terminals in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
