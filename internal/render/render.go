// Package render turns a telemetry snapshot into text. Every renderer is a
// pure function of the snapshot and Options: colors are switched on per call
// and no process-wide color state is consulted.
package render

import (
	"bytes"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/tahoe/rnvtop/internal/errors"
	"github.com/tahoe/rnvtop/internal/telemetry"
)

type Mode string

const (
	ModeMultiline Mode = "multiline"
	ModeOneline   Mode = "oneline"
	ModeTable     Mode = "table"
	ModeJSON      Mode = "json"
)

// TimestampLayout is the layout of the header line shown while looping.
const TimestampLayout = "2006-01-02 15:04:05"

// Modes lists the supported modes in display order.
func Modes() []Mode {
	return []Mode{ModeMultiline, ModeOneline, ModeTable, ModeJSON}
}

// ParseMode accepts a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes() {
		if m == known {
			return m, nil
		}
	}

	return "", errors.New().WithData(errors.ErrInvalidMode, s)
}

type Options struct {
	Mode     Mode
	Colorize bool
	// Timestamp is printed as a header line by the multiline renderer.
	// The zero value omits the header.
	Timestamp time.Time
}

// Render writes s to w in the requested mode. Output is assembled in memory
// and written once, so the only possible error comes from w.
func Render(w io.Writer, s telemetry.Snapshot, opts Options) error {
	var buf bytes.Buffer

	switch opts.Mode {
	case ModeOneline:
		renderOneline(&buf, s, opts)
	case ModeTable:
		renderTable(&buf, s, opts)
	case ModeJSON:
		if err := renderJSON(&buf, s, opts); err != nil {
			return errors.New().Wrap(errors.ErrRender, err)
		}
	default:
		renderMultiline(&buf, s, opts)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.New().Wrap(errors.ErrRender, err)
	}

	return nil
}

// String renders s into a string.
func String(s telemetry.Snapshot, opts Options) string {
	var sb strings.Builder
	_ = Render(&sb, s, opts)
	return sb.String()
}

// CUDAVersion formats a cuda_version value (driver integer / 1000) as
// major.minor, e.g. 12.04 -> "12.4".
func CUDAVersion(v float64) string {
	raw := int(math.Round(v * 1000))
	return strconv.Itoa(raw/1000) + "." + strconv.Itoa((raw%1000)/10)
}

type paint func(a ...interface{}) string

func painter(colorize bool, attrs ...color.Attribute) paint {
	c := color.New(attrs...)
	if colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.SprintFunc()
}

type palette struct {
	label, value, unit paint
}

func newPalette(colorize bool) palette {
	return palette{
		label: painter(colorize, color.FgRed),
		value: painter(colorize, color.FgCyan),
		unit:  painter(colorize, color.FgYellow),
	}
}
