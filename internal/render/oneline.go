package render

import (
	"fmt"
	"io"

	"github.com/tahoe/rnvtop/internal/telemetry"
)

// renderOneline keeps to utilization, temperature and fan speed, in that
// order, for status bars and narrow terminals.
func renderOneline(w io.Writer, s telemetry.Snapshot, opts Options) {
	p := newPalette(opts.Colorize)

	fmt.Fprintf(w, "%s %s%% | %s %s%s | %s %s%%\n",
		p.label("GPU"), p.value(s.GPUUtilPct),
		p.label("Temp"), p.value(s.GPUTempC), p.unit("c"),
		p.label("Fan"), p.value(s.FanSpeedPct))
}
