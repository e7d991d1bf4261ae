package render

import (
	"fmt"
	"io"

	"github.com/tahoe/rnvtop/internal/telemetry"
)

func renderMultiline(w io.Writer, s telemetry.Snapshot, opts Options) {
	p := newPalette(opts.Colorize)

	if !opts.Timestamp.IsZero() {
		fmt.Fprintln(w, p.unit(opts.Timestamp.Format(TimestampLayout)))
	}

	fmt.Fprintf(w, "%s %s\n", p.label("GPU:"), p.value(s.DeviceName))
	fmt.Fprintf(w, "%s %s %s %s\n",
		p.label("Driver Ver:"), p.value(s.DriverVersion),
		p.label("CUDA Ver:"), p.value(CUDAVersion(s.CUDAVersion)))
	fmt.Fprintf(w, "%s %s%s\n", p.label("Fan Speed:"), p.value(s.FanSpeedPct), p.unit("%"))
	fmt.Fprintf(w, "%s %s%s\n", p.label("GPU Temp:"), p.value(s.GPUTempC), p.unit("c"))
	fmt.Fprintf(w, "%s %s %s, %s %s\n",
		p.label("Power Usage:"),
		p.value("Used:"), p.unit(fmt.Sprintf("%dW", s.PowerUsedW)),
		p.value("Max:"), p.unit(fmt.Sprintf("%dW", s.PowerCapW)))
	fmt.Fprintf(w, "%s %s %s, %s %s\n",
		p.label("Memory Usage:"),
		p.value("Used:"), p.unit(fmt.Sprintf("%.2fGB", s.MemUsedGB)),
		p.value("Max:"), p.unit(fmt.Sprintf("%.2fGB", s.MemTotalGB)))
	fmt.Fprintf(w, "%s %s%% %s %s%% %s %s%%\n",
		p.label("GPU Usage:"), p.value(s.GPUUtilPct),
		p.label("Encoder:"), p.value(s.EncoderUtilPct),
		p.label("Decoder:"), p.value(s.DecoderUtilPct))
}
