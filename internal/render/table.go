package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/tahoe/rnvtop/internal/telemetry"
)

type section struct {
	headers []string
	values  []string
}

func tableSections(s telemetry.Snapshot) []section {
	return []section{
		{
			headers: []string{"Device Name", "Driver Ver", "CUDA Ver"},
			values:  []string{s.DeviceName, s.DriverVersion, CUDAVersion(s.CUDAVersion)},
		},
		{
			headers: []string{"Memory Used", "Memory Total"},
			values:  []string{fmt.Sprintf("%.2f", s.MemUsedGB), fmt.Sprintf("%.2f", s.MemTotalGB)},
		},
		{
			headers: []string{"GPU Util", "Enc Util", "Dec Util"},
			values:  []string{strconv.Itoa(s.GPUUtilPct), strconv.Itoa(s.EncoderUtilPct), strconv.Itoa(s.DecoderUtilPct)},
		},
		{
			headers: []string{"Fan Speed", "GPU Temp"},
			values:  []string{strconv.Itoa(s.FanSpeedPct), strconv.Itoa(s.GPUTempC)},
		},
		{
			headers: []string{"PWR Used", "PWR Max"},
			values:  []string{strconv.Itoa(s.PowerUsedW), strconv.Itoa(s.PowerCapW)},
		},
	}
}

// renderTable stacks one single-row table per metric group.
func renderTable(w io.Writer, s telemetry.Snapshot, opts Options) {
	for _, sec := range tableSections(s) {
		table := tablewriter.NewWriter(w)
		table.SetHeader(sec.headers)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

		if opts.Colorize {
			headerColors := make([]tablewriter.Colors, len(sec.headers))
			valueColors := make([]tablewriter.Colors, len(sec.headers))
			for i := range sec.headers {
				headerColors[i] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiGreenColor}
				valueColors[i] = tablewriter.Colors{tablewriter.FgHiCyanColor}
			}
			table.SetHeaderColor(headerColors...)
			table.SetColumnColor(valueColors...)
		}

		table.Append(sec.values)
		table.Render()
	}
}
