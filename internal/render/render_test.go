package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahoe/rnvtop/internal/errors"
	"github.com/tahoe/rnvtop/internal/render"
	"github.com/tahoe/rnvtop/internal/telemetry"
)

const ansiEscape = "\x1b["

func sample() telemetry.Snapshot {
	return telemetry.Snapshot{
		DeviceName:     "NVIDIA GeForce RTX 3080",
		DriverVersion:  "535.161.07",
		CUDAVersion:    12.02,
		FanSpeedPct:    30,
		GPUTempC:       65,
		PowerUsedW:     120,
		PowerCapW:      320,
		MemUsedGB:      2.5,
		MemTotalGB:     10,
		GPUUtilPct:     42,
		EncoderUtilPct: 0,
		DecoderUtilPct: 0,
	}
}

func defaulted() telemetry.Snapshot {
	return telemetry.Snapshot{
		DeviceName:    telemetry.UnknownDeviceName,
		DriverVersion: telemetry.UnknownDriverVersion,
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range render.Modes() {
		got, err := render.ParseMode(strings.ToUpper(string(m)))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := render.ParseMode("xml")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidMode))
}

func TestMultilinePlain(t *testing.T) {
	out := render.String(sample(), render.Options{Mode: render.ModeMultiline})

	want := strings.Join([]string{
		"GPU: NVIDIA GeForce RTX 3080",
		"Driver Ver: 535.161.07 CUDA Ver: 12.2",
		"Fan Speed: 30%",
		"GPU Temp: 65c",
		"Power Usage: Used: 120W, Max: 320W",
		"Memory Usage: Used: 2.50GB, Max: 10.00GB",
		"GPU Usage: 42% Encoder: 0% Decoder: 0%",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestMultilineTimestampOnlyWhenSet(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

	without := render.String(sample(), render.Options{Mode: render.ModeMultiline})
	with := render.String(sample(), render.Options{Mode: render.ModeMultiline, Timestamp: ts})

	assert.NotContains(t, without, "2024-03-09")
	assert.True(t, strings.HasPrefix(with, "2024-03-09 14:05:07\n"))
	assert.Equal(t, without, strings.TrimPrefix(with, "2024-03-09 14:05:07\n"))
}

func TestMultilineColorize(t *testing.T) {
	plain := render.String(sample(), render.Options{Mode: render.ModeMultiline})
	colored := render.String(sample(), render.Options{Mode: render.ModeMultiline, Colorize: true})

	assert.NotContains(t, plain, ansiEscape)
	assert.Contains(t, colored, "\x1b[31mGPU:\x1b[0m")
	assert.Contains(t, colored, "\x1b[36mNVIDIA GeForce RTX 3080\x1b[0m")
}

func TestOnelineOrder(t *testing.T) {
	out := render.String(sample(), render.Options{Mode: render.ModeOneline})

	assert.Equal(t, "GPU 42% | Temp 65c | Fan 30%\n", out)

	util := strings.Index(out, "42")
	temp := strings.Index(out, "65")
	fan := strings.Index(out, "30")
	require.True(t, util >= 0 && temp >= 0 && fan >= 0)
	assert.Less(t, util, temp)
	assert.Less(t, temp, fan)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestTableSections(t *testing.T) {
	out := render.String(sample(), render.Options{Mode: render.ModeTable})

	headers := []string{
		"Device Name", "Memory Used", "GPU Util", "Fan Speed", "PWR Used",
	}
	last := -1
	for _, h := range headers {
		idx := strings.Index(out, h)
		require.GreaterOrEqual(t, idx, 0, h)
		assert.Greater(t, idx, last, "%s out of order", h)
		last = idx
	}

	for _, v := range []string{"535.161.07", "12.2", "2.50", "10.00", "42", "65", "120", "320"} {
		assert.Contains(t, out, v)
	}
	assert.NotContains(t, out, ansiEscape)
}

func TestTableColorize(t *testing.T) {
	out := render.String(sample(), render.Options{Mode: render.ModeTable, Colorize: true})

	assert.Contains(t, out, "\x1b[1;92m")
	assert.Contains(t, out, "\x1b[96m")
}

func TestJSONRoundTrip(t *testing.T) {
	for _, s := range []telemetry.Snapshot{sample(), defaulted()} {
		out := render.String(s, render.Options{Mode: render.ModeJSON})

		var got telemetry.Snapshot
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, s, got)
	}
}

func TestJSONFieldNames(t *testing.T) {
	out := render.String(sample(), render.Options{Mode: render.ModeJSON})

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &fields))

	for _, name := range []string{
		"device_name", "driver_version", "cuda_version", "fan_speed_pct", "gpu_temp_c",
		"power_used_w", "power_cap_w", "mem_used_gb", "mem_total_gb",
		"gpu_util_pct", "encoder_util_pct", "decoder_util_pct",
	} {
		assert.Contains(t, fields, name)
	}
	assert.Len(t, fields, 12)
}

func TestJSONColorizedMatchesPlainLayout(t *testing.T) {
	plain := render.String(sample(), render.Options{Mode: render.ModeJSON})
	colored := render.String(sample(), render.Options{Mode: render.ModeJSON, Colorize: true})

	assert.NotContains(t, plain, ansiEscape)
	assert.Contains(t, colored, "\x1b[34;1m\"device_name\"\x1b[0m")
	assert.Contains(t, colored, "\x1b[32m\"NVIDIA GeForce RTX 3080\"\x1b[0m")
	assert.Equal(t, plain, stripANSI(colored))
}

func TestRenderIsDeterministic(t *testing.T) {
	for _, m := range render.Modes() {
		for _, colorize := range []bool{false, true} {
			opts := render.Options{Mode: m, Colorize: colorize}
			assert.Equal(t, render.String(sample(), opts), render.String(sample(), opts), "%s/%v", m, colorize)
		}
	}
}

func TestRenderDefaultedSnapshot(t *testing.T) {
	for _, m := range render.Modes() {
		var buf bytes.Buffer
		require.NoError(t, render.Render(&buf, defaulted(), render.Options{Mode: m}))
		assert.NotEmpty(t, buf.String(), m)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, assert.AnError
}

func TestRenderWriterError(t *testing.T) {
	err := render.Render(failingWriter{}, sample(), render.Options{Mode: render.ModeOneline})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrRender))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCUDAVersion(t *testing.T) {
	assert.Equal(t, "12.4", render.CUDAVersion(12.04))
	assert.Equal(t, "11.8", render.CUDAVersion(11.08))
	assert.Equal(t, "0.0", render.CUDAVersion(0))
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
