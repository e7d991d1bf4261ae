package telemetry

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/tahoe/rnvtop/internal/gpu"
	"github.com/tahoe/rnvtop/internal/logger"
)

type Collector struct {
	device gpu.Device
	system gpu.System
	logger logger.Logger
}

func NewCollector(device gpu.Device, system gpu.System, log logger.Logger) *Collector {
	return &Collector{
		device: device,
		system: system,
		logger: log,
	}
}

// Collect reads every metric once. It never fails: a read that errors is
// replaced by that field's fallback and logged at debug level.
func (c *Collector) Collect() Snapshot {
	dev, sys := c.device, c.system

	name, ret := dev.GetName()
	deviceName := readOr(c.logger, "device_name", name, ret, UnknownDeviceName)

	driver, ret := sys.SystemGetDriverVersion()
	driverVersion := readOr(c.logger, "driver_version", driver, ret, UnknownDriverVersion)

	cuda, ret := sys.SystemGetCudaDriverVersion()
	cudaVersion := readOr(c.logger, "cuda_version", cuda, ret, 0)

	fan, ret := dev.GetFanSpeed_v2(0)
	fanSpeed := readOr(c.logger, "fan_speed_pct", fan, ret, 0)

	temp, ret := dev.GetTemperature(nvml.TEMPERATURE_GPU)
	gpuTemp := readOr(c.logger, "gpu_temp_c", temp, ret, 0)

	usage, ret := dev.GetPowerUsage()
	powerUsed := readOr(c.logger, "power_used_w", usage, ret, 0)

	limit, ret := dev.GetPowerManagementDefaultLimit()
	powerCap := readOr(c.logger, "power_cap_w", limit, ret, 0)

	mem, ret := dev.GetMemoryInfo()
	memory := readOr(c.logger, "memory", mem, ret, nvml.Memory{})

	util, ret := dev.GetUtilizationRates()
	utilization := readOr(c.logger, "gpu_util_pct", util, ret, nvml.Utilization{})

	enc, _, ret := dev.GetEncoderUtilization()
	encoder := readOr(c.logger, "encoder_util_pct", enc, ret, 0)

	dec, _, ret := dev.GetDecoderUtilization()
	decoder := readOr(c.logger, "decoder_util_pct", dec, ret, 0)

	return Snapshot{
		DeviceName:     deviceName,
		DriverVersion:  driverVersion,
		CUDAVersion:    float64(cudaVersion) / cudaVersionScale,
		FanSpeedPct:    int(fanSpeed),
		GPUTempC:       int(gpuTemp),
		PowerUsedW:     int(powerUsed / milliWattsToWatts),
		PowerCapW:      int(powerCap / milliWattsToWatts),
		MemUsedGB:      float64(memory.Used) / bytesPerGB,
		MemTotalGB:     float64(memory.Total) / bytesPerGB,
		GPUUtilPct:     int(utilization.Gpu),
		EncoderUtilPct: int(encoder),
		DecoderUtilPct: int(decoder),
	}
}

// readOr returns v when ret reports success and fallback otherwise. A failed
// read is treated as unsupported, never retried.
func readOr[T any](log logger.Logger, field string, v T, ret nvml.Return, fallback T) T {
	if gpu.IsNVMLSuccess(ret) {
		return v
	}

	log.Debug().
		Str("field", field).
		Int("nvml_return", int(ret)).
		Msg("Metric unavailable, using fallback")

	return fallback
}

// Collect is a one-shot read of dev and sys with a discarding logger.
func Collect(dev gpu.Device, sys gpu.System) Snapshot {
	return NewCollector(dev, sys, logger.Nop()).Collect()
}
