// Package gputest provides in-memory stand-ins for NVML device and system
// handles.
package gputest

import (
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// Device is a scripted gpu.Device. Methods named in Failures return the
// mapped NVML code and a zero value.
type Device struct {
	Name              string
	FanSpeed          uint32
	Temperature       uint32
	PowerUsage        uint32
	PowerDefaultLimit uint32
	Utilization       nvml.Utilization
	EncoderUtil       uint32
	DecoderUtil       uint32
	Memory            nvml.Memory

	Failures map[string]nvml.Return

	mu    sync.Mutex
	calls map[string]int
}

// Calls returns how many times method was invoked.
func (d *Device) Calls(method string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[method]
}

func (d *Device) record(method string) nvml.Return {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.calls == nil {
		d.calls = make(map[string]int)
	}
	d.calls[method]++

	if ret, ok := d.Failures[method]; ok {
		return ret
	}
	return nvml.SUCCESS
}

func (d *Device) GetName() (string, nvml.Return) {
	if ret := d.record("GetName"); ret != nvml.SUCCESS {
		return "", ret
	}
	return d.Name, nvml.SUCCESS
}

func (d *Device) GetFanSpeed_v2(_ int) (uint32, nvml.Return) {
	if ret := d.record("GetFanSpeed_v2"); ret != nvml.SUCCESS {
		return 0, ret
	}
	return d.FanSpeed, nvml.SUCCESS
}

func (d *Device) GetTemperature(_ nvml.TemperatureSensors) (uint32, nvml.Return) {
	if ret := d.record("GetTemperature"); ret != nvml.SUCCESS {
		return 0, ret
	}
	return d.Temperature, nvml.SUCCESS
}

func (d *Device) GetPowerUsage() (uint32, nvml.Return) {
	if ret := d.record("GetPowerUsage"); ret != nvml.SUCCESS {
		return 0, ret
	}
	return d.PowerUsage, nvml.SUCCESS
}

func (d *Device) GetPowerManagementDefaultLimit() (uint32, nvml.Return) {
	if ret := d.record("GetPowerManagementDefaultLimit"); ret != nvml.SUCCESS {
		return 0, ret
	}
	return d.PowerDefaultLimit, nvml.SUCCESS
}

func (d *Device) GetUtilizationRates() (nvml.Utilization, nvml.Return) {
	if ret := d.record("GetUtilizationRates"); ret != nvml.SUCCESS {
		return nvml.Utilization{}, ret
	}
	return d.Utilization, nvml.SUCCESS
}

func (d *Device) GetEncoderUtilization() (uint32, uint32, nvml.Return) {
	if ret := d.record("GetEncoderUtilization"); ret != nvml.SUCCESS {
		return 0, 0, ret
	}
	return d.EncoderUtil, 167000, nvml.SUCCESS
}

func (d *Device) GetDecoderUtilization() (uint32, uint32, nvml.Return) {
	if ret := d.record("GetDecoderUtilization"); ret != nvml.SUCCESS {
		return 0, 0, ret
	}
	return d.DecoderUtil, 167000, nvml.SUCCESS
}

func (d *Device) GetMemoryInfo() (nvml.Memory, nvml.Return) {
	if ret := d.record("GetMemoryInfo"); ret != nvml.SUCCESS {
		return nvml.Memory{}, ret
	}
	return d.Memory, nvml.SUCCESS
}

// System is a scripted gpu.System.
type System struct {
	DriverVersion string
	CUDAVersion   int
	Failures      map[string]nvml.Return
}

func (s *System) SystemGetDriverVersion() (string, nvml.Return) {
	if ret, ok := s.Failures["SystemGetDriverVersion"]; ok {
		return "", ret
	}
	return s.DriverVersion, nvml.SUCCESS
}

func (s *System) SystemGetCudaDriverVersion() (int, nvml.Return) {
	if ret, ok := s.Failures["SystemGetCudaDriverVersion"]; ok {
		return 0, ret
	}
	return s.CUDAVersion, nvml.SUCCESS
}
