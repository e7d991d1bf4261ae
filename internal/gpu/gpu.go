package gpu

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/dustin/go-humanize"

	"github.com/tahoe/rnvtop/internal/errors"
	"github.com/tahoe/rnvtop/internal/logger"
)

// GPU owns the NVML session and the handle of the one device being reported.
type GPU struct {
	nvml   nvmlController
	device Device
	system System
	index  int
	logger logger.Logger
}

// Open initializes NVML and resolves the device at index. Both failures are
// fatal for the caller; nothing is retried.
func Open(index int, log logger.Logger) (*GPU, error) {
	return open(&nvmlWrapper{}, nvmlSystem{}, index, log)
}

func open(ctrl nvmlController, sys System, index int, log logger.Logger) (*GPU, error) {
	errFactory := errors.New()

	if index < 0 {
		return nil, errFactory.WithData(errors.ErrInvalidDevice, index)
	}

	if err := ctrl.Initialize(); err != nil {
		return nil, err
	}

	if count, err := ctrl.GetDeviceCount(); err == nil {
		log.Debug().Int("count", count).Msg("Detected devices")
	}

	device, err := ctrl.GetDevice(index)
	if err != nil {
		if shutdownErr := ctrl.Shutdown(); shutdownErr != nil {
			log.Debug().Err(shutdownErr).Msg("Failed to shutdown NVML after device lookup failure")
		}
		return nil, err
	}

	g := &GPU{
		nvml:   ctrl,
		device: device,
		system: sys,
		index:  index,
		logger: log,
	}
	g.logDetected()

	return g, nil
}

func (g *GPU) logDetected() {
	name, ret := g.device.GetName()
	if !IsNVMLSuccess(ret) {
		g.logger.Warn().Msgf("Failed to get GPU name: %v", nvml.ErrorString(ret))
		return
	}

	event := g.logger.Info().Int("index", g.index).Str("name", name)
	if mem, ret := g.device.GetMemoryInfo(); IsNVMLSuccess(ret) {
		event = event.Str("memory", humanize.IBytes(mem.Total))
	}
	event.Msg("Detected GPU")
}

// Device returns the device handle.
func (g *GPU) Device() Device {
	return g.device
}

// System returns the driver-wide query handle.
func (g *GPU) System() System {
	return g.system
}

// Index returns the device index this GPU was opened with.
func (g *GPU) Index() int {
	return g.index
}

// Shutdown releases the NVML session.
func (g *GPU) Shutdown() error {
	return g.nvml.Shutdown()
}
