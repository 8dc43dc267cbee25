package gpucore

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
)

// AdapterReport describes a hardware adapter found by ProbeAdapter.
type AdapterReport struct {
	Info   gputypes.AdapterInfo
	Limits gputypes.Limits
}

// ProbeAdapter asks gogpu/wgpu for the preferred hardware adapter and
// returns its description. It does not create a device.
//
// HAL backends register themselves through blank imports
// (github.com/gogpu/wgpu/hal/allbackends); without one this returns an error.
func ProbeAdapter(highPerformance bool) (AdapterReport, error) {
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return AdapterReport{}, fmt.Errorf("gpucore: create instance: %w", err)
	}
	defer instance.Release()

	opts := &wgpu.RequestAdapterOptions{PowerPreference: gputypes.PowerPreferenceLowPower}
	if highPerformance {
		opts.PowerPreference = gputypes.PowerPreferenceHighPerformance
	}

	adapter, err := instance.RequestAdapter(opts)
	if err != nil {
		return AdapterReport{}, fmt.Errorf("gpucore: request adapter: %w", err)
	}
	defer adapter.Release()

	report := AdapterReport{Info: adapter.Info(), Limits: adapter.Limits()}
	logger().Info("gpucore: hardware adapter probed",
		"name", report.Info.Name, "backend", report.Info.Backend.String(),
		"max_texture_3d", report.Limits.MaxTextureDimension3D)
	return report, nil
}
