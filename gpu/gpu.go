//go:build !nogpu

// Package gpu registers the wgpu compute resampler.
//
// Import this package to run resize requests on the GPU when one is
// available. The resampler compiles its shaders at registration and opens a
// Vulkan device on first use. If either step fails, requests fall back to
// the CPU engine without any change in results beyond a small per-channel
// tolerance.
//
// Usage:
//
//	import _ "github.com/gogpu/resample/gpu" // enable GPU resampling
package gpu

import (
	"github.com/gogpu/resample"
	gpuimpl "github.com/gogpu/resample/internal/gpu"
)

// ParityTolerance is the largest per-channel difference between GPU and CPU
// results for the same request.
const ParityTolerance = gpuimpl.ParityTolerance

func init() {
	if err := resample.RegisterAccelerator(gpuimpl.NewResampler()); err != nil {
		resample.Logger().Warn("GPU resampler not available", "err", err)
	}
}

// SetDeviceProvider makes the GPU resampler use a shared device from an
// external provider (e.g., a gogpu window) instead of opening its own.
//
// The provider should be a gpucontext.DeviceProvider whose Device and Queue
// are wgpu/hal types. Software adapters are refused and resizing stays on
// the CPU.
func SetDeviceProvider(provider any) error {
	return resample.SetAcceleratorDeviceProvider(provider)
}
