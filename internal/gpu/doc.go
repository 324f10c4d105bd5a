//go:build !nogpu

// Package gpu provides a Pure Go GPU resampling backend.
//
// Resampler runs the separable resize of package resample as WGSL compute
// shaders on a wgpu/hal device (Vulkan backend, zero CGO). Shaders are
// compiled to SPIR-V with naga when the accelerator is initialized; the
// device itself is opened lazily on the first request, or borrowed from a
// gpucontext.DeviceProvider.
//
// # Pipeline
//
// Every request is encoded into a single command buffer:
//
//	decode (RGBA8 -> vec4, sRGB -> linear when gamma correct)
//	resample x N (one pass per step, ping-pong storage buffers)
//	encode (vec4 -> RGBA8)
//	copy to staging buffer
//
// Contribution tables come from the same contrib package the CPU engine
// uses, so weights are bit-identical; results match the CPU within
// ParityTolerance per channel. Unsharp masking runs on the host after
// readback.
//
// Requests the GPU does not take (float buffers, identity, empty targets,
// images over the device limits) are refused with resample.ErrFallbackToCPU.
package gpu
