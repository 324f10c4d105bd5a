//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan backend
)

// errSoftwareAdapter is returned by SetDeviceProvider for CPU-emulated
// adapters; the CPU engine is faster than a shader interpreter.
var errSoftwareAdapter = errors.New("gpu: software adapter, using CPU resampling")

// pipelines holds the device objects shared by every request.
type pipelines struct {
	device   hal.Device
	modules  [stageCount]hal.ShaderModule
	layout   hal.BindGroupLayout
	plLayout hal.PipelineLayout
	pipes    [stageCount]hal.ComputePipeline
}

// bindGroupLayoutEntries describes the layout shared by all stages:
//
//	0 Params uniform
//	1 source samples (read)
//	2 destination samples (read_write)
//	3 taps (read)
//	4 spans (read)
//
// Decode and encode leave bindings 3 and 4 unused.
func bindGroupLayoutEntries() []gputypes.BindGroupLayoutEntry {
	entry := func(binding uint32, typ gputypes.BufferBindingType) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: typ},
		}
	}
	return []gputypes.BindGroupLayoutEntry{
		entry(0, gputypes.BufferBindingTypeUniform),
		entry(1, gputypes.BufferBindingTypeReadOnlyStorage),
		entry(2, gputypes.BufferBindingTypeStorage),
		entry(3, gputypes.BufferBindingTypeReadOnlyStorage),
		entry(4, gputypes.BufferBindingTypeReadOnlyStorage),
	}
}

// newPipelines creates shader modules and compute pipelines for every stage.
// On failure everything created so far is destroyed.
func newPipelines(device hal.Device, spirv [stageCount][]uint32) (*pipelines, error) {
	p := &pipelines{device: device}

	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "resample_bgl",
		Entries: bindGroupLayoutEntries(),
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create bind group layout: %w", err)
	}
	p.layout = layout

	plLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "resample_pl",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("gpu: create pipeline layout: %w", err)
	}
	p.plLayout = plLayout

	for s := stage(0); s < stageCount; s++ {
		label := "resample_" + s.String()

		module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  label,
			Source: hal.ShaderSource{SPIRV: spirv[s]},
		})
		if err != nil {
			p.destroy()
			return nil, fmt.Errorf("gpu: create shader module for %s: %w", s, err)
		}
		p.modules[s] = module

		pipe, err := device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:  label,
			Layout: plLayout,
			Compute: hal.ComputeState{
				Module:     module,
				EntryPoint: "main",
			},
		})
		if err != nil {
			p.destroy()
			return nil, fmt.Errorf("gpu: create compute pipeline for %s: %w", s, err)
		}
		p.pipes[s] = pipe

		slogger().Debug("gpu: pipeline created", "stage", s.String(), "spirv_words", len(spirv[s]))
	}
	return p, nil
}

// destroy releases every non-nil object, pipelines first.
func (p *pipelines) destroy() {
	if p == nil || p.device == nil {
		return
	}
	for s := range p.pipes {
		if p.pipes[s] != nil {
			p.device.DestroyComputePipeline(p.pipes[s])
			p.pipes[s] = nil
		}
	}
	for s := range p.modules {
		if p.modules[s] != nil {
			p.device.DestroyShaderModule(p.modules[s])
			p.modules[s] = nil
		}
	}
	if p.plLayout != nil {
		p.device.DestroyPipelineLayout(p.plLayout)
		p.plLayout = nil
	}
	if p.layout != nil {
		p.device.DestroyBindGroupLayout(p.layout)
		p.layout = nil
	}
}

// openStandalone creates a Vulkan instance and opens the best adapter,
// preferring real GPUs over software ones.
func (r *Resampler) openStandalone() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return errors.New("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return errors.New("no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	for i := range adapters {
		if selected == nil && adapters[i].Info.DeviceType != gputypes.DeviceTypeCPU {
			selected = &adapters[i]
		}
	}
	if selected == nil {
		instance.Destroy()
		return errSoftwareAdapter
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("open device: %w", err)
	}

	r.instance = instance
	r.device = openDev.Device
	r.queue = openDev.Queue
	r.externalDevice = false
	slogger().Info("gpu: device opened (standalone)", "adapter", selected.Info.Name)
	return nil
}

// SetDeviceProvider switches the resampler to a device owned by provider,
// normally a gpucontext.DeviceProvider whose Device and Queue are hal types.
// Software adapters are refused; the resampler then declines every request
// so that the CPU engine takes over.
func (r *Resampler) SetDeviceProvider(provider any) error {
	dp, ok := provider.(gpucontext.DeviceProvider)
	if !ok {
		return errors.New("gpu: provider is not a gpucontext.DeviceProvider")
	}

	info := dp.AdapterInfo()
	if info.Type == gpucontext.AdapterTypeSoftware {
		r.mu.Lock()
		r.releaseDevice()
		r.disabled = true
		r.mu.Unlock()
		slogger().Info("gpu: software adapter refused", "adapter", info.Name)
		return errSoftwareAdapter
	}

	device, ok := dp.Device().(hal.Device)
	if !ok || device == nil {
		return errors.New("gpu: provider Device is not hal.Device")
	}
	queue, ok := dp.Queue().(hal.Queue)
	if !ok || queue == nil {
		return errors.New("gpu: provider Queue is not hal.Queue")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.releaseDevice()
	r.device = device
	r.queue = queue
	r.externalDevice = true
	r.disabled = false
	r.openErr = nil

	pipes, err := newPipelines(device, r.spirv)
	if err != nil {
		slogger().Warn("gpu: pipeline init failed on shared device", "error", err)
		r.openErr = err
		return err
	}
	r.pipes = pipes
	slogger().Info("gpu: using shared device", "adapter", info.Name, "type", info.Type.String())
	return nil
}

// ensureDevice opens the standalone device and builds pipelines on first
// use. A failure is remembered; later requests decline immediately.
// Callers hold r.mu.
func (r *Resampler) ensureDevice() error {
	if r.pipes != nil {
		return nil
	}
	if r.openErr != nil {
		return r.openErr
	}
	if r.device == nil {
		if err := r.openStandalone(); err != nil {
			r.openErr = err
			return err
		}
	}
	pipes, err := newPipelines(r.device, r.spirv)
	if err != nil {
		r.openErr = err
		return err
	}
	r.pipes = pipes
	return nil
}

// releaseDevice destroys pipelines, and the device and instance when they
// are owned by the resampler. Callers hold r.mu.
func (r *Resampler) releaseDevice() {
	if r.pipes != nil {
		r.pipes.destroy()
		r.pipes = nil
	}
	if !r.externalDevice && r.device != nil {
		r.device.Destroy()
	}
	if r.instance != nil {
		r.instance.Destroy()
		r.instance = nil
	}
	r.device = nil
	r.queue = nil
	r.externalDevice = false
}
