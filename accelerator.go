package resample

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the GPU accelerator cannot handle this request.
// The caller should transparently fall back to the CPU engine.
var ErrFallbackToCPU = errors.New("resample: falling back to CPU resampling")

// Resizer is anything that can execute a resize request. The CPU Engine,
// GPU accelerators and the Dispatcher all implement it and produce results
// under the same contract.
type Resizer interface {
	// Name identifies the implementation in logs, e.g. "cpu" or "wgpu".
	Name() string

	// Resize executes req. Implementations validate req first and never
	// write into req.Dest unless they succeed.
	Resize(req *Request) (Buffer, error)
}

// GPUAccelerator is an optional GPU resampling provider.
//
// When registered via RegisterAccelerator, a Dispatcher tries the
// accelerator first for requests it can accelerate. If the accelerator
// returns ErrFallbackToCPU or any error, the request transparently falls
// back to the CPU engine.
//
// Implementations are provided by GPU backend packages. Users opt in to GPU
// acceleration via blank import:
//
//	import _ "github.com/gogpu/resample/gpu" // enables GPU acceleration
type GPUAccelerator interface {
	Resizer

	// Init initializes GPU resources and compiles every shader program.
	// Called once during registration; the accelerator is ready when it
	// returns nil.
	Init() error

	// Close releases GPU resources.
	Close()

	// CanAccelerate reports whether the accelerator supports req. This is a
	// fast check used to skip the GPU entirely, e.g. for float buffers.
	CanAccelerate(req *Request) bool
}

// DeviceProviderAware is an optional interface for accelerators that can share
// GPU resources with an external provider (e.g., a gogpu window).
// When SetDeviceProvider is called, the accelerator reuses the provided GPU
// device instead of creating its own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

// cacheClearer is implemented by accelerators that memoize tables.
type cacheClearer interface {
	ClearCache()
}

var (
	accelMu sync.RWMutex
	accel   GPUAccelerator
)

// RegisterAccelerator registers a GPU accelerator for optional GPU resampling.
//
// Only one accelerator can be registered. Subsequent calls replace the previous one.
// The accelerator's Init() method is called during registration.
// If Init() fails, the accelerator is not registered and the error is returned.
//
// Typical usage via blank import in GPU backend packages:
//
//	func init() {
//	    resample.RegisterAccelerator(gpuimpl.NewResampler())
//	}
func RegisterAccelerator(a GPUAccelerator) error {
	if a == nil {
		return errors.New("resample: accelerator must not be nil")
	}
	propagateLogger(a, Logger())
	if err := a.Init(); err != nil {
		return err
	}
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	Logger().Info("resample: GPU accelerator registered", "name", a.Name())
	return nil
}

// Accelerator returns the currently registered GPU accelerator, or nil if none.
func Accelerator() GPUAccelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator, enabling GPU device sharing. If no accelerator is registered
// or it doesn't support device sharing, this is a no-op.
//
// The provider is normally a gpucontext.DeviceProvider whose Device and
// Queue are wgpu/hal types.
func SetAcceleratorDeviceProvider(provider any) error {
	a := Accelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
