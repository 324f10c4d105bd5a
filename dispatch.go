package resample

import (
	"errors"
	"fmt"
	"sync"
)

// Dispatcher runs requests through an ordered chain of resizers: the GPU
// accelerator when one is available and accepts the request, then the CPU
// engine. A GPU failure is logged and the CPU engine runs; a CPU failure is
// returned.
//
// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	accel    GPUAccelerator
	useAccel bool
	noGPU    bool
	engine   *Engine
	cpu      Resizer
}

// NewDispatcher creates a dispatcher. Without options it uses the
// accelerator registered at the time of each call and a private CPU engine.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	var o dispatcherOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.engine == nil {
		o.engine = NewEngine()
	}
	return &Dispatcher{
		accel:    o.accel,
		useAccel: o.useAccel,
		noGPU:    o.noGPU,
		engine:   o.engine,
		cpu:      o.engine,
	}
}

// Name returns "dispatch".
func (d *Dispatcher) Name() string { return "dispatch" }

// Engine returns the CPU engine at the end of the chain.
func (d *Dispatcher) Engine() *Engine { return d.engine }

// gpu returns the accelerator to try, or nil.
func (d *Dispatcher) gpu() GPUAccelerator {
	switch {
	case d.noGPU:
		return nil
	case d.useAccel:
		return d.accel
	default:
		return Accelerator()
	}
}

// Chain returns the resizers a request can pass through, in order.
func (d *Dispatcher) Chain() []Resizer {
	if a := d.gpu(); a != nil {
		return []Resizer{a, d.cpu}
	}
	return []Resizer{d.cpu}
}

// Resize validates req and executes it on the first path that succeeds.
// Validation errors are returned before any path runs. When both paths fail
// the error matches ErrAllPathsFailed and both causes.
func (d *Dispatcher) Resize(req *Request) (Buffer, error) {
	if err := req.Validate(); err != nil {
		return Buffer{}, err
	}

	var gpuErr error
	if a := d.gpu(); a != nil && a.CanAccelerate(req) {
		out, err := a.Resize(req)
		if err == nil {
			return out, nil
		}
		gpuErr = fmt.Errorf("%s: %w", a.Name(), err)
		if errors.Is(err, ErrFallbackToCPU) {
			Logger().Debug("resample: accelerator declined, using CPU", "accelerator", a.Name())
		} else {
			Logger().Warn("resample: GPU resize failed, falling back to CPU",
				"accelerator", a.Name(), "err", err)
		}
	}

	out, err := d.cpu.Resize(req)
	if err != nil {
		if gpuErr != nil {
			return Buffer{}, errors.Join(ErrAllPathsFailed, gpuErr, err)
		}
		return Buffer{}, err
	}
	return out, nil
}

// ClearCache empties the CPU engine's caches and those of the accelerator,
// if it keeps any.
func (d *Dispatcher) ClearCache() {
	d.engine.ClearCache()
	if cc, ok := d.gpu().(cacheClearer); ok {
		cc.ClearCache()
	}
}

var (
	defaultOnce       sync.Once
	defaultDispatcher *Dispatcher
)

// Default returns the process-wide dispatcher used by Resize, creating it on
// first use.
func Default() *Dispatcher {
	defaultOnce.Do(func() {
		defaultDispatcher = NewDispatcher()
	})
	return defaultDispatcher
}

// Resize executes req with the default dispatcher.
func Resize(req *Request) (Buffer, error) {
	return Default().Resize(req)
}

// ClearCache empties the caches of the default dispatcher.
func ClearCache() {
	Default().ClearCache()
}
