package resample

// EngineOption configures an Engine during creation.
//
// Example:
//
//	// Sequential engine with multi-step scaling
//	e := resample.NewEngine()
//
//	// Rows spread over 4 goroutines
//	e := resample.NewEngine(resample.WithWorkers(4))
type EngineOption func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	workers   int
	multiStep bool
}

// defaultEngineOptions returns the default engine options.
func defaultEngineOptions() engineOptions {
	return engineOptions{
		workers:   1,
		multiStep: true,
	}
}

// WithWorkers spreads the rows of every pass over n goroutines. Values
// below 2 keep the engine sequential; a negative n uses GOMAXPROCS.
// Engines with workers own a pool; call Close when done with them.
func WithWorkers(n int) EngineOption {
	return func(o *engineOptions) {
		o.workers = n
	}
}

// WithDirectPasses disables multi-step scaling so every axis is resized in
// a single pass regardless of the ratio.
func WithDirectPasses() EngineOption {
	return func(o *engineOptions) {
		o.multiStep = false
	}
}

// DispatcherOption configures a Dispatcher during creation.
//
// Example:
//
//	// GPU first when one is registered, then a private CPU engine
//	d := resample.NewDispatcher()
//
//	// CPU only
//	d := resample.NewDispatcher(resample.WithoutGPU())
type DispatcherOption func(*dispatcherOptions)

// dispatcherOptions holds optional configuration for Dispatcher creation.
type dispatcherOptions struct {
	accel    GPUAccelerator
	useAccel bool // accel was set explicitly
	noGPU    bool
	engine   *Engine
}

// WithAccelerator makes the Dispatcher try a instead of the registered
// accelerator. Passing nil is the same as WithoutGPU.
func WithAccelerator(a GPUAccelerator) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.accel = a
		o.useAccel = true
	}
}

// WithEngine sets the CPU engine used as the terminal fallback.
func WithEngine(e *Engine) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.engine = e
	}
}

// WithoutGPU restricts the Dispatcher to the CPU engine.
func WithoutGPU() DispatcherOption {
	return func(o *dispatcherOptions) {
		o.noGPU = true
	}
}
