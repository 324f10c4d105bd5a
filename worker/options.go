package worker

import (
	"runtime"
	"time"

	"github.com/gogpu/resample"
)

// DefaultReadyTimeout bounds how long New waits for units to report ready.
const DefaultReadyTimeout = 10 * time.Second

// Option configures a Pool.
type Option func(*options)

type options struct {
	size         int
	readyTimeout time.Duration
	dispatch     []resample.DispatcherOption
	engine       []resample.EngineOption
}

func defaultOptions() options {
	return options{
		size:         runtime.GOMAXPROCS(0),
		readyTimeout: DefaultReadyTimeout,
	}
}

// WithSize sets the number of units. Values below 1 mean GOMAXPROCS.
func WithSize(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.size = n
	}
}

// WithReadyTimeout sets the readiness handshake timeout.
func WithReadyTimeout(d time.Duration) Option {
	return func(o *options) {
		o.readyTimeout = d
	}
}

// WithDispatcherOptions passes options to every unit's dispatcher.
// WithEngine is ignored; each unit builds its own engine.
func WithDispatcherOptions(opts ...resample.DispatcherOption) Option {
	return func(o *options) {
		o.dispatch = append(o.dispatch, opts...)
	}
}

// WithEngineOptions passes options to every unit's CPU engine. Units run
// sequentially unless WithWorkers is given here.
func WithEngineOptions(opts ...resample.EngineOption) Option {
	return func(o *options) {
		o.engine = append(o.engine, opts...)
	}
}
