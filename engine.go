package resample

import (
	"github.com/gogpu/resample/internal/color"
	"github.com/gogpu/resample/internal/contrib"
	"github.com/gogpu/resample/internal/filter"
	"github.com/gogpu/resample/internal/parallel"
	"github.com/gogpu/resample/internal/scale"
	"github.com/gogpu/resample/internal/sharpen"
)

// scratchPerSize bounds the pooled step buffers of each length.
const scratchPerSize = 4

// unsharpFunc is the signature of the sharpening post-processor.
type unsharpFunc func(src []uint8, w, h int, amount, radius, threshold float64, kc *sharpen.KernelCache) []uint8

// Engine is the CPU resampling pipeline. It owns its contribution and
// Gaussian kernel caches, so separate engines share no state.
//
// Engine is safe for concurrent use. ClearCache may race with an in-flight
// Resize; the only effect is that a table is computed again.
type Engine struct {
	tables    *contrib.Cache
	kernels   *sharpen.KernelCache
	pool      *parallel.WorkerPool
	scratch   *scale.Scratch
	multiStep bool
	unsharp   unsharpFunc
}

// NewEngine creates a CPU engine with empty caches.
func NewEngine(opts ...EngineOption) *Engine {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		tables:    contrib.NewCache(),
		kernels:   sharpen.NewKernelCache(),
		scratch:   scale.NewScratch(scratchPerSize),
		multiStep: o.multiStep,
		unsharp:   sharpen.Unsharp,
	}
	if o.workers < 0 || o.workers > 1 {
		e.pool = parallel.NewWorkerPool(max(o.workers, 0))
	}
	return e
}

// Name returns "cpu".
func (e *Engine) Name() string { return "cpu" }

// Close stops the engine's worker goroutines, if any. The engine keeps
// working sequentially afterwards.
func (e *Engine) Close() {
	e.pool.Close()
}

// ClearCache empties the contribution and kernel caches and drops pooled
// step buffers.
func (e *Engine) ClearCache() {
	e.tables.Clear()
	e.kernels.Clear()
	e.scratch.Clear()
}

// CacheStats describes the engine's memo caches.
type CacheStats struct {
	Tables       int
	TableHits    uint64
	TableMisses  uint64
	Kernels      int
	KernelHits   uint64
	KernelMisses uint64
	Scratch      int // pooled intermediate buffers
}

// CacheStats returns the current cache sizes and hit counts.
func (e *Engine) CacheStats() CacheStats {
	t, k := e.tables.Stats(), e.kernels.Stats()
	return CacheStats{
		Tables:       t.Len,
		TableHits:    t.Hits,
		TableMisses:  t.Misses,
		Kernels:      k.Len,
		KernelHits:   k.Hits,
		KernelMisses: k.Misses,
		Scratch:      e.scratch.Len(),
	}
}

// Resize runs req through the CPU pipeline:
//
//  1. validate the request
//  2. return early for an empty target or an unchanged size
//  3. decode byte sources to linear light when gamma correct
//  4. resize horizontally, then vertically, in halving/doubling steps
//  5. encode back to sRGB bytes
//  6. sharpen when UnsharpAmount > 0 and UnsharpRadius >= 0.5
//  7. copy into req.Dest, or return the freshly allocated result
func (e *Engine) Resize(req *Request) (Buffer, error) {
	if err := req.Validate(); err != nil {
		return Buffer{}, err
	}

	if req.emptyTarget() {
		if !req.Dest.IsNil() {
			return req.Dest, nil
		}
		return empty(req.Src.Format()), nil
	}

	var out Buffer
	if req.Width == req.ToWidth && req.Height == req.ToHeight {
		out = req.Src.Clone()
	} else {
		var err error
		if out, err = e.resample(req); err != nil {
			return Buffer{}, err
		}
		out = e.postProcess(req, out)
	}

	if req.Dest.IsNil() {
		return out, nil
	}
	copyInto(req.Dest, out)
	return req.Dest, nil
}

// resample performs steps 3 to 5.
func (e *Engine) resample(req *Request) (Buffer, error) {
	cfg, _ := filter.Lookup(req.filterName())
	s := scale.Scaler{Cache: e.tables, Pool: e.pool, Scratch: e.scratch}
	plan := e.plan(req)

	Logger().Debug("resample: cpu plan",
		"src", [2]int{req.Width, req.Height},
		"dst", [2]int{req.ToWidth, req.ToHeight},
		"filter", cfg.Name,
		"widths", plan.Widths,
		"heights", plan.Heights,
		"gamma", req.GammaCorrect,
		"format", req.Src.Format().String())

	switch {
	case req.Src.Format() == FormatLinearF32:
		out, err := scale.Run(s, req.Src.F32(), req.Width, req.Height, plan, cfg)
		if err != nil {
			return Buffer{}, err
		}
		color.ClampUnit(out)
		return Floats(out), nil

	case req.GammaCorrect:
		lin := color.ToLinear(req.Src.U8(), nil)
		out, err := scale.Run(s, lin, req.Width, req.Height, plan, cfg)
		if err != nil {
			return Buffer{}, err
		}
		return Bytes(color.ToSRGB(out, nil)), nil

	default:
		out, err := scale.Run(s, req.Src.U8(), req.Width, req.Height, plan, cfg)
		if err != nil {
			return Buffer{}, err
		}
		return Bytes(out), nil
	}
}

func (e *Engine) plan(req *Request) scale.Plan {
	if e.multiStep {
		return scale.NewPlan(req.Width, req.Height, req.ToWidth, req.ToHeight)
	}
	return scale.DirectPlan(req.Width, req.Height, req.ToWidth, req.ToHeight)
}

// postProcess performs step 6. Sharpening works on bytes; float results are
// returned as they are.
func (e *Engine) postProcess(req *Request, out Buffer) Buffer {
	if !req.sharpens() {
		return out
	}
	if out.Format() != FormatRGBA8 {
		Logger().Debug("resample: unsharp skipped for float result")
		return out
	}
	return Bytes(e.unsharp(out.U8(), req.ToWidth, req.ToHeight,
		req.UnsharpAmount, req.UnsharpRadius, req.UnsharpThreshold, e.kernels))
}
