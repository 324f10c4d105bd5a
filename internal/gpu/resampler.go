//go:build !nogpu

package gpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/resample"
	"github.com/gogpu/resample/internal/contrib"
	"github.com/gogpu/resample/internal/filter"
	"github.com/gogpu/resample/internal/scale"
	"github.com/gogpu/resample/internal/sharpen"
	"github.com/gogpu/wgpu/hal"
)

// ParityTolerance is the largest per-channel difference between GPU and CPU
// results for the same request.
const ParityTolerance = 2

// Resampler is a resample.GPUAccelerator backed by wgpu/hal compute shaders.
// Requests are serialized; the device is used by one request at a time.
type Resampler struct {
	mu sync.Mutex

	spirv [stageCount][]uint32
	ready bool

	instance       hal.Instance
	device         hal.Device
	queue          hal.Queue
	externalDevice bool
	disabled       bool
	openErr        error
	pipes          *pipelines
	limits         gputypes.Limits

	tables  *contrib.Cache
	kernels *sharpen.KernelCache
}

var (
	_ resample.GPUAccelerator      = (*Resampler)(nil)
	_ resample.DeviceProviderAware = (*Resampler)(nil)
)

// NewResampler returns an uninitialized resampler. Call Init, usually via
// resample.RegisterAccelerator.
func NewResampler() *Resampler {
	return &Resampler{
		limits:  gputypes.DefaultLimits(),
		tables:  contrib.NewCache(),
		kernels: sharpen.NewKernelCache(),
	}
}

// Name implements resample.Resizer.
func (r *Resampler) Name() string { return "wgpu" }

// SetLogger receives the logger propagated by resample.SetLogger.
func (r *Resampler) SetLogger(l *slog.Logger) { setLogger(l) }

// Init compiles every shader. The GPU device is opened on first use.
func (r *Resampler) Init() error {
	spirv, err := compileAll()
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.spirv = spirv
	r.ready = true
	r.mu.Unlock()
	slogger().Debug("gpu: shaders compiled", "stages", int(stageCount))
	return nil
}

// Close releases all GPU resources. A shared device is left alone.
func (r *Resampler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseDevice()
	r.ready = false
	r.tables.Clear()
	r.kernels.Clear()
}

// ClearCache drops memoized contribution tables and blur kernels.
func (r *Resampler) ClearCache() {
	r.tables.Clear()
	r.kernels.Clear()
}

// CanAccelerate reports whether req can run on the GPU: byte pixels, a
// real size change, and dimensions within the device limits.
func (r *Resampler) CanAccelerate(req *resample.Request) bool {
	if req == nil || req.Src.Format() != resample.FormatRGBA8 {
		return false
	}
	if req.ToWidth <= 0 || req.ToHeight <= 0 {
		return false
	}
	if req.Width == req.ToWidth && req.Height == req.ToHeight {
		return false
	}

	r.mu.Lock()
	ok := r.ready && !r.disabled && r.openErr == nil
	r.mu.Unlock()
	return ok && r.fits(req.Width, req.Height, req.ToWidth, req.ToHeight)
}

// fits checks the largest intermediate image against the storage binding
// limit and every side against the dispatch limit.
func (r *Resampler) fits(w, h, toW, toH int) bool {
	maxSide := uint64(r.limits.MaxComputeWorkgroupsPerDimension) * 8
	for _, v := range []int{w, h, toW, toH} {
		if uint64(v) > maxSide { //nolint:gosec // validated positive
			return false
		}
	}
	px := uint64(max(w, toW)) * uint64(max(h, toH)) //nolint:gosec // validated positive
	return px*16 <= r.limits.MaxStorageBufferBindingSize
}

// Resize implements resample.Resizer. Requests the GPU cannot take return
// resample.ErrFallbackToCPU, possibly wrapped with the device error.
func (r *Resampler) Resize(req *resample.Request) (resample.Buffer, error) {
	if err := req.Validate(); err != nil {
		return resample.Buffer{}, err
	}
	if !r.CanAccelerate(req) {
		return resample.Buffer{}, resample.ErrFallbackToCPU
	}

	name := req.Filter
	if name == "" {
		name = resample.DefaultFilter
	}
	cfg, _ := filter.Lookup(name)
	plan := scale.NewPlan(req.Width, req.Height, req.ToWidth, req.ToHeight)
	passes, maxPixels := buildPasses(req.Width, req.Height, plan.Widths, plan.Heights,
		r.planTables(req.Width, req.Height, plan, cfg), req.GammaCorrect)

	slogger().Debug("gpu: resize",
		"src", [2]int{req.Width, req.Height},
		"dst", [2]int{req.ToWidth, req.ToHeight},
		"filter", cfg.Name,
		"passes", len(passes),
		"gamma", req.GammaCorrect)

	r.mu.Lock()
	if err := r.ensureDevice(); err != nil {
		r.mu.Unlock()
		return resample.Buffer{}, fmt.Errorf("%w: %w", resample.ErrFallbackToCPU, err)
	}
	out, err := r.run(req.Src.U8(), passes, maxPixels)
	r.mu.Unlock()
	if err != nil {
		return resample.Buffer{}, err
	}

	if req.UnsharpAmount > 0 && req.UnsharpRadius >= 0.5 {
		out = sharpen.Unsharp(out, req.ToWidth, req.ToHeight,
			req.UnsharpAmount, req.UnsharpRadius, req.UnsharpThreshold, r.kernels)
	}

	if req.Dest.IsNil() {
		return resample.Bytes(out), nil
	}
	copy(req.Dest.U8(), out)
	return req.Dest, nil
}

// planTables returns the contribution table of every pass in plan order.
func (r *Resampler) planTables(w, h int, plan scale.Plan, cfg filter.Config) []contrib.Table {
	tables := make([]contrib.Table, 0, plan.Passes())
	cur := w
	for _, tw := range plan.Widths {
		tables = append(tables, r.tables.Axis(cur, tw, cfg))
		cur = tw
	}
	cur = h
	for _, th := range plan.Heights {
		tables = append(tables, r.tables.Axis(cur, th, cfg))
		cur = th
	}
	return tables
}
