package scale

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/resample/internal/contrib"
	"github.com/gogpu/resample/internal/filter"
	"github.com/gogpu/resample/internal/parallel"
)

// ErrBufferSize reports an intermediate buffer whose length does not match
// its dimensions.
var ErrBufferSize = errors.New("resample: buffer length does not match dimensions")

// PlanSteps returns the sizes one axis passes through when resizing from
// from to to. Every step is at most a halving or a doubling, except the last
// one, which lands on to from within [to/2, 2·to]. The result is empty when
// from == to and always ends with to otherwise.
func PlanSteps(from, to int) []int {
	if from == to || from <= 0 || to <= 0 {
		return nil
	}
	var steps []int
	cur := from
	for cur > 2*to {
		cur = max(to, (cur+1)/2)
		steps = append(steps, cur)
	}
	for cur*2 < to {
		cur = min(to, cur*2)
		steps = append(steps, cur)
	}
	if cur != to {
		steps = append(steps, to)
	}
	return steps
}

// Plan is the sequence of passes for one 2D resize.
type Plan struct {
	Widths  []int
	Heights []int
}

// NewPlan returns the multi-step plan for resizing w×h to toW×toH.
func NewPlan(w, h, toW, toH int) Plan {
	return Plan{Widths: PlanSteps(w, toW), Heights: PlanSteps(h, toH)}
}

// DirectPlan returns a plan with at most one pass per axis.
func DirectPlan(w, h, toW, toH int) Plan {
	var p Plan
	if w != toW {
		p.Widths = []int{toW}
	}
	if h != toH {
		p.Heights = []int{toH}
	}
	return p
}

// Passes returns the total number of separable passes in the plan.
func (p Plan) Passes() int {
	return len(p.Widths) + len(p.Heights)
}

// Scaler executes plans. The zero value is not usable; Cache is required,
// Pool and Scratch may be nil.
type Scaler struct {
	Cache   *contrib.Cache
	Pool    *parallel.WorkerPool
	Scratch *Scratch
}

// Run executes plan over src (w×h), horizontal steps first, and returns the
// final buffer. The length of every intermediate buffer is checked against
// its dimensions. src is never modified; when the plan is empty src itself
// is returned.
func Run[T Sample](s Scaler, src []T, w, h int, plan Plan, cfg filter.Config) ([]T, error) {
	if err := checkLen(len(src), w, h); err != nil {
		return nil, err
	}
	maxW, maxH := w, h
	if len(plan.Widths) > 0 {
		maxW = max(w, slices.Max(plan.Widths))
	}
	if len(plan.Heights) > 0 {
		maxH = max(h, slices.Max(plan.Heights))
	}
	if maxH > 0 && maxW > math.MaxInt/4/maxH {
		return nil, fmt.Errorf("%w: %dx%d overflows", ErrBufferSize, maxW, maxH)
	}

	// The last pass writes a fresh buffer owned by the caller; earlier
	// passes draw from Scratch and go back once consumed.
	passes := plan.Passes()
	alloc := func(n int) []T {
		passes--
		if passes == 0 {
			return make([]T, n)
		}
		return getBuffer[T](s.Scratch, n)
	}
	release := func(buf []T) {
		if &buf[0] != &src[0] {
			putBuffer(s.Scratch, buf)
		}
	}

	cur := src
	for _, next := range plan.Widths {
		table := s.Cache.Axis(w, next, cfg)
		dst := alloc(next * h * 4)
		Horizontal(cur, dst, w, h, next, table, s.Pool)
		release(cur)
		cur, w = dst, next
		if err := checkLen(len(cur), w, h); err != nil {
			return nil, err
		}
	}
	for _, next := range plan.Heights {
		table := s.Cache.Axis(h, next, cfg)
		dst := alloc(w * next * 4)
		Vertical(cur, dst, w, h, next, table, s.Pool)
		release(cur)
		cur, h = dst, next
		if err := checkLen(len(cur), w, h); err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func checkLen(n, w, h int) error {
	if w < 0 || h < 0 || (h > 0 && w > math.MaxInt/4/h) {
		return fmt.Errorf("%w: %dx%d overflows", ErrBufferSize, w, h)
	}
	if n != w*h*4 {
		return fmt.Errorf("%w: %d samples for %dx%d", ErrBufferSize, n, w, h)
	}
	return nil
}
