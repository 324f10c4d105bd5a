package scale

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/gogpu/resample/internal/contrib"
	"github.com/gogpu/resample/internal/filter"
	"github.com/gogpu/resample/internal/parallel"
)

func solid(w, h int, px [4]uint8) []uint8 {
	buf := make([]uint8, w*h*4)
	for i := 0; i < len(buf); i += 4 {
		copy(buf[i:i+4], px[:])
	}
	return buf
}

func mustFilter(t testing.TB, name string) filter.Config {
	t.Helper()
	cfg, ok := filter.Lookup(name)
	if !ok {
		t.Fatalf("filter %q not registered", name)
	}
	return cfg
}

func TestPlanSteps(t *testing.T) {
	tests := []struct {
		from, to int
		want     []int
	}{
		{10, 10, nil},
		{10, 6, []int{6}},
		{10, 5, []int{5}},
		{10, 20, []int{20}},
		{256, 8, []int{128, 64, 32, 16, 8}},
		{5, 1, []int{3, 2, 1}},
		{100, 30, []int{50, 30}},
		{3, 100, []int{6, 12, 24, 48, 96, 100}},
		{1, 4, []int{2, 4}},
		{7, 0, nil},
	}

	for _, tt := range tests {
		got := PlanSteps(tt.from, tt.to)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("PlanSteps(%d, %d) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPlanStepsBounded(t *testing.T) {
	for from := 1; from <= 300; from += 7 {
		for to := 1; to <= 300; to += 11 {
			steps := PlanSteps(from, to)
			if from != to && steps[len(steps)-1] != to {
				t.Fatalf("PlanSteps(%d, %d) = %v does not end at target", from, to, steps)
			}
			cur := from
			for _, next := range steps {
				if next*2 < cur-1 || next > cur*2 {
					t.Fatalf("PlanSteps(%d, %d) = %v: step %d -> %d exceeds ratio 2", from, to, steps, cur, next)
				}
				cur = next
			}
		}
	}
}

func TestDirectPlan(t *testing.T) {
	p := DirectPlan(256, 10, 8, 10)
	if !reflect.DeepEqual(p.Widths, []int{8}) || p.Heights != nil {
		t.Errorf("DirectPlan = %+v", p)
	}
	if p.Passes() != 1 {
		t.Errorf("Passes = %d, want 1", p.Passes())
	}
}

func TestBoxHalvingExact(t *testing.T) {
	px := [4]uint8{100, 150, 200, 255}
	src := solid(4, 4, px)
	s := Scaler{Cache: contrib.NewCache()}

	got, err := Run(s, src, 4, 4, NewPlan(4, 4, 2, 2), mustFilter(t, filter.Box))
	if err != nil {
		t.Fatal(err)
	}
	if want := solid(2, 2, px); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMultiStepMatchesDirectOnConstant(t *testing.T) {
	px := [4]uint8{37, 128, 240, 200}
	src := solid(256, 256, px)
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()
	s := Scaler{Cache: contrib.NewCache(), Pool: pool}

	for _, name := range filter.Names() {
		cfg := mustFilter(t, name)
		plans := map[string]Plan{
			"multi":  NewPlan(256, 256, 8, 8),
			"direct": DirectPlan(256, 256, 8, 8),
		}
		for kind, plan := range plans {
			got, err := Run(s, src, 256, 256, plan, cfg)
			if err != nil {
				t.Fatalf("%s/%s: %v", name, kind, err)
			}
			if want := solid(8, 8, px); !reflect.DeepEqual(got, want) {
				t.Errorf("%s/%s: constant field not preserved: %v", name, kind, got[:8])
			}
		}
	}
}

func TestFloatPassThrough(t *testing.T) {
	// 1x2 -> 1x1 with box averages exactly and keeps values above 1.
	src := []float32{0.25, 2, 0, 1, 0.75, 0, 0, 1}
	s := Scaler{Cache: contrib.NewCache()}

	got, err := Run(s, src, 2, 1, NewPlan(2, 1, 1, 1), mustFilter(t, filter.Box))
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{0.5, 1, 0, 1}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("channel %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBytesClampOvershoot(t *testing.T) {
	// Negative lobes push sums past both ends of the byte range.
	src := []uint8{255, 255, 255, 255, 0, 0, 0, 255}
	table := contrib.Table{
		{{Index: 0, Weight: 1.5}, {Index: 1, Weight: -0.5}},
		{{Index: 0, Weight: -0.5}, {Index: 1, Weight: 1.5}},
	}
	dst := make([]uint8, 8)
	Horizontal(src, dst, 2, 1, 2, table, nil)

	want := []uint8{255, 255, 255, 255, 0, 0, 0, 255}
	if !reflect.DeepEqual(dst, want) {
		t.Errorf("got %v, want %v", dst, want)
	}

	fdst := make([]float32, 8)
	Horizontal([]float32{1, 1, 1, 1, 0, 0, 0, 1}, fdst, 2, 1, 2, table, nil)
	if fdst[0] != 1.5 || fdst[4] != -0.5 {
		t.Errorf("float pass clamped: %v", fdst)
	}
}

func TestRunEmptyPlanReturnsSource(t *testing.T) {
	src := solid(3, 3, [4]uint8{1, 2, 3, 4})
	got, err := Run(Scaler{Cache: contrib.NewCache()}, src, 3, 3, Plan{}, mustFilter(t, filter.Box))
	if err != nil {
		t.Fatal(err)
	}
	if &got[0] != &src[0] {
		t.Error("empty plan should return src")
	}
}

func TestRunRejectsBadLength(t *testing.T) {
	_, err := Run(Scaler{Cache: contrib.NewCache()}, make([]uint8, 10), 2, 2, NewPlan(2, 2, 1, 1), mustFilter(t, filter.Box))
	if !errors.Is(err, ErrBufferSize) {
		t.Errorf("err = %v, want ErrBufferSize", err)
	}
}

func TestRunRejectsOverflow(t *testing.T) {
	s := Scaler{Cache: contrib.NewCache()}
	box := mustFilter(t, filter.Box)
	tests := []struct {
		name string
		w, h int
		plan Plan
	}{
		{"source wraps to 4 samples", 1<<62 + 1, 1, Plan{Heights: []int{2}}},
		{"step too wide", 1, 1, Plan{Widths: []int{1 << 62}}},
		{"step too tall", 1, 1, Plan{Heights: []int{math.MaxInt / 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(s, make([]uint8, 4), tt.w, tt.h, tt.plan, box)
			if !errors.Is(err, ErrBufferSize) {
				t.Errorf("err = %v, want ErrBufferSize", err)
			}
		})
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	src := make([]uint8, 97*203*4)
	for i := range src {
		src[i] = uint8(i * 31)
	}
	cfg := mustFilter(t, filter.Lanczos3)
	plan := NewPlan(97, 203, 40, 61)

	seq, err := Run(Scaler{Cache: contrib.NewCache()}, src, 97, 203, plan, cfg)
	if err != nil {
		t.Fatal(err)
	}

	pool := parallel.NewWorkerPool(4)
	defer pool.Close()
	par, err := Run(Scaler{Cache: contrib.NewCache(), Pool: pool}, src, 97, 203, plan, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(seq, par) {
		t.Error("parallel output differs from sequential")
	}
}

func BenchmarkRunLanczos3(b *testing.B) {
	src := solid(1024, 768, [4]uint8{10, 20, 30, 255})
	cfg := mustFilter(b, filter.Lanczos3)
	s := Scaler{Cache: contrib.NewCache()}
	plan := NewPlan(1024, 768, 300, 200)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Run(s, src, 1024, 768, plan, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
