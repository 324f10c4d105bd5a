package resample

import (
	"bytes"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/gogpu/resample/internal/sharpen"
)

func solidBytes(w, h int, px [4]uint8) []uint8 {
	buf := make([]uint8, w*h*4)
	for i := 0; i < len(buf); i += 4 {
		copy(buf[i:i+4], px[:])
	}
	return buf
}

func noiseBytes(w, h int, seed uint64) []uint8 {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	buf := make([]uint8, w*h*4)
	for i := range buf {
		buf[i] = uint8(r.UintN(256))
	}
	return buf
}

func TestEngineIdentity(t *testing.T) {
	e := NewEngine()
	src := noiseBytes(5, 3, 1)

	for _, name := range Filters() {
		for _, gamma := range []bool{true, false} {
			req := NewRequest(Bytes(src), 5, 3, 5, 3)
			req.Filter = name
			req.GammaCorrect = gamma
			req.UnsharpAmount = 200

			out, err := e.Resize(req)
			if err != nil {
				t.Fatalf("%s gamma=%v: %v", name, gamma, err)
			}
			if !bytes.Equal(out.U8(), src) {
				t.Errorf("%s gamma=%v: identity resize changed pixels", name, gamma)
			}
			if &out.U8()[0] == &src[0] {
				t.Errorf("%s gamma=%v: identity returned the source slice", name, gamma)
			}
		}
	}

	fsrc := []float32{0.1, 2.5, -0.25, 1}
	out, err := e.Resize(NewRequest(Floats(fsrc), 1, 1, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out.F32() {
		if v != fsrc[i] {
			t.Errorf("float identity [%d] = %v, want %v", i, v, fsrc[i])
		}
	}
}

func TestEngineBoxHalvingExact(t *testing.T) {
	px := [4]uint8{100, 150, 200, 255}
	req := NewRequest(Bytes(solidBytes(4, 4, px)), 4, 4, 2, 2)
	req.Filter = FilterBox
	req.GammaCorrect = false

	out, err := NewEngine().Resize(req)
	if err != nil {
		t.Fatal(err)
	}
	if want := solidBytes(2, 2, px); !bytes.Equal(out.U8(), want) {
		t.Errorf("got %v, want %v", out.U8(), want)
	}
}

func TestEngineEmptyTarget(t *testing.T) {
	e := NewEngine()
	src := Bytes(solidBytes(4, 4, [4]uint8{1, 2, 3, 4}))

	for _, size := range [][2]int{{0, 3}, {3, 0}, {0, 0}} {
		out, err := e.Resize(NewRequest(src, 4, 4, size[0], size[1]))
		if err != nil {
			t.Fatalf("%v: %v", size, err)
		}
		if out.Len() != 0 || out.Format() != FormatRGBA8 {
			t.Errorf("%v: got %d samples of %s, want empty rgba8", size, out.Len(), out.Format())
		}
	}

	dest := []uint8{9, 9, 9}
	req := NewRequest(src, 4, 4, 0, 5)
	req.Dest = Bytes(dest)
	out, err := e.Resize(req)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.U8(), []uint8{9, 9, 9}) || &out.U8()[0] != &dest[0] {
		t.Error("empty target must return dest untouched")
	}
}

func TestEngineUnsharpGate(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		radius    float64
		threshold float64
		wantCalls int
	}{
		{"zero amount", 0, 1, 0, 0},
		{"zero amount large radius", 0, 50, 255, 0},
		{"radius below half", 80, 0.49, 0, 0},
		{"enabled", 80, 0.5, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			calls := 0
			e.unsharp = func(src []uint8, w, h int, amount, radius, threshold float64, kc *sharpen.KernelCache) []uint8 {
				calls++
				if w != 3 || h != 2 {
					t.Errorf("unsharp got %dx%d, want 3x2", w, h)
				}
				return src
			}

			req := NewRequest(Bytes(noiseBytes(6, 4, 2)), 6, 4, 3, 2)
			req.UnsharpAmount = tt.amount
			req.UnsharpRadius = tt.radius
			req.UnsharpThreshold = tt.threshold
			if _, err := e.Resize(req); err != nil {
				t.Fatal(err)
			}
			if calls != tt.wantCalls {
				t.Errorf("unsharp called %d times, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestEngineMultiStepMatchesDirect(t *testing.T) {
	px := [4]uint8{200, 30, 90, 255}
	src := Bytes(solidBytes(256, 256, px))

	for _, gamma := range []bool{false, true} {
		for _, e := range []*Engine{NewEngine(), NewEngine(WithDirectPasses())} {
			req := NewRequest(src, 256, 256, 8, 8)
			req.GammaCorrect = gamma
			out, err := e.Resize(req)
			if err != nil {
				t.Fatal(err)
			}
			tol := 0
			if gamma {
				tol = 1
			}
			got := out.U8()
			for i := range got {
				if d := int(got[i]) - int(px[i%4]); d < -tol || d > tol {
					t.Fatalf("gamma=%v multiStep=%v: sample %d = %d, want %d±%d", gamma, e.multiStep, i, got[i], px[i%4], tol)
				}
			}
		}
	}
}

func TestEngineGammaCorrectAveraging(t *testing.T) {
	// Averaging black and white in linear light gives a brighter sRGB
	// gray than averaging the encoded values.
	src := Bytes([]uint8{0, 0, 0, 255, 255, 255, 255, 255})
	e := NewEngine()

	req := NewRequest(src, 2, 1, 1, 1)
	req.Filter = FilterBox
	req.GammaCorrect = false
	plain, err := e.Resize(req)
	if err != nil {
		t.Fatal(err)
	}

	req.GammaCorrect = true
	linear, err := e.Resize(req)
	if err != nil {
		t.Fatal(err)
	}

	if g := plain.U8()[0]; g < 127 || g > 128 {
		t.Errorf("encoded average = %d, want 127 or 128", g)
	}
	if g := linear.U8()[0]; g < 186 || g > 189 {
		t.Errorf("linear average = %d, want about 188", g)
	}
	if linear.U8()[3] != 255 {
		t.Errorf("alpha = %d, want 255", linear.U8()[3])
	}
}

func TestEngineFloatInput(t *testing.T) {
	src := make([]float32, 8*8*4)
	for i := range src {
		src[i] = 0.5
	}
	req := NewRequest(Floats(src), 8, 8, 3, 5)
	req.UnsharpAmount = 100 // float results are not sharpened

	out, err := NewEngine().Resize(req)
	if err != nil {
		t.Fatal(err)
	}
	if out.Format() != FormatLinearF32 || out.Len() != 3*5*4 {
		t.Fatalf("got %d samples of %s", out.Len(), out.Format())
	}
	for i, v := range out.F32() {
		if math.Abs(float64(v)-0.5) > 1e-5 {
			t.Fatalf("sample %d = %v, want 0.5", i, v)
		}
	}
}

func TestEngineFloatOutputClamped(t *testing.T) {
	// A hard step rings under lanczos3 when upscaled.
	src := make([]float32, 8*1*4)
	for x := 4; x < 8; x++ {
		for c := 0; c < 4; c++ {
			src[x*4+c] = 1
		}
	}
	out, err := NewEngine().Resize(NewRequest(Floats(src), 8, 1, 32, 1))
	if err != nil {
		t.Fatal(err)
	}
	var sawLow, sawHigh bool
	for i, v := range out.F32() {
		if v < 0 || v > 1 {
			t.Fatalf("sample %d = %v outside [0, 1]", i, v)
		}
		sawLow = sawLow || v == 0
		sawHigh = sawHigh || v == 1
	}
	if !sawLow || !sawHigh {
		t.Error("step edge lost its plateaus")
	}
}

func TestEngineRejectsOverflowingSize(t *testing.T) {
	req := NewRequest(Bytes([]uint8{1, 2, 3, 255}), 1<<62+1, 1, 1, 1)
	_, err := NewEngine().Resize(req)
	if !errors.Is(err, ErrBufferSize) || !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("err = %v, want invalid request with ErrBufferSize", err)
	}
}

func TestEngineWritesDest(t *testing.T) {
	dest := make([]uint8, 2*2*4)
	req := NewRequest(Bytes(solidBytes(4, 4, [4]uint8{10, 20, 30, 40})), 4, 4, 2, 2)
	req.Dest = Bytes(dest)
	req.GammaCorrect = false

	out, err := NewEngine().Resize(req)
	if err != nil {
		t.Fatal(err)
	}
	if &out.U8()[0] != &dest[0] {
		t.Error("result is not the supplied dest")
	}
	if !bytes.Equal(dest, solidBytes(2, 2, [4]uint8{10, 20, 30, 40})) {
		t.Errorf("dest = %v", dest)
	}
}

func TestEngineRejectsBadDestWithoutWriting(t *testing.T) {
	dest := []uint8{1, 2, 3, 4, 5}
	req := NewRequest(Bytes(solidBytes(4, 4, [4]uint8{})), 4, 4, 2, 2)
	req.Dest = Bytes(dest)

	_, err := NewEngine().Resize(req)
	if !errors.Is(err, ErrInvalidRequest) || !errors.Is(err, ErrBufferSize) {
		t.Fatalf("err = %v, want invalid request with buffer size cause", err)
	}
	if !bytes.Equal(dest, []uint8{1, 2, 3, 4, 5}) {
		t.Error("dest modified on validation failure")
	}

	req.Dest = Floats(make([]float32, 16))
	if _, err := NewEngine().Resize(req); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("float dest for byte source: err = %v", err)
	}
}

func TestEngineResultSizes(t *testing.T) {
	e := NewEngine()
	src := Bytes(noiseBytes(37, 23, 3))

	sizes := [][2]int{{1, 1}, {37, 1}, {1, 23}, {100, 7}, {5, 300}, {74, 46}, {18, 11}}
	for _, s := range sizes {
		for _, name := range Filters() {
			req := NewRequest(src, 37, 23, s[0], s[1])
			req.Filter = name
			out, err := e.Resize(req)
			if err != nil {
				t.Fatalf("%s %v: %v", name, s, err)
			}
			if out.Len() != s[0]*s[1]*4 {
				t.Errorf("%s %v: %d samples, want %d", name, s, out.Len(), s[0]*s[1]*4)
			}
		}
	}
}

func TestEngineParallelMatchesSequential(t *testing.T) {
	src := Bytes(noiseBytes(160, 120, 4))
	seq := NewEngine()
	par := NewEngine(WithWorkers(4))
	defer par.Close()

	want, err := seq.Resize(NewRequest(src, 160, 120, 61, 97))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := par.Resize(NewRequest(src, 160, 120, 61, 97))
			if err != nil {
				t.Error(err)
				return
			}
			if !bytes.Equal(got.U8(), want.U8()) {
				t.Error("parallel result differs from sequential")
			}
		}()
	}
	wg.Wait()
}

func TestEngineCache(t *testing.T) {
	e := NewEngine()
	if e.Name() != "cpu" {
		t.Errorf("Name = %q, want cpu", e.Name())
	}

	req := NewRequest(Bytes(noiseBytes(16, 16, 5)), 16, 16, 8, 8)
	req.UnsharpAmount = 50
	for range 3 {
		if _, err := e.Resize(req); err != nil {
			t.Fatal(err)
		}
	}

	st := e.CacheStats()
	// One table serves both axes of a square resize.
	if st.Tables != 1 || st.TableMisses != 1 || st.TableHits != 5 {
		t.Errorf("table stats = %+v", st)
	}
	if st.Kernels != 1 || st.KernelMisses != 1 || st.KernelHits != 2 {
		t.Errorf("kernel stats = %+v", st)
	}
	// The horizontal intermediate is recycled between runs.
	if st.Scratch != 1 {
		t.Errorf("scratch buffers = %d, want 1", st.Scratch)
	}

	e.ClearCache()
	if st := e.CacheStats(); st.Tables != 0 || st.Kernels != 0 || st.Scratch != 0 {
		t.Errorf("after ClearCache: %+v", st)
	}
}

func BenchmarkEngineResize(b *testing.B) {
	e := NewEngine()
	req := NewRequest(Bytes(noiseBytes(1280, 720, 6)), 1280, 720, 320, 180)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Resize(req); err != nil {
			b.Fatal(err)
		}
	}
}
