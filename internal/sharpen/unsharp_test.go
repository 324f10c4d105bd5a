package sharpen

import (
	"bytes"
	"testing"
)

func solid(w, h int, px [4]uint8) []uint8 {
	buf := make([]uint8, w*h*4)
	for i := 0; i < len(buf); i += 4 {
		copy(buf[i:i+4], px[:])
	}
	return buf
}

// step returns a w×h image whose left half is lo and right half hi.
func step(w, h int, lo, hi uint8) []uint8 {
	buf := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := lo
			if x >= w/2 {
				v = hi
			}
			i := (y*w + x) * 4
			buf[i], buf[i+1], buf[i+2], buf[i+3] = v, v, v, 255
		}
	}
	return buf
}

func TestReflect(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{-1, 5, 1},
		{-3, 5, 3},
		{5, 5, 4},
		{7, 5, 2},
		{-4, 2, 1}, // reflects past the far edge
		{9, 2, 0},
		{-2, 1, 0},
	}
	for _, tt := range tests {
		if got := reflect(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestBlurPreservesConstant(t *testing.T) {
	kc := NewKernelCache()
	px := [4]uint8{12, 99, 250, 128}

	for _, r := range []float64{0, 0.5, 1, 3} {
		src := solid(9, 5, px)
		if got := Blur(src, 9, 5, r, kc); !bytes.Equal(got, src) {
			t.Errorf("radius %v: constant image changed", r)
		}
	}
}

func TestBlurSmoothsEdge(t *testing.T) {
	src := step(16, 4, 0, 200)
	got := Blur(src, 16, 4, 1.5, NewKernelCache())

	left := got[(1*16+7)*4]
	right := got[(1*16+8)*4]
	if left == 0 || right == 200 || left >= right {
		t.Errorf("edge not smoothed: left=%d right=%d", left, right)
	}
	if got[3] != 255 {
		t.Errorf("alpha = %d, want 255", got[3])
	}
	if src[(1*16+7)*4] != 0 {
		t.Error("Blur modified src")
	}
}

func TestBlurTinyImage(t *testing.T) {
	// Kernel far wider than the image.
	src := []uint8{10, 20, 30, 255}
	got := Blur(src, 1, 1, 2, NewKernelCache())
	if !bytes.Equal(got, src) {
		t.Errorf("got %v, want %v", got, src)
	}
}

func TestUnsharpZeroAmountIsIdentity(t *testing.T) {
	src := step(12, 3, 40, 180)
	got := Unsharp(src, 12, 3, 0, 1, 0, NewKernelCache())
	if !bytes.Equal(got, src) {
		t.Error("amount 0 changed the image")
	}
}

func TestUnsharpIncreasesContrast(t *testing.T) {
	src := step(12, 3, 40, 180)
	got := Unsharp(src, 12, 3, 100, 1, 0, NewKernelCache())

	x0, x1 := (1*12+5)*4, (1*12+6)*4
	if got[x0] >= 40 {
		t.Errorf("dark side of edge = %d, want < 40", got[x0])
	}
	if got[x1] <= 180 {
		t.Errorf("bright side of edge = %d, want > 180", got[x1])
	}
	// Far from the edge the blur equals the image.
	if got[(1*12+0)*4] != 40 || got[(1*12+11)*4] != 180 {
		t.Errorf("flat regions changed: %d, %d", got[(1*12+0)*4], got[(1*12+11)*4])
	}
	if src[x0] != 40 {
		t.Error("Unsharp modified src")
	}
}

func TestUnsharpThresholdSuppresses(t *testing.T) {
	src := step(12, 3, 100, 104)
	got := Unsharp(src, 12, 3, 500, 1, 10, NewKernelCache())
	if !bytes.Equal(got, src) {
		t.Error("differences below threshold were applied")
	}
}

func TestUnsharpKeepsAlphaAndClamps(t *testing.T) {
	src := step(12, 3, 0, 255)
	for i := 3; i < len(src); i += 4 {
		src[i] = uint8(i)
	}
	got := Unsharp(src, 12, 3, 400, 2, 0, NewKernelCache())

	for i := 3; i < len(src); i += 4 {
		if got[i] != src[i] {
			t.Fatalf("alpha at %d = %d, want %d", i, got[i], src[i])
		}
	}
	x0, x1 := (1*12+5)*4, (1*12+6)*4
	if got[x0] != 0 || got[x1] != 255 {
		t.Errorf("edge = %d, %d, want clamped 0, 255", got[x0], got[x1])
	}
}

func BenchmarkUnsharp(b *testing.B) {
	src := step(512, 512, 30, 220)
	kc := NewKernelCache()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Unsharp(src, 512, 512, 80, 1, 2, kc)
	}
}
