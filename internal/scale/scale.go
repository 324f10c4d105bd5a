// Package scale implements the separable resampling passes and the
// multi-step planner that bounds the cost of each pass.
//
// A 2D resize is always a horizontal pass followed by a vertical pass. Each
// pass reads one interleaved RGBA buffer and writes another, accumulating
// Σ weight·channel in float32 per destination sample. Float buffers pass the
// sums through; byte buffers clamp and round them.
package scale

import (
	"github.com/gogpu/resample/internal/color"
	"github.com/gogpu/resample/internal/contrib"
	"github.com/gogpu/resample/internal/parallel"
)

// Sample is a channel value of an interleaved RGBA buffer: a gamma-encoded
// byte or a linear float.
type Sample interface {
	uint8 | float32
}

// Horizontal resamples every row of src (srcW×srcH) into dst (destW×srcH)
// using table, which must have destW entries.
func Horizontal[T Sample](src, dst []T, srcW, srcH, destW int, table contrib.Table, pool *parallel.WorkerPool) {
	store := storer[T]()
	srcStride, dstStride := srcW*4, destW*4

	pool.Bands(srcH, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			srow := src[y*srcStride : (y+1)*srcStride]
			drow := dst[y*dstStride : (y+1)*dstStride]
			for x, e := range table {
				var r, g, b, a float32
				for _, tap := range e {
					i := tap.Index * 4
					r += float32(srow[i]) * tap.Weight
					g += float32(srow[i+1]) * tap.Weight
					b += float32(srow[i+2]) * tap.Weight
					a += float32(srow[i+3]) * tap.Weight
				}
				o := x * 4
				drow[o] = store(r)
				drow[o+1] = store(g)
				drow[o+2] = store(b)
				drow[o+3] = store(a)
			}
		}
	})
}

// Vertical resamples every column of src (w×srcH) into dst (w×destH) using
// table, which must have destH entries.
func Vertical[T Sample](src, dst []T, w, srcH, destH int, table contrib.Table, pool *parallel.WorkerPool) {
	store := storer[T]()
	stride := w * 4

	pool.Bands(destH, func(lo, hi int) {
		acc := make([]float32, stride)
		for y := lo; y < hi; y++ {
			clear(acc)
			for _, tap := range table[y] {
				row := src[tap.Index*stride : (tap.Index+1)*stride]
				for i, v := range row {
					acc[i] += float32(v) * tap.Weight
				}
			}
			drow := dst[y*stride : (y+1)*stride]
			for i, v := range acc {
				drow[i] = store(v)
			}
		}
	})
}

// storer returns the conversion from an accumulated sum to T.
func storer[T Sample]() func(float32) T {
	var zero T
	if _, ok := any(zero).(uint8); ok {
		return func(v float32) T { return T(color.ClampByte(v)) }
	}
	return func(v float32) T { return T(v) }
}
