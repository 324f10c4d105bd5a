package sharpen

import (
	"math"
	"sync"

	"github.com/gogpu/resample/internal/color"
)

// minSigma is the smallest blur sigma; smaller radii are raised to it.
const minSigma = 0.5

// Blur returns a Gaussian-blurred copy of src (w×h interleaved RGBA bytes)
// with sigma = max(radius, 0.5). Samples outside the image are reflected
// back inside: -i for i < 0 and 2n-i-1 for i >= n.
//
// The horizontal pass writes float sums to a pooled buffer and the vertical
// pass clamps and rounds them to bytes.
func Blur(src []uint8, w, h int, radius float64, kc *KernelCache) []uint8 {
	dst := make([]uint8, len(src))
	if w <= 0 || h <= 0 {
		return dst
	}

	kernel := kc.Kernel(math.Max(radius, minSigma))

	temp := getTempBuffer(len(src))
	defer putTempBuffer(temp)

	blurHorizontal(src, temp, w, h, kernel)
	blurVertical(temp, dst, w, h, kernel)
	return dst
}

// blurHorizontal convolves every row of src into temp.
func blurHorizontal(src []uint8, temp []float32, w, h int, kernel []float32) {
	half := len(kernel) / 2

	for y := 0; y < h; y++ {
		row := y * w * 4
		for x := 0; x < w; x++ {
			var r, g, b, a float32
			for k, weight := range kernel {
				i := row + reflect(x+k-half, w)*4
				r += float32(src[i]) * weight
				g += float32(src[i+1]) * weight
				b += float32(src[i+2]) * weight
				a += float32(src[i+3]) * weight
			}
			o := row + x*4
			temp[o] = r
			temp[o+1] = g
			temp[o+2] = b
			temp[o+3] = a
		}
	}
}

// blurVertical convolves every column of temp into dst.
func blurVertical(temp []float32, dst []uint8, w, h int, kernel []float32) {
	half := len(kernel) / 2
	stride := w * 4

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a float32
			for k, weight := range kernel {
				i := reflect(y+k-half, h)*stride + x*4
				r += temp[i] * weight
				g += temp[i+1] * weight
				b += temp[i+2] * weight
				a += temp[i+3] * weight
			}
			o := y*stride + x*4
			dst[o] = color.ClampByte(r)
			dst[o+1] = color.ClampByte(g)
			dst[o+2] = color.ClampByte(b)
			dst[o+3] = color.ClampByte(a)
		}
	}
}

// reflect maps i into [0, n) by mirroring at the edges. Kernels wider than
// the image can reflect past the far edge; those indices are clamped.
func reflect(i, n int) int {
	if i < 0 {
		i = -i
	} else if i >= n {
		i = 2*n - i - 1
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// floatBuffer wraps a slice for sync.Pool to avoid allocation warnings.
type floatBuffer struct {
	data []float32
}

// Temporary buffer pool for blur passes.
var tempBufferPool = sync.Pool{
	New: func() any {
		return &floatBuffer{data: make([]float32, 512*512*4)}
	},
}

// getTempBuffer returns a buffer of exactly n elements. Every element is
// overwritten by the horizontal pass, so the buffer is not cleared.
func getTempBuffer(n int) []float32 {
	wrapper := tempBufferPool.Get().(*floatBuffer)
	if len(wrapper.data) < n {
		tempBufferPool.Put(wrapper)
		return make([]float32, n)
	}
	return wrapper.data[:n]
}

// putTempBuffer returns a temporary buffer to the pool.
func putTempBuffer(buf []float32) {
	// Only pool reasonably-sized buffers (64MB max).
	if cap(buf) <= 16*1024*1024 {
		tempBufferPool.Put(&floatBuffer{data: buf[:cap(buf)]})
	}
}
