// Package sharpen implements the unsharp-mask post-processor: a separable
// Gaussian blur over RGBA bytes with reflected edges, and the mask that adds
// back the thresholded difference between the image and its blur.
package sharpen

import (
	"math"

	"github.com/gogpu/resample/internal/cache"
)

// GaussianKernel generates a 1D Gaussian kernel for the given sigma.
// The kernel is normalized so all values sum to 1.0.
//
// The kernel size is 2 * ceil(sigma * 3) + 1, which covers 99.7% of the
// Gaussian distribution (3 standard deviations).
//
// For sigma <= 0, returns a single-element kernel [1.0] (identity).
func GaussianKernel(sigma float64) []float32 {
	if sigma <= 0 {
		return []float32{1.0}
	}

	halfSize := int(math.Ceil(sigma * 3))
	size := halfSize*2 + 1

	kernel := make([]float32, size)

	// G(x) = exp(-x²/(2σ²)); the constant factor cancels in normalization.
	twoSigmaSq := 2 * sigma * sigma
	sum := float64(0)
	weights := make([]float64, size)

	for i := 0; i < size; i++ {
		x := float64(i - halfSize)
		weights[i] = math.Exp(-(x * x) / twoSigmaSq)
		sum += weights[i]
	}

	for i, w := range weights {
		kernel[i] = float32(w / sum)
	}

	return kernel
}

// KernelSize returns the length of the kernel GaussianKernel builds for sigma.
func KernelSize(sigma float64) int {
	if sigma <= 0 {
		return 1
	}
	return int(math.Ceil(sigma*3))*2 + 1
}

// KernelCache memoizes Gaussian kernels by sigma quantized to 0.01. It never
// evicts; Clear empties it.
type KernelCache struct {
	kernels *cache.Cache[int64, []float32]
}

// NewKernelCache returns an empty kernel cache.
func NewKernelCache() *KernelCache {
	return &KernelCache{kernels: cache.New[int64, []float32]()}
}

// Kernel returns the cached kernel for sigma. Sigmas that round to the same
// hundredth share a kernel, built from the rounded value. The returned slice
// is shared and must not be modified.
func (c *KernelCache) Kernel(sigma float64) []float32 {
	key := int64(math.Round(sigma * 100))
	return c.kernels.GetOrCreate(key, func() []float32 {
		return GaussianKernel(float64(key) / 100)
	})
}

// Clear drops every cached kernel.
func (c *KernelCache) Clear() {
	c.kernels.Clear()
}

// Len returns the number of cached kernels.
func (c *KernelCache) Len() int {
	return c.kernels.Len()
}

// Stats reports hit and miss counts.
func (c *KernelCache) Stats() cache.Stats {
	return c.kernels.Stats()
}
