// Package cache provides the generic memoization map shared by the resampler's
// contribution tables and Gaussian kernels.
//
//	c := cache.New[string, []float32]()
//	k := c.GetOrCreate("1.50", func() []float32 { return build(1.5) })
//
// A Cache is owned by whoever creates it; there is no package-level
// instance. Nothing is evicted automatically: entries are only removed by
// Clear.
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
