// Package filter provides the reconstruction filters used by the resampler.
//
// Each filter maps a distance, measured in destination-sample units, to a
// weight. Filters are pure functions with a declared support radius beyond
// which the weight is zero:
//   - box (support 0.5)
//   - hamming (support 1)
//   - lanczos2, lanczos3 (support 2, 3)
//   - mks2013, Mitchell-Netravali cubic with B = C = 1/3 (support 2)
//   - bicubic, Keys cubic with a = -0.5 (support 2)
//
// The set is fixed. Config values are immutable and safe to share between
// goroutines.
package filter
