// Package contrib builds the per-axis contribution tables used by the
// separable resampler: for every destination sample, the source samples that
// contribute to it and their normalized weights.
package contrib

import (
	"math"

	"github.com/gogpu/resample/internal/filter"
)

// minWeight is the magnitude below which a weight, or a weight sum, is
// treated as zero.
const minWeight = 1e-6

// Tap is one (source index, weight) pair.
type Tap struct {
	Index  int
	Weight float32
}

// Entry lists the taps of one destination sample in ascending source order.
// Its weights sum to 1.
type Entry []Tap

// Table holds one Entry per destination sample.
type Table []Entry

// MaxTaps returns the length of the longest entry.
func (t Table) MaxTaps() int {
	n := 0
	for _, e := range t {
		if len(e) > n {
			n = len(e)
		}
	}
	return n
}

// Support returns the filter support to use at the given scale. The radius
// widens by 1/scale when downscaling and is left alone when upscaling.
func Support(cfg filter.Config, scale float64) float64 {
	if scale < 1 {
		return cfg.Support / scale
	}
	return cfg.Support
}

// Calculate builds the contribution table mapping srcSize samples onto
// destSize samples at the given scale (dest/src) and support radius.
func Calculate(destSize, srcSize int, scale, support float64, cfg filter.Config) Table {
	table := make(Table, destSize)
	if srcSize <= 0 {
		return table
	}
	for d := 0; d < destSize; d++ {
		center := (float64(d) + 0.5) / scale
		start := int(math.Max(0, math.Floor(center-support)))
		end := int(math.Min(float64(srcSize-1), math.Ceil(center+support)))

		entry := make(Entry, 0, max(end-start+1, 1))
		var sum float64
		weights := make([]float64, 0, cap(entry))
		for s := start; s <= end; s++ {
			w := cfg.Weight((center - float64(s) - 0.5) * scale)
			if math.Abs(w) <= minWeight {
				continue
			}
			entry = append(entry, Tap{Index: s})
			weights = append(weights, w)
			sum += w
		}

		if math.Abs(sum) > minWeight {
			for i := range entry {
				entry[i].Weight = float32(weights[i] / sum)
			}
		} else {
			entry = append(entry[:0], Tap{Index: nearest(center, srcSize), Weight: 1})
		}
		table[d] = entry
	}
	return table
}

// nearest returns the source index closest to center, clamped to bounds.
func nearest(center float64, srcSize int) int {
	i := int(math.Round(center - 0.5))
	if i < 0 {
		return 0
	}
	if i > srcSize-1 {
		return srcSize - 1
	}
	return i
}
