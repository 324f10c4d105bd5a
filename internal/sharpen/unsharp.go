package sharpen

import (
	"math"

	"github.com/gogpu/resample/internal/color"
)

// maxRadius caps the blur radius of the mask.
const maxRadius = 2.0

// Unsharp returns a sharpened copy of src (w×h interleaved RGBA bytes).
//
// The image is blurred with min(radius, 2). For every RGB sample the
// difference to the blur is dropped when its magnitude is below threshold
// (raw 0..255 units) and otherwise added back scaled by amount/100. Alpha is
// copied unchanged. src is not modified.
func Unsharp(src []uint8, w, h int, amount, radius, threshold float64, kc *KernelCache) []uint8 {
	blurred := Blur(src, w, h, math.Min(radius, maxRadius), kc)

	out := make([]uint8, len(src))
	k := float32(amount / 100)
	th := float32(threshold)

	for i := 0; i+3 < len(src); i += 4 {
		for c := 0; c < 3; c++ {
			s := float32(src[i+c])
			diff := s - float32(blurred[i+c])
			if abs32(diff) < th {
				diff = 0
			}
			out[i+c] = color.ClampByte(s + diff*k)
		}
		out[i+3] = src[i+3]
	}
	return out
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
