// Package color converts RGBA pixel buffers between gamma-encoded sRGB bytes
// and linear-light float32 values.
//
// Only the RGB channels are transformed. Alpha is always linear: it is
// scaled between [0,255] and [0,1] but never gamma-encoded.
package color

// ClampUnit clamps every sample of buf to [0, 1] in place. Filters with
// negative lobes overshoot near edges; float results are clamped once, after
// the last pass.
func ClampUnit(buf []float32) {
	for i, v := range buf {
		switch {
		case v < 0:
			buf[i] = 0
		case v > 1:
			buf[i] = 1
		case v != v:
			buf[i] = 0
		}
	}
}
