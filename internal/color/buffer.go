package color

// ToLinear converts interleaved RGBA sRGB bytes to linear float32 values.
// RGB go through the sRGB EOTF; alpha is divided by 255.
//
// dst is reused when it has the capacity of src, otherwise a new slice is
// allocated. The returned slice has len(src) elements.
func ToLinear(src []uint8, dst []float32) []float32 {
	if cap(dst) < len(src) {
		dst = make([]float32, len(src))
	}
	dst = dst[:len(src)]
	for i := 0; i+3 < len(src); i += 4 {
		dst[i+0] = sRGBToLinearLUT[src[i+0]]
		dst[i+1] = sRGBToLinearLUT[src[i+1]]
		dst[i+2] = sRGBToLinearLUT[src[i+2]]
		dst[i+3] = float32(src[i+3]) / 255
	}
	return dst
}

// ToSRGB converts interleaved RGBA linear float32 values to sRGB bytes,
// clamping out-of-range values. Alpha is scaled by 255.
//
// dst follows the same reuse rule as ToLinear.
func ToSRGB(src []float32, dst []uint8) []uint8 {
	if cap(dst) < len(src) {
		dst = make([]uint8, len(src))
	}
	dst = dst[:len(src)]
	for i := 0; i+3 < len(src); i += 4 {
		dst[i+0] = LinearToSRGBFast(src[i+0])
		dst[i+1] = LinearToSRGBFast(src[i+1])
		dst[i+2] = LinearToSRGBFast(src[i+2])
		dst[i+3] = unitToByte(src[i+3])
	}
	return dst
}
