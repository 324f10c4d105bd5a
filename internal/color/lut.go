package color

// sRGBToLinearLUT maps every sRGB byte to its linear value.
var sRGBToLinearLUT [256]float32

// encodeBits is the precision of the linear → sRGB table. 14 bits keeps the
// steep segment near black within one output level.
const (
	encodeBits = 14
	encodeSize = 1 << encodeBits
	encodeMax  = encodeSize - 1
)

// linearToSRGBLUT maps a quantized linear value to an sRGB byte.
var linearToSRGBLUT [encodeSize]uint8

func init() {
	for i := range sRGBToLinearLUT {
		sRGBToLinearLUT[i] = float32(SRGBToLinear(float64(i) / 255))
	}
	for i := range linearToSRGBLUT {
		s := LinearToSRGB(float64(i) / encodeMax)
		linearToSRGBLUT[i] = unitToByte(float32(s))
	}
}

// SRGBToLinearFast converts an sRGB byte to linear using the lookup table.
//
//	r := SRGBToLinearFast(128) // ~0.2159 (not 0.5!)
func SRGBToLinearFast(s uint8) float32 {
	return sRGBToLinearLUT[s]
}

// LinearToSRGBFast converts a linear value to an sRGB byte using the lookup
// table. Input is clamped to [0,1].
//
//	s := LinearToSRGBFast(0.5) // 188 (not 128!)
func LinearToSRGBFast(l float32) uint8 {
	if !(l > 0) { // also catches NaN
		return 0
	}
	if l >= 1 {
		return 255
	}
	return linearToSRGBLUT[int(l*encodeMax+0.5)]
}

// SRGBToLinearSlow is the math.Pow reference for SRGBToLinearFast.
func SRGBToLinearSlow(s uint8) float32 {
	return float32(SRGBToLinear(float64(s) / 255))
}

// LinearToSRGBSlow is the math.Pow reference for LinearToSRGBFast.
func LinearToSRGBSlow(l float32) uint8 {
	lf := float64(l)
	if lf < 0 {
		lf = 0
	}
	if lf > 1 {
		lf = 1
	}
	return unitToByte(float32(LinearToSRGB(lf)))
}
