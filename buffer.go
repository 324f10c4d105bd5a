package resample

// Format identifies the sample representation of a Buffer.
type Format uint8

const (
	// FormatNone is the format of the zero Buffer.
	FormatNone Format = iota

	// FormatRGBA8 is gamma-encoded bytes, one per channel, 0..255.
	FormatRGBA8

	// FormatLinearF32 is linear-light float32, one per channel, nominally 0..1.
	FormatLinearF32
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatLinearF32:
		return "linear-f32"
	default:
		return "none"
	}
}

// Buffer is an interleaved RGBA pixel buffer, row-major, holding either
// bytes or linear floats. Its length is always width*height*4 samples for
// the dimensions it is used with.
//
// A Buffer shares its backing slice; use Clone for an independent copy.
type Buffer struct {
	format Format
	u8     []uint8
	f32    []float32
}

// Bytes wraps gamma-encoded RGBA bytes.
func Bytes(b []uint8) Buffer {
	return Buffer{format: FormatRGBA8, u8: b}
}

// Floats wraps linear-light RGBA floats.
func Floats(f []float32) Buffer {
	return Buffer{format: FormatLinearF32, f32: f}
}

// Format returns the buffer's sample format.
func (b Buffer) Format() Format { return b.format }

// Len returns the number of samples (four per pixel).
func (b Buffer) Len() int {
	if b.format == FormatLinearF32 {
		return len(b.f32)
	}
	return len(b.u8)
}

// U8 returns the byte samples, or nil for a float buffer.
func (b Buffer) U8() []uint8 { return b.u8 }

// F32 returns the float samples, or nil for a byte buffer.
func (b Buffer) F32() []float32 { return b.f32 }

// IsNil reports whether b has no format, i.e. is the zero Buffer.
func (b Buffer) IsNil() bool { return b.format == FormatNone }

// Clone returns a deep copy of b.
func (b Buffer) Clone() Buffer {
	switch b.format {
	case FormatRGBA8:
		return Bytes(append([]uint8(nil), b.u8...))
	case FormatLinearF32:
		return Floats(append([]float32(nil), b.f32...))
	default:
		return Buffer{}
	}
}

// empty returns a zero-length buffer of format f.
func empty(f Format) Buffer {
	if f == FormatLinearF32 {
		return Floats([]float32{})
	}
	return Bytes([]uint8{})
}

// copyInto copies src into dst, which must have the same format and length.
func copyInto(dst, src Buffer) {
	if src.format == FormatLinearF32 {
		copy(dst.f32, src.f32)
		return
	}
	copy(dst.u8, src.u8)
}
