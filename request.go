package resample

import (
	"fmt"
	"math"

	"github.com/gogpu/resample/internal/filter"
)

// Filter names accepted by Request.Filter.
const (
	FilterBox      = filter.Box
	FilterHamming  = filter.Hamming
	FilterLanczos2 = filter.Lanczos2
	FilterLanczos3 = filter.Lanczos3
	FilterMKS2013  = filter.MKS2013
	FilterBicubic  = filter.Bicubic

	// DefaultFilter is used when Request.Filter is empty.
	DefaultFilter = filter.Default
)

// Default unsharp parameters.
const (
	DefaultUnsharpRadius = 0.5
	MaxUnsharpThreshold  = 255
)

// MaxSamples bounds the sample count (width × height × 4) of any buffer a
// request reads, writes or passes through.
const MaxSamples int64 = 1 << 32

// SampleCount returns w*h*4 and reports whether it is non-negative and within
// MaxSamples. The product is never formed when it would overflow.
func SampleCount(w, h int) (int, bool) {
	if w < 0 || h < 0 {
		return 0, false
	}
	if w == 0 || h == 0 {
		return 0, true
	}
	if int64(w) > MaxSamples/4/int64(h) {
		return 0, false
	}
	n := int64(w) * int64(h) * 4
	if n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

// Filters returns the accepted filter names in sorted order.
func Filters() []string {
	return filter.Names()
}

// Request describes one resize.
//
// Src holds Width×Height pixels. The result is ToWidth×ToHeight pixels in
// the format of Src. A zero ToWidth or ToHeight yields an empty result.
//
// Byte sources are filtered in linear light when GammaCorrect is set and in
// their encoded form otherwise. Float sources are taken to be linear already.
//
// When Dest is set the result is written into it and Dest is returned; it
// must match the result's format and length. On error Dest is not touched.
type Request struct {
	Src           Buffer
	Width, Height int

	ToWidth, ToHeight int

	// Filter names the reconstruction filter; empty means DefaultFilter.
	Filter string

	// UnsharpAmount is the sharpening strength in percent; 0 disables it.
	UnsharpAmount float64
	// UnsharpRadius is the blur radius of the mask, applied when >= 0.5.
	UnsharpRadius float64
	// UnsharpThreshold is the smallest difference, in byte levels, that
	// gets sharpened.
	UnsharpThreshold float64

	GammaCorrect bool

	Dest Buffer
}

// NewRequest returns a request with default options: lanczos3, gamma
// correct, no sharpening.
func NewRequest(src Buffer, width, height, toWidth, toHeight int) *Request {
	return &Request{
		Src:           src,
		Width:         width,
		Height:        height,
		ToWidth:       toWidth,
		ToHeight:      toHeight,
		Filter:        DefaultFilter,
		UnsharpRadius: DefaultUnsharpRadius,
		GammaCorrect:  true,
	}
}

// filterName returns the effective filter name.
func (r *Request) filterName() string {
	if r.Filter == "" {
		return DefaultFilter
	}
	return r.Filter
}

// emptyTarget reports whether the result has no pixels.
func (r *Request) emptyTarget() bool {
	return r.ToWidth == 0 || r.ToHeight == 0
}

// sharpens reports whether the unsharp pass runs for this request.
func (r *Request) sharpens() bool {
	return r.UnsharpAmount > 0 && r.UnsharpRadius >= 0.5
}

// Validate checks every field and returns a *ValidationError wrapping
// ErrInvalidRequest for the first problem found.
func (r *Request) Validate() error {
	if r == nil {
		return invalid("request", "nil")
	}
	if r.Src.IsNil() {
		return invalid("src", "no pixel buffer")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return invalid("size", fmt.Sprintf("%dx%d must be positive", r.Width, r.Height))
	}
	if r.ToWidth < 0 || r.ToHeight < 0 {
		return invalid("target", fmt.Sprintf("%dx%d must not be negative", r.ToWidth, r.ToHeight))
	}
	want, ok := SampleCount(r.Width, r.Height)
	if !ok {
		return &ValidationError{
			Field:  "size",
			Reason: fmt.Sprintf("%dx%d exceeds %d samples", r.Width, r.Height, MaxSamples),
			Err:    ErrBufferSize,
		}
	}
	if _, ok := SampleCount(max(r.Width, r.ToWidth), max(r.Height, r.ToHeight)); !ok {
		return &ValidationError{
			Field:  "target",
			Reason: fmt.Sprintf("%dx%d exceeds %d samples", r.ToWidth, r.ToHeight, MaxSamples),
			Err:    ErrBufferSize,
		}
	}
	if r.Src.Len() != want {
		return &ValidationError{
			Field:  "src",
			Reason: fmt.Sprintf("%d samples, want %d for %dx%d", r.Src.Len(), want, r.Width, r.Height),
			Err:    ErrBufferSize,
		}
	}
	if _, ok := filter.Lookup(r.filterName()); !ok {
		return &ValidationError{Field: "filter", Reason: fmt.Sprintf("%q", r.Filter), Err: ErrUnknownFilter}
	}
	if !(r.UnsharpAmount >= 0) {
		return invalid("unsharp amount", fmt.Sprintf("%v must not be negative", r.UnsharpAmount))
	}
	if !(r.UnsharpRadius >= 0) {
		return invalid("unsharp radius", fmt.Sprintf("%v must not be negative", r.UnsharpRadius))
	}
	if !(r.UnsharpThreshold >= 0 && r.UnsharpThreshold <= MaxUnsharpThreshold) {
		return invalid("unsharp threshold", fmt.Sprintf("%v outside [0, %d]", r.UnsharpThreshold, MaxUnsharpThreshold))
	}
	if math.IsInf(r.UnsharpAmount, 0) || math.IsInf(r.UnsharpRadius, 0) {
		return invalid("unsharp", "infinite parameter")
	}
	if r.Dest.IsNil() || r.emptyTarget() {
		return nil
	}
	if r.Dest.Format() != r.Src.Format() {
		return invalid("dest", fmt.Sprintf("format %s, want %s", r.Dest.Format(), r.Src.Format()))
	}
	if want, _ := SampleCount(r.ToWidth, r.ToHeight); r.Dest.Len() != want {
		return &ValidationError{
			Field:  "dest",
			Reason: fmt.Sprintf("%d samples, want %d for %dx%d", r.Dest.Len(), want, r.ToWidth, r.ToHeight),
			Err:    ErrBufferSize,
		}
	}
	return nil
}
