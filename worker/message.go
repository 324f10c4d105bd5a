package worker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gogpu/resample"
)

// Message types.
const (
	TypeScale = "scale"
	TypeError = "error"
	TypeInit  = "init"
)

// Size is a target width and height.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Image is an RGBA8 pixel buffer crossing the message boundary. Its data
// length must be Width*Height*4.
type Image struct {
	Data   []byte `json:"data"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// NewImage wraps pix without copying.
func NewImage(pix []byte, width, height int) Image {
	return Image{Data: pix, Width: width, Height: height}
}

// Send moves the image out of img. img is empty afterwards and must not be
// used to reach the pixels again.
func (img *Image) Send() Image {
	out := *img
	*img = Image{}
	return out
}

// Take returns the pixel data and clears img, leaving the caller as the
// only owner.
func (img *Image) Take() []byte {
	d := img.Data
	img.Data = nil
	return d
}

// Validate enforces the data size contract.
func (img Image) Validate(field string) error {
	if img.Width < 0 || img.Height < 0 {
		return &resample.ValidationError{Field: field, Reason: "negative dimensions"}
	}
	want, ok := resample.SampleCount(img.Width, img.Height)
	if !ok {
		return &resample.ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("%dx%d exceeds %d samples", img.Width, img.Height, resample.MaxSamples),
			Err:    resample.ErrBufferSize,
		}
	}
	if len(img.Data) != want {
		return &resample.ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("data length %d, want %d for %dx%d", len(img.Data), want, img.Width, img.Height),
			Err:    resample.ErrBufferSize,
		}
	}
	return nil
}

// Options are the per-request resize options.
type Options struct {
	Filter           string  `json:"filter"`
	GammaCorrect     bool    `json:"gamma_correct"`
	UnsharpAmount    float64 `json:"unsharp_amount"`
	UnsharpRadius    float64 `json:"unsharp_radius"`
	UnsharpThreshold float64 `json:"unsharp_threshold"`
}

// DefaultOptions returns lanczos3, gamma correct, no sharpening.
func DefaultOptions() Options {
	return Options{
		Filter:        resample.DefaultFilter,
		GammaCorrect:  true,
		UnsharpRadius: resample.DefaultUnsharpRadius,
	}
}

// UnmarshalJSON fills fields missing from data with their defaults.
func (o *Options) UnmarshalJSON(data []byte) error {
	type plain Options
	v := plain(DefaultOptions())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Options(v)
	return nil
}

// ScaleRequest asks a unit to resize Src to Target.
type ScaleRequest struct {
	Type    string  `json:"type"`
	ID      string  `json:"id"`
	Src     Image   `json:"src"`
	Target  Size    `json:"target"`
	Options Options `json:"options"`
}

// NewScaleRequest returns a request with default options. The ID is
// assigned by the pool when left empty.
func NewScaleRequest(src Image, target Size) *ScaleRequest {
	return &ScaleRequest{
		Type:    TypeScale,
		Src:     src,
		Target:  target,
		Options: DefaultOptions(),
	}
}

// Validate checks the message envelope and the data size contract. Option
// values are checked by the engine.
func (r *ScaleRequest) Validate() error {
	if r == nil {
		return &resample.ValidationError{Field: "request", Reason: "nil request"}
	}
	if r.Type != TypeScale {
		return &resample.ValidationError{Field: "type", Reason: fmt.Sprintf("%q is not %q", r.Type, TypeScale)}
	}
	if r.Src.Width <= 0 || r.Src.Height <= 0 {
		return &resample.ValidationError{Field: "src", Reason: "width and height must be positive"}
	}
	if err := r.Src.Validate("src"); err != nil {
		return err
	}
	if r.Target.Width < 0 || r.Target.Height < 0 {
		return &resample.ValidationError{Field: "target", Reason: "negative size"}
	}
	if _, ok := resample.SampleCount(r.Target.Width, r.Target.Height); !ok {
		return &resample.ValidationError{
			Field:  "target",
			Reason: fmt.Sprintf("%dx%d exceeds %d samples", r.Target.Width, r.Target.Height, resample.MaxSamples),
			Err:    resample.ErrBufferSize,
		}
	}
	return nil
}

// ScaleResponse carries a successful result.
type ScaleResponse struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Result Image  `json:"result"`
}

// Error kinds carried by ErrorResponse.Kind.
const (
	KindInvalidRequest = "invalid_request"
	KindUnknownFilter  = "unknown_filter"
	KindBufferSize     = "buffer_size"
	KindAllPathsFailed = "all_paths_failed"
	KindPoolClosed     = "pool_closed"
)

// ErrorResponse reports a failed request. It is also the error returned by
// Pool.Do for that request; Kind keeps the cause matchable with errors.Is
// after the message crossed the unit boundary.
type ErrorResponse struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// newErrorResponse builds the response for err, classifying it by the
// sentinel it wraps.
func newErrorResponse(id string, err error) *ErrorResponse {
	return &ErrorResponse{Type: TypeError, ID: id, Kind: errorKind(err), Message: err.Error()}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, resample.ErrUnknownFilter):
		return KindUnknownFilter
	case errors.Is(err, resample.ErrBufferSize):
		return KindBufferSize
	case errors.Is(err, resample.ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, resample.ErrAllPathsFailed):
		return KindAllPathsFailed
	case errors.Is(err, ErrPoolClosed):
		return KindPoolClosed
	}
	return ""
}

func (e *ErrorResponse) Error() string {
	if e.ID == "" {
		return "worker: " + e.Message
	}
	return "worker: request " + e.ID + ": " + e.Message
}

// Unwrap maps Kind back to the sentinel errors it stands for.
func (e *ErrorResponse) Unwrap() []error {
	switch e.Kind {
	case KindInvalidRequest:
		return []error{resample.ErrInvalidRequest}
	case KindUnknownFilter:
		return []error{resample.ErrInvalidRequest, resample.ErrUnknownFilter}
	case KindBufferSize:
		return []error{resample.ErrInvalidRequest, resample.ErrBufferSize}
	case KindAllPathsFailed:
		return []error{resample.ErrAllPathsFailed}
	case KindPoolClosed:
		return []error{ErrPoolClosed}
	}
	return nil
}

// InitMessage is sent once by every unit when it is ready for requests.
type InitMessage struct {
	Type string `json:"type"`
	Unit int    `json:"unit"`
}

// Decode parses a JSON message and returns *ScaleRequest, *ScaleResponse,
// *ErrorResponse or *InitMessage depending on its type field.
func Decode(data []byte) (any, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("worker: decode message: %w", err)
	}

	var msg any
	switch head.Type {
	case TypeScale:
		// Requests and responses share the type; a result field means response.
		var shape struct {
			Result *json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal(data, &shape); err != nil {
			return nil, fmt.Errorf("worker: decode message: %w", err)
		}
		if shape.Result != nil {
			msg = &ScaleResponse{}
		} else {
			msg = &ScaleRequest{Options: DefaultOptions()}
		}
	case TypeError:
		msg = &ErrorResponse{}
	case TypeInit:
		msg = &InitMessage{}
	default:
		return nil, fmt.Errorf("worker: unknown message type %q", head.Type)
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("worker: decode %s message: %w", head.Type, err)
	}
	return msg, nil
}
