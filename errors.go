package resample

import (
	"errors"

	"github.com/gogpu/resample/internal/scale"
)

var (
	// ErrInvalidRequest is wrapped by every validation failure.
	ErrInvalidRequest = errors.New("resample: invalid request")

	// ErrUnknownFilter is returned for a filter name outside [Filters].
	ErrUnknownFilter = errors.New("resample: unknown filter")

	// ErrBufferSize reports a buffer whose length is not width*height*4.
	ErrBufferSize = scale.ErrBufferSize

	// ErrAllPathsFailed is returned by a Dispatcher when the GPU and the
	// CPU path both failed for the same request.
	ErrAllPathsFailed = errors.New("resample: all resize paths failed")
)

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
	Err    error // optional more specific cause, e.g. ErrUnknownFilter
}

func (e *ValidationError) Error() string {
	return "resample: invalid " + e.Field + ": " + e.Reason
}

// Unwrap returns ErrInvalidRequest and, when set, the specific cause.
func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidRequest, e.Err}
	}
	return []error{ErrInvalidRequest}
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
