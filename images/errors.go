package images

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error taxonomy. Operations wrap one of these in an *OpError so callers can
// match with errors.Is and still render the operation and offending parameter.
var (
	// ErrDecodeFailure means the source bytes could not be decoded.
	ErrDecodeFailure = errors.New("decode failure")
	// ErrInvalidDimension means a non-positive width or height was requested.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrInvalidCropArea means the crop rectangle has no pixels left after clamping.
	ErrInvalidCropArea = errors.New("invalid crop area")
	// ErrNoOpAngle means a rotation by 0 degrees was requested.
	ErrNoOpAngle = errors.New("rotation angle is a no-op")
	// ErrEncodeFailure means the encoder backend rejected the buffer.
	ErrEncodeFailure = errors.New("encode failure")
	// ErrMissingOverlayContent means a meme or watermark had neither text nor image.
	ErrMissingOverlayContent = errors.New("missing overlay content")
	// ErrSegmentationFailure means the external segmentation model failed.
	ErrSegmentationFailure = errors.New("segmentation failure")
)

// OpError describes a failed operation.
type OpError struct {
	// Op is the operation name, e.g. "rotate".
	Op string
	// Param is the offending parameter, e.g. "angle".
	Param string
	// Value is the offending parameter value, if any.
	Value any
	// Err is the underlying taxonomy error.
	Err error
}

// NewOpError builds an *OpError.
//
// Arguments:
//   - op: The operation name.
//   - param: The offending parameter name.
//   - value: The offending value (may be nil).
//   - err: The taxonomy sentinel or a wrapped backend error.
//
// Returns:
//   - error: The operation error.
func NewOpError(op, param string, value any, err error) error {
	return &OpError{Op: op, Param: param, Value: value, Err: err}
}

// Error implements error.
func (e *OpError) Error() string {
	switch {
	case e.Param == "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Value == nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Param, e.Err)
	default:
		return fmt.Sprintf("%s: %s=%v: %v", e.Op, e.Param, e.Value, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error { return e.Err }

// Cause supports github.com/pkg/errors.Cause.
func (e *OpError) Cause() error { return e.Err }

// WrapOp attaches a backend error to a taxonomy sentinel, keeping both
// reachable through errors.Is.
func WrapOp(op, param string, value any, kind, cause error) error {
	if cause == nil {
		return NewOpError(op, param, value, kind)
	}
	return NewOpError(op, param, value, &kindError{kind: kind, cause: cause})
}

type kindError struct {
	kind  error
	cause error
}

func (k *kindError) Error() string { return fmt.Sprintf("%v: %v", k.kind, k.cause) }

func (k *kindError) Unwrap() []error { return []error{k.kind, k.cause} }
