package timecode

import "errors"

// Sentinel errors. Every error returned by this package wraps exactly one of
// them, so callers can branch with errors.Is.
var (
	// ErrInvalidFrameRate is returned for unrecognized frame rate labels
	ErrInvalidFrameRate = errors.New("invalid frame rate")

	// ErrInvalidTimecodeFormat is returned for malformed strings, out-of-range
	// fields and drop-frame instants that do not exist
	ErrInvalidTimecodeFormat = errors.New("invalid timecode format")

	// ErrDivisionByZero is returned when a divisor frame number or scalar is zero
	ErrDivisionByZero = errors.New("division by zero")

	// ErrNegativeFrameNumber is returned when a NonNegative timecode is
	// constructed from a negative frame number
	ErrNegativeFrameNumber = errors.New("negative frame number")

	// ErrUnsupportedOperation is returned when an operator has no meaning for
	// the given operand kinds, e.g. scalar / timecode
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Kind returns a stable identifier for the sentinel wrapped by err, or the
// empty string when err did not come from this package.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFrameRate):
		return "INVALID_FRAME_RATE"
	case errors.Is(err, ErrInvalidTimecodeFormat):
		return "INVALID_TIMECODE_FORMAT"
	case errors.Is(err, ErrDivisionByZero):
		return "DIVISION_BY_ZERO"
	case errors.Is(err, ErrNegativeFrameNumber):
		return "NEGATIVE_FRAME_NUMBER"
	case errors.Is(err, ErrUnsupportedOperation):
		return "UNSUPPORTED_OPERATION"
	}
	return ""
}
