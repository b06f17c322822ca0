package formats

import (
	"errors"
	"fmt"

	"github.com/Taironn/3DFileConverter/pkg/mesh"
)

// Converter errors.
var (
	ErrFileUnavailable          = errors.New("file unavailable")
	ErrMalformedNumber          = errors.New("malformed number")
	ErrOrderingViolation        = mesh.ErrOrderingViolation
	ErrIndexOutOfRange          = mesh.ErrIndexOutOfRange
	ErrUnrecognizedFaceEncoding = errors.New("unrecognized face encoding")
	ErrWeightOutOfRange         = errors.New("w component not in [0, 1]")
	ErrUnknownRecord            = errors.New("unknown record type")
)

// ParseError reports a format defect at a 1-based source line.
type ParseError struct {
	Line   int
	Err    error
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("line %d: %v: %s", e.Line, e.Err, e.Detail)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LineOf returns the source line attached to err, or 0 if there is none.
func LineOf(err error) int {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}
