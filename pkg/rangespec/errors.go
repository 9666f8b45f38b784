package rangespec

import (
	"errors"
	"fmt"
)

// Error is the closed set of failures Parse can return:
// *EmptySpecError, *MalformedTermError or *InvalidOrderError.
type Error interface {
	error
	parseError()
}

// ErrEmptySpec matches an EmptySpecError with errors.Is.
var ErrEmptySpec = errors.New("empty range")

// Reasons carried in MalformedTermError.Detail.
const (
	DetailEmptyTerm     = "empty term"
	DetailTooManyBounds = "too many bounds"
	DetailLeadingPlus   = "leading plus"
	DetailNotANumber    = "not a number"
	DetailZero          = "zero"
	DetailOutOfRange    = "out of range"
)

// EmptySpecError is returned for a zero-length specification.
type EmptySpecError struct{}

func (*EmptySpecError) Error() string { return ErrEmptySpec.Error() }

func (*EmptySpecError) Is(target error) bool { return target == ErrEmptySpec }

func (*EmptySpecError) parseError() {}

// MalformedTermError reports a term or bound that does not fit the grammar.
// Raw is the literal substring being cited, which may be empty.
type MalformedTermError struct {
	Raw    string
	Detail string
}

func (e *MalformedTermError) Error() string {
	return fmt.Sprintf("illegal list value: \"%s\"", e.Raw)
}

func (*MalformedTermError) parseError() {}

// InvalidOrderError reports a two-bound term whose second bound is not
// greater than the first. Both values are the one-based bounds as written.
type InvalidOrderError struct {
	First  int
	Second int
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("First number in range (%d) must be lower than second number (%d)", e.First, e.Second)
}

func (*InvalidOrderError) parseError() {}
