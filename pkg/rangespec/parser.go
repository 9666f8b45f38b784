// Package rangespec parses cut-style position lists such as "1,7,3-5".
//
// A list is a comma-separated sequence of terms. Each term is either a single
// one-based position N or a pair N-M with M > N. Terms are kept in the order
// given; nothing is merged, sorted or deduplicated.
package rangespec

import (
	"errors"
	"strconv"
	"strings"

	"github.com/praetorian-inc/carve/pkg/types"
)

// Parse converts a position list into a RangeList of zero-based half-open ranges.
// It stops at the first malformed term. Every returned error implements Error.
func Parse(spec string) (types.RangeList, error) {
	if spec == "" {
		return nil, &EmptySpecError{}
	}

	terms := strings.Split(spec, ",")
	ranges := make(types.RangeList, 0, len(terms))
	for _, term := range terms {
		r, err := parseTerm(term)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// MustParse is like Parse but panics on error.
func MustParse(spec string) types.RangeList {
	ranges, err := Parse(spec)
	if err != nil {
		panic("rangespec: " + err.Error())
	}
	return ranges
}

// AsError unwraps err into the closed Error variant, if it is one.
func AsError(err error) (Error, bool) {
	var e Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// =============================================================================
// HELPERS
// =============================================================================

func parseTerm(term string) (types.PositionRange, error) {
	if term == "" {
		return types.PositionRange{}, &MalformedTermError{Raw: term, Detail: DetailEmptyTerm}
	}

	bounds := strings.Split(term, "-")
	if len(bounds) > 2 {
		return types.PositionRange{}, &MalformedTermError{Raw: term, Detail: DetailTooManyBounds}
	}

	first, err := parseBound(term, bounds[0])
	if err != nil {
		return types.PositionRange{}, err
	}
	if len(bounds) == 1 {
		return types.PositionRange{Start: first - 1, End: first}, nil
	}

	second, err := parseBound(term, bounds[1])
	if err != nil {
		return types.PositionRange{}, err
	}
	if second <= first {
		return types.PositionRange{}, &InvalidOrderError{First: first, Second: second}
	}
	return types.PositionRange{Start: first - 1, End: second}, nil
}

// parseBound parses a one-based position. A leading '+' cites the whole term;
// every other failure cites the bound itself.
func parseBound(term, bound string) (int, error) {
	if strings.HasPrefix(bound, "+") {
		return 0, &MalformedTermError{Raw: term, Detail: DetailLeadingPlus}
	}
	if bound == "" || strings.TrimLeft(bound, "0123456789") != "" {
		return 0, &MalformedTermError{Raw: bound, Detail: DetailNotANumber}
	}

	n, err := strconv.Atoi(bound)
	if err != nil {
		return 0, &MalformedTermError{Raw: bound, Detail: DetailOutOfRange}
	}
	if n == 0 {
		return 0, &MalformedTermError{Raw: bound, Detail: DetailZero}
	}
	return n, nil
}
