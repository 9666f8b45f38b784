package types

import (
	"fmt"
	"strconv"
	"strings"
)

// PositionRange is an index range [Start, End) - half-open interval over
// zero-based positions. Start is always lower than End.
type PositionRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// NewPositionRange builds a range from zero-based bounds, enforcing 0 <= start < end.
func NewPositionRange(start, end int) (PositionRange, error) {
	if start < 0 || end <= start {
		return PositionRange{}, fmt.Errorf("invalid position range [%d, %d)", start, end)
	}
	return PositionRange{Start: start, End: end}, nil
}

// Len returns the number of positions covered by the range.
func (r PositionRange) Len() int {
	return r.End - r.Start
}

// Within reports whether the whole range fits inside a sequence of length n.
// A range breaking 0 <= Start < End never fits.
func (r PositionRange) Within(n int) bool {
	return r.Start >= 0 && r.Start < r.End && r.End <= n
}

// String renders the range in its one-based form: "3" for [2,3), "3-5" for [2,5).
func (r PositionRange) String() string {
	if r.End-r.Start == 1 {
		return strconv.Itoa(r.End)
	}
	return strconv.Itoa(r.Start+1) + "-" + strconv.Itoa(r.End)
}

// RangeList is an ordered sequence of ranges in the order their terms were given.
// Ranges may overlap, repeat, or appear out of order.
type RangeList []PositionRange

// String renders the canonical specification, e.g. "1,7,3-5".
func (l RangeList) String() string {
	terms := make([]string, len(l))
	for i, r := range l {
		terms[i] = r.String()
	}
	return strings.Join(terms, ",")
}

// Span returns the total number of positions selected, counting repeats.
func (l RangeList) Span() int {
	total := 0
	for _, r := range l {
		total += r.Len()
	}
	return total
}
