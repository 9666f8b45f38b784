// Package extract applies a RangeList to a single line or record.
//
// Every function here is total: a range that does not fit entirely inside the
// input contributes nothing, and no input makes them fail.
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/praetorian-inc/carve/pkg/types"
)

// Retrieve returns seq[r.Start:r.End] only when the whole range lies inside seq.
func Retrieve[T any](seq []T, r types.PositionRange) ([]T, bool) {
	if !r.Within(len(seq)) {
		return nil, false
	}
	return seq[r.Start:r.End], true
}

// Chars selects Unicode characters from line.
func Chars(line string, ranges types.RangeList) string {
	chars := []rune(line)

	var b strings.Builder
	for _, r := range ranges {
		if sel, ok := Retrieve(chars, r); ok {
			b.WriteString(string(sel))
		}
	}
	return b.String()
}

// Bytes selects raw bytes from line. Each selected slice is decoded on its own,
// so a character split across two ranges shows up as two U+FFFD, not as itself.
func Bytes(line string, ranges types.RangeList) string {
	raw := []byte(line)

	var b strings.Builder
	for _, r := range ranges {
		if sel, ok := Retrieve(raw, r); ok {
			b.WriteString(decodeLossy(sel))
		}
	}
	return b.String()
}

// Fields selects whole fields from a record, flattened in range order.
func Fields(record []string, ranges types.RangeList) []string {
	selected := make([]string, 0, len(ranges))
	for _, r := range ranges {
		if sel, ok := Retrieve(record, r); ok {
			selected = append(selected, sel...)
		}
	}
	return selected
}

// JoinFields selects fields and joins them with delim.
func JoinFields(record []string, ranges types.RangeList, delim string) string {
	return strings.Join(Fields(record, ranges), delim)
}

// decodeLossy replaces each maximal ill-formed subpart of b with one U+FFFD.
// A truncated sequence such as E2 82 counts as one subpart; stray bytes such as
// A9 or FF each count as their own.
func decodeLossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	var sb strings.Builder
	sb.Grow(len(b) + 2)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r != utf8.RuneError || size > 1 {
			sb.Write(b[:size])
			b = b[size:]
			continue
		}
		sb.WriteRune(utf8.RuneError)
		b = b[invalidPrefixLen(b):]
	}
	return sb.String()
}

// invalidPrefixLen returns the length of the ill-formed subpart at the start
// of b: the lead byte plus any continuation bytes that could still belong to
// a well-formed sequence. Always at least 1.
func invalidPrefixLen(b []byte) int {
	need, lo, hi := sequenceBounds(b[0])
	n := 1
	for n < len(b) && n < need {
		c := b[n]
		if c < lo || c > hi {
			break
		}
		n++
		lo, hi = 0x80, 0xBF
	}
	return n
}

// sequenceBounds returns the encoded length announced by a lead byte and the
// allowed range of the byte following it. Bytes that cannot lead a sequence
// report length 1.
func sequenceBounds(lead byte) (need int, lo, hi byte) {
	switch {
	case lead >= 0xC2 && lead <= 0xDF:
		return 2, 0x80, 0xBF
	case lead == 0xE0:
		return 3, 0xA0, 0xBF
	case lead == 0xED:
		return 3, 0x80, 0x9F
	case lead >= 0xE1 && lead <= 0xEF:
		return 3, 0x80, 0xBF
	case lead == 0xF0:
		return 4, 0x90, 0xBF
	case lead >= 0xF1 && lead <= 0xF3:
		return 4, 0x80, 0xBF
	case lead == 0xF4:
		return 4, 0x80, 0x8F
	default:
		return 1, 0, 0
	}
}
