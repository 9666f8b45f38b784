// Package carve selects bytes, characters or fields from lines of text.
//
// A selection is described by a position list such as "1,7,3-5". Positions
// are one-based; the list is parsed once and applied to every line.
//
// # Basic Usage
//
// Select characters from a line:
//
//	sel, err := carve.NewSelector(carve.ModeChars, "1,3")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(sel.Line("ábc")) // "ác"
//
// # Fields
//
// Field selection works on records that are already split:
//
//	sel, err := carve.NewSelector(carve.ModeFields, "2", carve.WithDelimiter(','))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(sel.Record([]string{"a", "b", "c"})) // "b"
//
// Ranges are never merged, sorted or deduplicated: "3,1,1" yields the third
// position followed by the first one twice.
package carve

import (
	"fmt"
	"strings"

	"github.com/praetorian-inc/carve/pkg/extract"
	"github.com/praetorian-inc/carve/pkg/rangespec"
	"github.com/praetorian-inc/carve/pkg/record"
	"github.com/praetorian-inc/carve/pkg/types"
)

// Re-export commonly used types for convenience.
type (
	// PositionRange is a zero-based half-open range [Start, End).
	PositionRange = types.PositionRange

	// RangeList is the ordered result of parsing a position list.
	RangeList = types.RangeList

	// Mode selects bytes, characters or fields.
	Mode = types.Mode
)

// Re-export selection modes.
const (
	ModeBytes  = types.ModeBytes
	ModeChars  = types.ModeChars
	ModeFields = types.ModeFields
)

// Selector applies one parsed position list in one mode. It holds no mutable
// state and may be shared between goroutines.
type Selector struct {
	mode   Mode
	ranges RangeList
	config *selectorConfig
}

type selectorConfig struct {
	delimiter byte
}

// Option configures a Selector.
type Option func(*selectorConfig)

// WithDelimiter sets the field delimiter used to split and re-join records.
// Default is tab. Only applies to ModeFields.
func WithDelimiter(d byte) Option {
	return func(c *selectorConfig) {
		c.delimiter = d
	}
}

// NewSelector parses spec and returns a Selector for mode.
// Parse failures are returned unwrapped so callers can print them verbatim.
func NewSelector(mode Mode, spec string, opts ...Option) (*Selector, error) {
	ranges, err := rangespec.Parse(spec)
	if err != nil {
		return nil, err
	}
	return NewSelectorFromRanges(mode, ranges, opts...)
}

// NewSelectorFromRanges builds a Selector from an already parsed RangeList.
// Every range must satisfy 0 <= Start < End.
func NewSelectorFromRanges(mode Mode, ranges RangeList, opts ...Option) (*Selector, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("selector needs at least one range")
	}
	for _, r := range ranges {
		if _, err := types.NewPositionRange(r.Start, r.End); err != nil {
			return nil, err
		}
	}
	switch mode {
	case ModeBytes, ModeChars, ModeFields:
	default:
		return nil, fmt.Errorf("unknown selection mode: %s", mode)
	}

	config := &selectorConfig{delimiter: record.DefaultDelimiter}
	for _, opt := range opts {
		opt(config)
	}

	return &Selector{
		mode:   mode,
		ranges: ranges,
		config: config,
	}, nil
}

// Line extracts from a single line. In ModeFields the line is split on the
// delimiter without quote handling; use Record with a record.Reader for CSV input.
func (s *Selector) Line(line string) string {
	switch s.mode {
	case ModeBytes:
		return extract.Bytes(line, s.ranges)
	case ModeChars:
		return extract.Chars(line, s.ranges)
	default:
		return s.Record(strings.Split(line, string(s.config.delimiter)))
	}
}

// Record extracts fields from an already split record and joins them with the delimiter.
func (s *Selector) Record(fields []string) string {
	return extract.JoinFields(fields, s.ranges, string(s.config.delimiter))
}

// Mode returns the selection mode.
func (s *Selector) Mode() Mode {
	return s.mode
}

// Ranges returns a copy of the parsed ranges.
func (s *Selector) Ranges() RangeList {
	ranges := make(RangeList, len(s.ranges))
	copy(ranges, s.ranges)
	return ranges
}

// Delimiter returns the field delimiter.
func (s *Selector) Delimiter() byte {
	return s.config.delimiter
}

// ParseRanges parses a position list such as "1,7,3-5".
func ParseRanges(spec string) (RangeList, error) {
	return rangespec.Parse(spec)
}
