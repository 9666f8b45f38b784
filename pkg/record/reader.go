// Package record splits delimited input into records of fields.
package record

import (
	"encoding/csv"
	"fmt"
	"io"
)

// DefaultDelimiter separates fields when none is configured.
const DefaultDelimiter = '\t'

// Reader yields one record per row of delimited input. Quoted fields may
// contain the delimiter, and rows may have differing numbers of fields.
type Reader struct {
	csv *csv.Reader
}

// NewReader creates a Reader splitting on delim.
func NewReader(r io.Reader, delim byte) *Reader {
	cr := csv.NewReader(r)
	cr.Comma = rune(delim)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return &Reader{csv: cr}
}

// Read returns the next record, or io.EOF when the input is exhausted.
func (r *Reader) Read() ([]string, error) {
	return r.csv.Read()
}

// Each calls fn for every record until the input ends or fn fails.
func (r *Reader) Each(fn func(fields []string) error) error {
	for {
		fields, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(fields); err != nil {
			return err
		}
	}
}

// ValidateDelimiter checks that d is a single byte usable as a field separator.
func ValidateDelimiter(d string) (byte, error) {
	if len(d) != 1 {
		return 0, fmt.Errorf("--delim \"%s\" must be a single byte", d)
	}
	switch c := d[0]; c {
	case '"', '\r', '\n':
		return 0, fmt.Errorf("--delim %q cannot be used as a field delimiter", d)
	default:
		if c >= 0x80 {
			return 0, fmt.Errorf("--delim \"%s\" must be a single byte", d)
		}
		return c, nil
	}
}
