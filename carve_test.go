package carve

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/carve/pkg/rangespec"
)

func TestNewSelector(t *testing.T) {
	sel, err := NewSelector(ModeChars, "1,7,3-5")
	require.NoError(t, err)

	assert.Equal(t, ModeChars, sel.Mode())
	assert.Equal(t, RangeList{{Start: 0, End: 1}, {Start: 6, End: 7}, {Start: 2, End: 5}}, sel.Ranges())
	assert.Equal(t, byte('\t'), sel.Delimiter())
}

func TestNewSelector_ParseErrorIsUnwrapped(t *testing.T) {
	_, err := NewSelector(ModeBytes, "+1")
	require.Error(t, err)
	assert.Equal(t, `illegal list value: "+1"`, err.Error())

	var malformed *rangespec.MalformedTermError
	assert.True(t, errors.As(err, &malformed))

	_, err = NewSelector(ModeBytes, "")
	assert.ErrorIs(t, err, rangespec.ErrEmptySpec)
}

func TestNewSelectorFromRanges_Validation(t *testing.T) {
	_, err := NewSelectorFromRanges(ModeChars, nil)
	assert.Error(t, err)

	_, err = NewSelectorFromRanges(Mode(42), RangeList{{Start: 0, End: 1}})
	assert.Error(t, err)

	for _, bad := range []RangeList{
		{{Start: -1, End: 2}},
		{{Start: 0, End: 1}, {Start: 3, End: 3}},
		{{Start: 4, End: 2}},
	} {
		_, err = NewSelectorFromRanges(ModeBytes, bad)
		assert.Error(t, err, "ranges %v", bad)
	}

	sel, err := NewSelectorFromRanges(ModeChars, RangeList{{Start: 1, End: 3}})
	require.NoError(t, err)
	assert.Equal(t, "bc", sel.Line("abcd"))
}

func TestSelector_Line(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		spec string
		line string
		want string
	}{
		{"chars", ModeChars, "1,3", "ábc", "ác"},
		{"bytes", ModeBytes, "1-2", "ábc", "á"},
		{"bytes split char", ModeBytes, "1", "ábc", "�"},
		{"fields", ModeFields, "3,1", "a\tb\tc", "c\ta"},
		{"fields out of range", ModeFields, "4", "a\tb\tc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := NewSelector(tt.mode, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.Line(tt.line))
		})
	}
}

func TestSelector_RecordWithDelimiter(t *testing.T) {
	sel, err := NewSelector(ModeFields, "1,3", WithDelimiter(','))
	require.NoError(t, err)

	assert.Equal(t, "Captain,12345", sel.Record([]string{"Captain", "Sham", "12345"}))
	assert.Equal(t, "x,z", sel.Line("x,y,z"))
}

func TestSelector_RangesIsACopy(t *testing.T) {
	sel, err := NewSelector(ModeChars, "1")
	require.NoError(t, err)

	r := sel.Ranges()
	r[0].End = 99
	assert.Equal(t, 1, sel.Ranges()[0].End)
}

func TestSelector_ConcurrentUse(t *testing.T) {
	sel, err := NewSelector(ModeChars, "2-3")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = sel.Line("xyz")
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "yz", r)
	}
}

func TestParseRanges(t *testing.T) {
	ranges, err := ParseRanges("15,19-20")
	require.NoError(t, err)
	assert.Equal(t, "15,19-20", ranges.String())
}
