package types

import "fmt"

// Mode selects what the positions in a RangeList address.
type Mode int

const (
	ModeBytes Mode = iota
	ModeChars
	ModeFields
)

func (m Mode) String() string {
	switch m {
	case ModeBytes:
		return "bytes"
	case ModeChars:
		return "chars"
	case ModeFields:
		return "fields"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name back to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "bytes":
		return ModeBytes, nil
	case "chars":
		return ModeChars, nil
	case "fields":
		return ModeFields, nil
	default:
		return 0, fmt.Errorf("unknown selection mode: %s", s)
	}
}
