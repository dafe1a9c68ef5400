package mocap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrData matches every *DataError through errors.Is.
var ErrData = errors.New("data error")

// DataError reports capture data that cannot be analysed: missing markers,
// empty or ragged tables, unparseable cells or broken frame numbering. Marker,
// Axis and Frame are filled in when known so the message points at the cell.
type DataError struct {
	Reason string
	Marker string
	Axis   string
	Frame  int
	Row    int
}

func (e *DataError) Error() string {
	var b strings.Builder
	b.WriteString("data error: ")
	b.WriteString(e.Reason)
	if e.Marker != "" {
		fmt.Fprintf(&b, " (marker %q", e.Marker)
		if e.Axis != "" {
			fmt.Fprintf(&b, " axis %s", e.Axis)
		}
		b.WriteString(")")
	}
	if e.Frame > 0 {
		fmt.Fprintf(&b, " at frame %d", e.Frame)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " on row %d", e.Row)
	}
	return b.String()
}

// Is reports whether target is ErrData.
func (e *DataError) Is(target error) bool {
	return target == ErrData
}
