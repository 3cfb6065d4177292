package analysis

import (
	"fmt"
	"strings"
)

// FormatRanges renders a sorted index list with consecutive runs
// collapsed, for example [1..2, 4..5, 7, 9..10].
func FormatRanges(indices []uint32) string {
	if len(indices) == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteByte('[')
	start, end := indices[0], indices[0]
	flush := func() {
		if b.Len() > 1 {
			b.WriteString(", ")
		}
		if start == end {
			fmt.Fprintf(&b, "%d", start)
		} else {
			fmt.Fprintf(&b, "%d..%d", start, end)
		}
	}
	for _, n := range indices[1:] {
		switch {
		case n == end:
		case n == end+1:
			end = n
		default:
			flush()
			start, end = n, n
		}
	}
	flush()
	b.WriteByte(']')
	return b.String()
}
