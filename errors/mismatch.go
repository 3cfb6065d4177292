package errors

import (
	"fmt"
	"strings"
)

// mismatchWindow is how many bytes of context are captured on each side of
// the first differing offset.
const mismatchWindow = 8

// MismatchError is returned when reconstructed module bytes differ from the
// original. It pinpoints the first differing offset and carries a hex window
// around it so a failure is diagnosable from the report alone.
type MismatchError struct {
	Offset      int64
	WantLen     int64
	GotLen      int64
	Want        byte
	Got         byte
	Window      []byte
	WindowStart int64
}

// NewMismatch compares want against got and returns the mismatch located at
// the first differing byte, or nil when the streams are identical. When one
// stream is a strict prefix of the other the offset is the shorter length.
func NewMismatch(want, got []byte) *MismatchError {
	limit := len(want)
	if len(got) < limit {
		limit = len(got)
	}

	diff := -1
	for i := 0; i < limit; i++ {
		if want[i] != got[i] {
			diff = i
			break
		}
	}
	if diff == -1 {
		if len(want) == len(got) {
			return nil
		}
		diff = limit
	}

	e := &MismatchError{
		Offset:  int64(diff),
		WantLen: int64(len(want)),
		GotLen:  int64(len(got)),
	}
	if diff < limit {
		e.Want = want[diff]
		e.Got = got[diff]
	}

	// Context window comes from the expected side, which always exists up to
	// the offset; past the end of want it falls back to got.
	src := want
	if diff >= len(want) {
		src = got
	}
	start := diff - mismatchWindow
	if start < 0 {
		start = 0
	}
	end := diff + mismatchWindow + 1
	if end > len(src) {
		end = len(src)
	}
	e.WindowStart = int64(start)
	e.Window = append([]byte(nil), src[start:end]...)

	return e
}

// Error implements the error interface
func (e *MismatchError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[verify] %s at offset 0x%x", KindRoundTripMismatch, e.Offset)

	switch {
	case e.WantLen != e.GotLen && e.Offset >= min64(e.WantLen, e.GotLen):
		fmt.Fprintf(&b, ": length %d, want %d", e.GotLen, e.WantLen)
	default:
		fmt.Fprintf(&b, ": got 0x%02x, want 0x%02x", e.Got, e.Want)
	}

	if len(e.Window) > 0 {
		fmt.Fprintf(&b, " (context 0x%x: % x)", e.WindowStart, e.Window)
	}

	return b.String()
}

// Is reports whether target matches this error type
func (e *MismatchError) Is(target error) bool {
	if _, ok := target.(*MismatchError); ok {
		return true
	}
	if t, ok := target.(*Error); ok {
		return t.Kind == KindRoundTripMismatch
	}
	return false
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
