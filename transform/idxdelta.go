package transform

import (
	"bytes"
	"fmt"
	"math"

	"github.com/andrewdavidmackenzie/wazm/internal/binary"
	"github.com/andrewdavidmackenzie/wazm/wasm"
)

// IndexDelta rewrites the function section as the first type index followed
// by the signed difference between consecutive indices. Toolchains emit
// long runs of functions sharing a handful of signatures, so the deltas are
// mostly zeros and small integers.
//
// Wire layout of the rewritten payload:
//
//	u32 count | u32 first | s64 delta * (count-1)
//
// An empty section stays as its bare count.
type IndexDelta struct{}

func (IndexDelta) ID() byte     { return IndexDeltaID }
func (IndexDelta) Name() string { return "idxdelta" }

func (IndexDelta) Applicable(s wasm.Section) bool { return s.ID == wasm.SectionFunction }

func (IndexDelta) Forward(payload []byte) ([]byte, error) {
	br := bytes.NewReader(payload)
	r := binary.NewReader(br)

	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if int64(count) > int64(br.Len()) {
		return nil, fmt.Errorf("index count %d exceeds %d remaining bytes", count, br.Len())
	}

	indices := make([]uint32, count)
	for i := range indices {
		if indices[i], err = r.ReadU32(); err != nil {
			return nil, err
		}
	}
	if br.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after last index", br.Len())
	}

	w := binary.NewWriter()
	w.WriteU32(count)
	if count == 0 {
		return w.Bytes(), nil
	}
	w.WriteU32(indices[0])
	for i := 1; i < len(indices); i++ {
		w.WriteS64(int64(indices[i]) - int64(indices[i-1]))
	}
	return w.Bytes(), nil
}

func (IndexDelta) Inverse(data []byte) ([]byte, error) {
	br := bytes.NewReader(data)
	r := binary.NewReader(br)

	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if int64(count) > int64(br.Len()) {
		return nil, fmt.Errorf("index count %d exceeds %d remaining bytes", count, br.Len())
	}

	w := binary.NewWriter()
	w.WriteU32(count)
	if count == 0 {
		if br.Len() != 0 {
			return nil, fmt.Errorf("%d trailing bytes after empty index list", br.Len())
		}
		return w.Bytes(), nil
	}

	first, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	w.WriteU32(first)

	cur := int64(first)
	for i := uint32(1); i < count; i++ {
		delta, err := r.ReadS64()
		if err != nil {
			return nil, err
		}
		cur += delta
		if cur < 0 || cur > math.MaxUint32 {
			return nil, fmt.Errorf("delta %d walks index out of range (%d)", i, cur)
		}
		w.WriteU32(uint32(cur))
	}
	if br.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after last delta", br.Len())
	}
	return w.Bytes(), nil
}
