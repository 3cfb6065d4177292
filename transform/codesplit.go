package transform

import (
	"bytes"
	"fmt"

	"github.com/andrewdavidmackenzie/wazm/internal/binary"
	"github.com/andrewdavidmackenzie/wazm/wasm"
)

// CodeSplit rewrites the code section into columnar form: the body count,
// then every body size, then the concatenated body bytes. Function bodies
// share prologues and instruction sequences, so packing them back to back
// without interleaved size prefixes gives the compressor longer matches.
//
// Wire layout of the rewritten payload:
//
//	u32 count | u32 size * count | body bytes * count
type CodeSplit struct{}

func (CodeSplit) ID() byte     { return CodeSplitID }
func (CodeSplit) Name() string { return "codesplit" }

func (CodeSplit) Applicable(s wasm.Section) bool { return s.ID == wasm.SectionCode }

func (CodeSplit) Forward(payload []byte) ([]byte, error) {
	br := bytes.NewReader(payload)
	r := binary.NewReader(br)

	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if int64(count) > int64(br.Len()) {
		return nil, fmt.Errorf("body count %d exceeds %d remaining bytes", count, br.Len())
	}

	sizes := make([]uint32, count)
	var bodies bytes.Buffer
	for i := range sizes {
		size, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if int64(size) > int64(br.Len()) {
			return nil, fmt.Errorf("body %d: size %d exceeds %d remaining bytes", i, size, br.Len())
		}
		body, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, err
		}
		sizes[i] = size
		bodies.Write(body)
	}
	if br.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after last body", br.Len())
	}

	w := binary.NewWriter()
	w.WriteU32(count)
	for _, size := range sizes {
		w.WriteU32(size)
	}
	w.WriteBytes(bodies.Bytes())
	return w.Bytes(), nil
}

func (CodeSplit) Inverse(data []byte) ([]byte, error) {
	br := bytes.NewReader(data)
	r := binary.NewReader(br)

	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if int64(count) > int64(br.Len()) {
		return nil, fmt.Errorf("body count %d exceeds %d remaining bytes", count, br.Len())
	}

	sizes := make([]uint32, count)
	var total int64
	for i := range sizes {
		if sizes[i], err = r.ReadU32(); err != nil {
			return nil, err
		}
		total += int64(sizes[i])
	}

	rest, err := r.ReadRemaining()
	if err != nil {
		return nil, err
	}
	if int64(len(rest)) != total {
		return nil, fmt.Errorf("body column is %d bytes, sizes sum to %d", len(rest), total)
	}

	w := binary.NewWriter()
	w.WriteU32(count)
	off := 0
	for _, size := range sizes {
		w.WriteU32(size)
		w.WriteBytes(rest[off : off+int(size)])
		off += int(size)
	}
	return w.Bytes(), nil
}
