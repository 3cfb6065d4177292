package transform

import (
	"bytes"
	"fmt"

	"github.com/andrewdavidmackenzie/wazm/internal/binary"
	"github.com/andrewdavidmackenzie/wazm/wasm"
)

// DataSplit rewrites the data section into columnar form: the segment
// count, then every segment header (flags, memory index, offset expression,
// length), then the concatenated initializer bytes. Initializer contents
// are usually string tables and static data that compress far better when
// the varint headers are not scattered through them.
//
// Wire layout of the rewritten payload:
//
//	u32 count | header * count | init bytes * count
type DataSplit struct{}

func (DataSplit) ID() byte     { return DataSplitID }
func (DataSplit) Name() string { return "datasplit" }

func (DataSplit) Applicable(s wasm.Section) bool { return s.ID == wasm.SectionData }

// scanDataHeader consumes one segment header from r and returns its raw
// bytes along with the declared initializer length. data is the full buffer
// r reads from, used to slice the header verbatim.
func scanDataHeader(r *binary.Reader, data []byte) ([]byte, uint32, error) {
	start := r.Position()

	flags, err := r.ReadU32()
	if err != nil {
		return nil, 0, err
	}
	switch flags {
	case 0:
		if err := skipInitExpr(r, data); err != nil {
			return nil, 0, err
		}
	case 1:
		// passive, header is just flags and length
	case 2:
		if _, err := r.ReadU32(); err != nil {
			return nil, 0, err
		}
		if err := skipInitExpr(r, data); err != nil {
			return nil, 0, err
		}
	default:
		return nil, 0, fmt.Errorf("unhandled data segment flags %d", flags)
	}

	size, err := r.ReadU32()
	if err != nil {
		return nil, 0, err
	}
	return data[start:r.Position()], size, nil
}

func skipInitExpr(r *binary.Reader, data []byte) error {
	n, err := wasm.ScanInitExpr(data[r.Position():])
	if err != nil {
		return err
	}
	_, err = r.ReadBytes(n)
	return err
}

func (DataSplit) Forward(payload []byte) ([]byte, error) {
	br := bytes.NewReader(payload)
	r := binary.NewReader(br)

	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if int64(count) > int64(br.Len()) {
		return nil, fmt.Errorf("segment count %d exceeds %d remaining bytes", count, br.Len())
	}

	var headers, inits bytes.Buffer
	for i := uint32(0); i < count; i++ {
		header, size, err := scanDataHeader(r, payload)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		if int64(size) > int64(br.Len()) {
			return nil, fmt.Errorf("segment %d: init length %d exceeds %d remaining bytes", i, size, br.Len())
		}
		init, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, err
		}
		headers.Write(header)
		inits.Write(init)
	}
	if br.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after last segment", br.Len())
	}

	w := binary.NewWriter()
	w.WriteU32(count)
	w.WriteBytes(headers.Bytes())
	w.WriteBytes(inits.Bytes())
	return w.Bytes(), nil
}

func (DataSplit) Inverse(data []byte) ([]byte, error) {
	br := bytes.NewReader(data)
	r := binary.NewReader(br)

	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if int64(count) > int64(br.Len()) {
		return nil, fmt.Errorf("segment count %d exceeds %d remaining bytes", count, br.Len())
	}

	headers := make([][]byte, count)
	sizes := make([]uint32, count)
	var total int64
	for i := range headers {
		if headers[i], sizes[i], err = scanDataHeader(r, data); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		total += int64(sizes[i])
	}

	rest, err := r.ReadRemaining()
	if err != nil {
		return nil, err
	}
	if int64(len(rest)) != total {
		return nil, fmt.Errorf("init column is %d bytes, headers declare %d", len(rest), total)
	}

	w := binary.NewWriter()
	w.WriteU32(count)
	off := 0
	for i := range headers {
		w.WriteBytes(headers[i])
		w.WriteBytes(rest[off : off+int(sizes[i])])
		off += int(sizes[i])
	}
	return w.Bytes(), nil
}
