// Package binary provides the low-level reader and writer primitives shared
// by the module codec, the transform pipeline, and the artifact container.
//
// All variable-length integer reads enforce canonical (minimal-length)
// encodings. Overlong encodings are legal LEB128 but re-encoding them would
// produce different bytes, so the reader rejects them with ErrNonCanonical
// instead of silently re-canonicalizing.
package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrOverflow is returned when a LEB128 value exceeds the maximum width.
var ErrOverflow = errors.New("leb128: overflow")

// ErrNonCanonical is returned when a LEB128 encoding uses more bytes than
// the minimal encoding of its value.
var ErrNonCanonical = errors.New("leb128: non-canonical encoding")

// Reader wraps an io.ByteReader with position tracking and WASM-specific
// read methods.
type Reader struct {
	r   io.ByteReader
	pos int
}

// NewReader creates a new Reader wrapping the given io.ByteReader.
func NewReader(r io.ByteReader) *Reader {
	return &Reader{r: r, pos: 0}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		buf[i] = b
	}
	return buf, nil
}

// ReadU32 reads an unsigned LEB128 encoded uint32, rejecting overlong
// encodings and values wider than 32 bits.
func (r *Reader) ReadU32() (uint32, error) {
	var result uint32
	var shift uint
	var n int
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		n++
		if shift == 28 && b&0x70 != 0 {
			return 0, r.wrapError(ErrOverflow)
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			if n > 1 && b == 0 {
				return 0, r.wrapError(ErrNonCanonical)
			}
			return result, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, r.wrapError(ErrOverflow)
		}
	}
}

// ReadU64 reads an unsigned LEB128 encoded uint64, rejecting overlong
// encodings and values wider than 64 bits.
func (r *Reader) ReadU64() (uint64, error) {
	var result uint64
	var shift uint
	var n int
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		n++
		if shift == 63 && b&0x7e != 0 {
			return 0, r.wrapError(ErrOverflow)
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			if n > 1 && b == 0 {
				return 0, r.wrapError(ErrNonCanonical)
			}
			return result, nil
		}
		shift += 7
		if shift >= 70 {
			return 0, r.wrapError(ErrOverflow)
		}
	}
}

// ReadS64 reads a signed LEB128 encoded int64, rejecting non-minimal
// encodings. A final byte of 0x00 after a byte with the sign bit clear, or
// 0x7f after a byte with the sign bit set, adds no information.
func (r *Reader) ReadS64() (int64, error) {
	var result int64
	var shift uint
	var n int
	var b, prev byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		n++
		if p := b & 0x7f; shift == 63 && p != 0x00 && p != 0x7f {
			// bit 63 plus sign extension is all the tenth byte may carry
			return 0, r.wrapError(ErrOverflow)
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		prev = b
		if shift >= 70 {
			return 0, r.wrapError(ErrOverflow)
		}
	}
	if n > 1 {
		if (b == 0x00 && prev&0x40 == 0) || (b == 0x7f && prev&0x40 != 0) {
			return 0, r.wrapError(ErrNonCanonical)
		}
	}
	// Sign extend
	if shift < 64 && b&0x40 != 0 {
		result |= ^int64(0) << shift
	}
	return result, nil
}

// ReadName reads a UTF-8 encoded name (length-prefixed byte sequence).
func (r *Reader) ReadName() (string, error) {
	length, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	data, err := r.ReadBytes(int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", r.wrapError(errors.New("invalid UTF-8 in name"))
	}
	return string(data), nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadRemaining reads all remaining bytes from the reader.
func (r *Reader) ReadRemaining() ([]byte, error) {
	if br, ok := r.r.(*bytes.Reader); ok {
		return r.ReadBytes(br.Len())
	}
	var buf bytes.Buffer
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		buf.WriteByte(b)
	}
	return buf.Bytes(), nil
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at position %d: %w", r.pos, err)
}

// ParseError represents an error during binary parsing with position
// information.
type ParseError struct {
	Err      error
	Section  string
	Position int
}

func (e *ParseError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("wasm: %s at position %d: %v", e.Section, e.Position, e.Err)
	}
	return fmt.Sprintf("wasm: at position %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapError creates a ParseError with the current position.
func (r *Reader) WrapError(section string, err error) error {
	return &ParseError{
		Position: r.pos,
		Section:  section,
		Err:      err,
	}
}
