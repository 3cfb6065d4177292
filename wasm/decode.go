package wasm

import (
	"bytes"
	goerrors "errors"
	"fmt"
	"io"

	"github.com/andrewdavidmackenzie/wazm/errors"
	"github.com/andrewdavidmackenzie/wazm/internal/binary"
)

// Decode parses raw bytes into a Module. It validates only the module
// envelope: magic, version, and section framing (kind byte, canonical
// length, payload fully present). Section payloads are captured verbatim;
// their internal structure is the typed layer's concern.
//
// Every failure is a malformed-module error: the input itself is invalid
// and retrying cannot help.
func Decode(data []byte) (*Module, error) {
	br := bytes.NewReader(data)
	r := binary.NewReader(br)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, errors.MalformedModule("file shorter than magic", err)
	}
	if magic != Magic {
		return nil, errors.MalformedModule(fmt.Sprintf("invalid magic 0x%08X", magic), nil)
	}

	version, err := r.ReadU32LE()
	if err != nil {
		return nil, errors.MalformedModule("file shorter than version", err)
	}
	if version != Version {
		return nil, errors.MalformedModule(fmt.Sprintf("unsupported version %d", version), nil)
	}

	m := &Module{Version: version}
	for br.Len() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return nil, errors.MalformedModule("truncated section id", err)
		}

		size, err := r.ReadU32()
		if err != nil {
			return nil, wrapSizeError(SectionID(id), r.Position(), err)
		}
		if int(size) > br.Len() {
			return nil, errors.MalformedModule(
				fmt.Sprintf("%s section: declared length %d exceeds remaining %d bytes",
					SectionID(id), size, br.Len()), nil)
		}

		payload, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, errors.MalformedModule("truncated section payload", err)
		}

		m.Sections = append(m.Sections, Section{ID: SectionID(id), Payload: payload})
	}

	return m, nil
}

func wrapSizeError(id SectionID, pos int, err error) error {
	switch {
	case goerrors.Is(err, binary.ErrNonCanonical):
		return errors.MalformedModule(
			fmt.Sprintf("%s section at position %d: non-canonical length encoding", id, pos), err)
	case goerrors.Is(err, binary.ErrOverflow):
		return errors.MalformedModule(
			fmt.Sprintf("%s section at position %d: length overflows u32", id, pos), err)
	case goerrors.Is(err, io.EOF):
		return errors.MalformedModule(
			fmt.Sprintf("%s section at position %d: truncated length", id, pos), err)
	}
	return errors.MalformedModule(fmt.Sprintf("%s section at position %d", id, pos), err)
}
