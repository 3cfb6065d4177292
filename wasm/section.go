package wasm

import (
	"bytes"
	"fmt"

	"github.com/andrewdavidmackenzie/wazm/errors"
	"github.com/andrewdavidmackenzie/wazm/internal/binary"
)

// DecodeSection decodes a section's payload into its kind-specific record.
// A payload whose internal structure cannot be decoded (unknown section ID,
// GC type forms, trailing bytes, non-canonical varints inside the payload)
// yields an unsupported-shape error; callers that want the opaque fallback
// instead use DecodeSectionOrOpaque.
func DecodeSection(s Section) (Record, error) {
	rec, err := decodeTyped(s)
	if err != nil {
		return nil, errors.UnsupportedShape(s.ID.String(), err)
	}
	return rec, nil
}

// DecodeSectionOrOpaque decodes a section's payload, falling back to an
// Opaque record wrapping the raw bytes when the typed decoders cannot
// handle it. It never fails: opaque-by-default is the safety net that keeps
// every section kind representable.
func DecodeSectionOrOpaque(s Section) Record {
	rec, err := decodeTyped(s)
	if err != nil {
		return &Opaque{Kind: s.ID, Bytes: s.Payload}
	}
	return rec
}

func decodeTyped(s Section) (Record, error) {
	sr := newSectionReader(s.Payload)

	var rec Record
	var err error
	switch s.ID {
	case SectionCustom:
		rec, err = decodeCustom(sr)
	case SectionType:
		rec, err = decodeTypeSec(sr)
	case SectionImport:
		rec, err = decodeImportSec(sr)
	case SectionFunction:
		rec, err = decodeFunctionSec(sr)
	case SectionTable:
		rec, err = decodeTableSec(sr)
	case SectionMemory:
		rec, err = decodeMemorySec(sr)
	case SectionGlobal:
		rec, err = decodeGlobalSec(sr)
	case SectionExport:
		rec, err = decodeExportSec(sr)
	case SectionStart:
		rec, err = decodeStartSec(sr)
	case SectionElement:
		rec, err = decodeElementSec(sr)
	case SectionCode:
		rec, err = decodeCodeSec(sr)
	case SectionData:
		rec, err = decodeDataSec(sr)
	case SectionDataCount:
		rec, err = decodeDataCountSec(sr)
	case SectionTag:
		rec, err = decodeTagSec(sr)
	default:
		return nil, fmt.Errorf("no decoder for %s", s.ID)
	}
	if err != nil {
		return nil, err
	}
	if n := sr.br.Len(); n != 0 {
		return nil, fmt.Errorf("%d trailing bytes after %s content", n, s.ID)
	}
	return rec, nil
}

// sectionReader pairs the binary reader with the payload it reads from, so
// decoders can bound length-prefixed reads and hand sub-slices to the
// expression scanner.
type sectionReader struct {
	r       *binary.Reader
	br      *bytes.Reader
	payload []byte
}

func newSectionReader(payload []byte) *sectionReader {
	br := bytes.NewReader(payload)
	return &sectionReader{r: binary.NewReader(br), br: br, payload: payload}
}

// vecLen reads a vector count and rejects counts that provably exceed the
// payload: every element occupies at least one byte.
func (sr *sectionReader) vecLen() (int, error) {
	count, err := sr.r.ReadU32()
	if err != nil {
		return 0, err
	}
	if int64(count) > int64(sr.br.Len()) {
		return 0, fmt.Errorf("vector count %d exceeds %d remaining bytes", count, sr.br.Len())
	}
	return int(count), nil
}

// bytesN reads a length-prefixed blob after bounding it to the payload.
func (sr *sectionReader) bytesN(n uint32) ([]byte, error) {
	if int64(n) > int64(sr.br.Len()) {
		return nil, fmt.Errorf("blob length %d exceeds %d remaining bytes", n, sr.br.Len())
	}
	return sr.r.ReadBytes(int(n))
}

// expr scans one constant expression in place and returns its bytes.
func (sr *sectionReader) expr() (Expr, error) {
	n, err := ScanInitExpr(sr.payload[sr.r.Position():])
	if err != nil {
		return nil, err
	}
	data, err := sr.r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return Expr(data), nil
}
