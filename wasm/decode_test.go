package wasm_test

import (
	"bytes"
	"testing"

	"github.com/andrewdavidmackenzie/wazm/errors"
	"github.com/andrewdavidmackenzie/wazm/wasm"
)

func TestDecodeMinimalModule(t *testing.T) {
	m, err := wasm.Decode(header())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.Version != 1 {
		t.Errorf("expected version 1, got %d", m.Version)
	}
	if len(m.Sections) != 0 {
		t.Errorf("expected no sections, got %d", len(m.Sections))
	}
}

func TestDecodeMalformedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty input", nil},
		{"truncated magic", []byte{0x00, 0x61, 0x73}},
		{"invalid magic", []byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
		{"invalid version", []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}},
		{"truncated version", []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00}},
		{"missing section size", append(header(), 0x01)},
		{"truncated section size", append(header(), 0x01, 0x80)},
		{"payload shorter than declared", append(header(), 0x0B, 0x05, 0x00)},
		{"section size overflows u32", append(header(), 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F)},
		{"non-canonical section size", append(header(), 0x00, 0x80, 0x00)},
		{"padded section size", append(header(), 0x01, 0x84, 0x80, 0x00, 0x60, 0x00, 0x00)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wasm.Decode(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsKind(err, errors.KindMalformedModule) {
				t.Errorf("expected malformed_module kind, got %v", err)
			}
		})
	}
}

// A size field that is not the shortest encoding is rejected outright, never
// silently rewritten to canonical form.
func TestDecodeDoesNotRecanonicalize(t *testing.T) {
	// Type section with one empty signature, size 4 padded to two bytes.
	padded := append(header(), 0x01, 0x84, 0x00, 0x01, 0x60, 0x00, 0x00)
	if _, err := wasm.Decode(padded); err == nil {
		t.Fatal("expected error for padded section size")
	}

	canonical := append(header(), 0x01, 0x04, 0x01, 0x60, 0x00, 0x00)
	m, err := wasm.Decode(canonical)
	if err != nil {
		t.Fatalf("Decode canonical form: %v", err)
	}
	if !bytes.Equal(m.Encode(), canonical) {
		t.Error("canonical form should round-trip byte-exact")
	}
}

func TestDecodeUnknownSectionKind(t *testing.T) {
	data := moduleBytes(
		sec(wasm.SectionID(14), 0xCA, 0xFE),
		sec(wasm.SectionID(0x2A), 0x01, 0x02, 0x03),
	)

	m, err := wasm.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(m.Sections))
	}
	if m.Sections[0].ID != 14 || !bytes.Equal(m.Sections[0].Payload, []byte{0xCA, 0xFE}) {
		t.Errorf("section 0 not preserved: %+v", m.Sections[0])
	}
	if m.Sections[1].ID != 0x2A {
		t.Errorf("expected id 42, got %d", m.Sections[1].ID)
	}
	if !bytes.Equal(m.Encode(), data) {
		t.Error("unknown sections should survive a round trip unchanged")
	}
}

func TestDecodeZeroLengthSection(t *testing.T) {
	data := moduleBytes(sec(wasm.SectionCustom))

	m, err := wasm.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m.Sections) != 1 || len(m.Sections[0].Payload) != 0 {
		t.Fatalf("expected one empty section, got %+v", m.Sections)
	}
	if !bytes.Equal(m.Encode(), data) {
		t.Error("zero-length section should round-trip")
	}
}

// Garbage after the last complete section is a framing error, not ignorable
// padding.
func TestDecodeTrailingGarbage(t *testing.T) {
	data := append(moduleBytes(sec(wasm.SectionType, 0x00)), 0xFF)
	_, err := wasm.Decode(data)
	if err == nil {
		t.Fatal("expected error for trailing garbage")
	}
	if !errors.IsKind(err, errors.KindMalformedModule) {
		t.Errorf("expected malformed_module kind, got %v", err)
	}
}
