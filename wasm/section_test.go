package wasm_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/andrewdavidmackenzie/wazm/errors"
	"github.com/andrewdavidmackenzie/wazm/wasm"
)

// Every typed record must re-encode to the exact payload it was decoded
// from. This is the property the transform layer depends on.
func TestSectionReencodeIsExact(t *testing.T) {
	tests := []struct {
		name    string
		id      wasm.SectionID
		payload []byte
	}{
		{"custom", wasm.SectionCustom, []byte{0x04, 'n', 'a', 'm', 'e', 0xDE, 0xAD}},
		{"type", wasm.SectionType, []byte{0x02, 0x60, 0x00, 0x00, 0x60, 0x02, 0x7F, 0x7E, 0x01, 0x7B}},
		{"import", wasm.SectionImport, []byte{
			0x05,
			0x01, 'a', 0x01, 'f', 0x00, 0x03,
			0x01, 'a', 0x01, 't', 0x01, 0x70, 0x00, 0x00,
			0x01, 'a', 0x01, 'm', 0x02, 0x01, 0x01, 0x02,
			0x01, 'a', 0x01, 'g', 0x03, 0x7E, 0x00,
			0x01, 'a', 0x01, 'e', 0x04, 0x00, 0x01,
		}},
		{"function", wasm.SectionFunction, []byte{0x03, 0x00, 0x01, 0x81, 0x01}},
		{"table", wasm.SectionTable, []byte{0x02, 0x70, 0x01, 0x01, 0x08, 0x6F, 0x00, 0x00}},
		{"memory", wasm.SectionMemory, []byte{0x03, 0x00, 0x01, 0x03, 0x01, 0x02, 0x05, 0x01, 0x02}},
		{"global", wasm.SectionGlobal, []byte{0x02, 0x7F, 0x01, 0x41, 0x05, 0x0B, 0x70, 0x00, 0xD0, 0x70, 0x0B}},
		{"export", wasm.SectionExport, []byte{0x02, 0x01, 'm', 0x02, 0x00, 0x02, 'f', 'n', 0x00, 0x07}},
		{"start", wasm.SectionStart, []byte{0x05}},
		{"element flags 0", wasm.SectionElement, []byte{0x01, 0x00, 0x41, 0x01, 0x0B, 0x02, 0x03, 0x04}},
		{"element flags 1", wasm.SectionElement, []byte{0x01, 0x01, 0x00, 0x02, 0x05, 0x06}},
		{"element flags 2", wasm.SectionElement, []byte{0x01, 0x02, 0x01, 0x41, 0x00, 0x0B, 0x00, 0x01, 0x07}},
		{"element flags 3", wasm.SectionElement, []byte{0x01, 0x03, 0x00, 0x01, 0x08}},
		{"element flags 4", wasm.SectionElement, []byte{0x01, 0x04, 0x41, 0x02, 0x0B, 0x01, 0xD2, 0x00, 0x0B}},
		{"element flags 5", wasm.SectionElement, []byte{0x01, 0x05, 0x70, 0x01, 0xD0, 0x70, 0x0B}},
		{"element flags 6", wasm.SectionElement, []byte{0x01, 0x06, 0x00, 0x41, 0x00, 0x0B, 0x70, 0x01, 0xD2, 0x01, 0x0B}},
		{"element flags 7", wasm.SectionElement, []byte{0x01, 0x07, 0x6F, 0x01, 0xD0, 0x6F, 0x0B}},
		{"code", wasm.SectionCode, []byte{
			0x02,
			0x07, 0x01, 0x02, 0x7F, 0x41, 0x2A, 0x1A, 0x0B,
			0x02, 0x00, 0x0B,
		}},
		{"data", wasm.SectionData, []byte{
			0x03,
			0x00, 0x41, 0x10, 0x0B, 0x02, 0xAA, 0xBB,
			0x01, 0x03, 0x01, 0x02, 0x03,
			0x02, 0x01, 0x41, 0x00, 0x0B, 0x01, 0xFF,
		}},
		{"datacount", wasm.SectionDataCount, []byte{0x03}},
		{"tag", wasm.SectionTag, []byte{0x02, 0x00, 0x00, 0x00, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := wasm.DecodeSection(wasm.Section{ID: tt.id, Payload: tt.payload})
			if err != nil {
				t.Fatalf("DecodeSection: %v", err)
			}
			if rec.ID() != tt.id {
				t.Errorf("record id %s, section id %s", rec.ID(), tt.id)
			}
			if got := rec.EncodePayload(); !bytes.Equal(got, tt.payload) {
				t.Errorf("re-encode differs\n got: % x\nwant: % x", got, tt.payload)
			}
			if _, ok := rec.(*wasm.Opaque); ok {
				t.Error("expected a typed record, got the opaque fallback")
			}
		})
	}
}

func TestDecodeTypeSection(t *testing.T) {
	payload := []byte{0x02, 0x60, 0x00, 0x00, 0x60, 0x02, 0x7F, 0x7E, 0x01, 0x7B}
	rec, err := wasm.DecodeSection(wasm.Section{ID: wasm.SectionType, Payload: payload})
	if err != nil {
		t.Fatalf("DecodeSection: %v", err)
	}

	sec, ok := rec.(*wasm.TypeSec)
	if !ok {
		t.Fatalf("expected *TypeSec, got %T", rec)
	}
	want := []wasm.FuncType{
		{},
		{Params: []wasm.ValType{wasm.ValI32, wasm.ValI64}, Results: []wasm.ValType{wasm.ValV128}},
	}
	if len(sec.Types) != 2 {
		t.Fatalf("expected 2 types, got %d", len(sec.Types))
	}
	if !reflect.DeepEqual(sec.Types[1], want[1]) {
		t.Errorf("type 1 mismatch: %+v", sec.Types[1])
	}
	if len(sec.Types[0].Params) != 0 || len(sec.Types[0].Results) != 0 {
		t.Errorf("type 0 should be empty: %+v", sec.Types[0])
	}
}

func TestDecodeImportKinds(t *testing.T) {
	payload := []byte{
		0x05,
		0x01, 'a', 0x01, 'f', 0x00, 0x03,
		0x01, 'a', 0x01, 't', 0x01, 0x70, 0x00, 0x00,
		0x01, 'a', 0x01, 'm', 0x02, 0x01, 0x01, 0x02,
		0x01, 'a', 0x01, 'g', 0x03, 0x7E, 0x00,
		0x01, 'a', 0x01, 'e', 0x04, 0x00, 0x01,
	}
	rec, err := wasm.DecodeSection(wasm.Section{ID: wasm.SectionImport, Payload: payload})
	if err != nil {
		t.Fatalf("DecodeSection: %v", err)
	}
	sec := rec.(*wasm.ImportSec)
	if len(sec.Imports) != 5 {
		t.Fatalf("expected 5 imports, got %d", len(sec.Imports))
	}

	if f := sec.Imports[0]; f.Kind != wasm.KindFunc || f.TypeIndex != 3 || f.Name != "f" {
		t.Errorf("func import mismatch: %+v", f)
	}
	if tb := sec.Imports[1]; tb.Kind != wasm.KindTable || tb.Table.Elem != wasm.ValFuncRef || tb.Table.Limits.Min != 0 {
		t.Errorf("table import mismatch: %+v", tb)
	}
	if m := sec.Imports[2]; m.Kind != wasm.KindMemory || m.Memory.Flags != wasm.LimitsHasMax || m.Memory.Min != 1 || m.Memory.Max != 2 {
		t.Errorf("memory import mismatch: %+v", m)
	}
	if g := sec.Imports[3]; g.Kind != wasm.KindGlobal || g.Global.Type != wasm.ValI64 || g.Global.Mutable {
		t.Errorf("global import mismatch: %+v", g)
	}
	if tg := sec.Imports[4]; tg.Kind != wasm.KindTag || tg.TagAttr != 0 || tg.TypeIndex != 1 {
		t.Errorf("tag import mismatch: %+v", tg)
	}
}

func TestDecodeMemoryFlags(t *testing.T) {
	payload := []byte{0x03, 0x00, 0x01, 0x03, 0x01, 0x02, 0x05, 0x01, 0x02}
	rec, err := wasm.DecodeSection(wasm.Section{ID: wasm.SectionMemory, Payload: payload})
	if err != nil {
		t.Fatalf("DecodeSection: %v", err)
	}
	sec := rec.(*wasm.MemorySec)
	if len(sec.Memories) != 3 {
		t.Fatalf("expected 3 memories, got %d", len(sec.Memories))
	}

	if m := sec.Memories[0]; m.Flags != 0 || m.Min != 1 || m.Max != 0 {
		t.Errorf("plain memory mismatch: %+v", m)
	}
	shared := sec.Memories[1]
	if shared.Flags != wasm.LimitsHasMax|wasm.LimitsShared || shared.Min != 1 || shared.Max != 2 {
		t.Errorf("shared memory mismatch: %+v", shared)
	}
	m64 := sec.Memories[2]
	if m64.Flags != wasm.LimitsHasMax|wasm.LimitsMemory64 || m64.Min != 1 || m64.Max != 2 {
		t.Errorf("memory64 mismatch: %+v", m64)
	}
}

func TestDecodeElementEncodings(t *testing.T) {
	section := func(payload ...byte) wasm.Section {
		return wasm.Section{ID: wasm.SectionElement, Payload: payload}
	}

	rec, err := wasm.DecodeSection(section(0x01, 0x02, 0x01, 0x41, 0x00, 0x0B, 0x00, 0x01, 0x07))
	if err != nil {
		t.Fatalf("DecodeSection flags 2: %v", err)
	}
	seg := rec.(*wasm.ElementSec).Segments[0]
	if seg.Flags != 2 || seg.TableIndex != 1 || seg.ElemKind != 0 {
		t.Errorf("flags 2 segment mismatch: %+v", seg)
	}
	if !bytes.Equal(seg.Offset, []byte{0x41, 0x00, 0x0B}) {
		t.Errorf("flags 2 offset mismatch: % x", seg.Offset)
	}
	if !reflect.DeepEqual(seg.FuncIndices, []uint32{7}) {
		t.Errorf("flags 2 indices mismatch: %v", seg.FuncIndices)
	}

	rec, err = wasm.DecodeSection(section(0x01, 0x07, 0x6F, 0x01, 0xD0, 0x6F, 0x0B))
	if err != nil {
		t.Fatalf("DecodeSection flags 7: %v", err)
	}
	seg = rec.(*wasm.ElementSec).Segments[0]
	if seg.Flags != 7 || seg.RefType != wasm.ValExternRef {
		t.Errorf("flags 7 segment mismatch: %+v", seg)
	}
	if len(seg.Exprs) != 1 || !bytes.Equal(seg.Exprs[0], []byte{0xD0, 0x6F, 0x0B}) {
		t.Errorf("flags 7 exprs mismatch: %v", seg.Exprs)
	}
}

func TestDecodeCodeBodies(t *testing.T) {
	payload := []byte{
		0x02,
		0x07, 0x01, 0x02, 0x7F, 0x41, 0x2A, 0x1A, 0x0B,
		0x02, 0x00, 0x0B,
	}
	rec, err := wasm.DecodeSection(wasm.Section{ID: wasm.SectionCode, Payload: payload})
	if err != nil {
		t.Fatalf("DecodeSection: %v", err)
	}
	sec := rec.(*wasm.CodeSec)
	if len(sec.Bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(sec.Bodies))
	}

	b0 := sec.Bodies[0]
	if len(b0.Locals) != 1 || b0.Locals[0].Count != 2 || b0.Locals[0].Type != wasm.ValI32 {
		t.Errorf("body 0 locals mismatch: %+v", b0.Locals)
	}
	if !bytes.Equal(b0.Code, []byte{0x41, 0x2A, 0x1A, 0x0B}) {
		t.Errorf("body 0 code mismatch: % x", b0.Code)
	}

	b1 := sec.Bodies[1]
	if len(b1.Locals) != 0 || !bytes.Equal(b1.Code, []byte{0x0B}) {
		t.Errorf("body 1 mismatch: %+v", b1)
	}
}

func TestDecodeDataModes(t *testing.T) {
	payload := []byte{
		0x03,
		0x00, 0x41, 0x10, 0x0B, 0x02, 0xAA, 0xBB,
		0x01, 0x03, 0x01, 0x02, 0x03,
		0x02, 0x01, 0x41, 0x00, 0x0B, 0x01, 0xFF,
	}
	rec, err := wasm.DecodeSection(wasm.Section{ID: wasm.SectionData, Payload: payload})
	if err != nil {
		t.Fatalf("DecodeSection: %v", err)
	}
	sec := rec.(*wasm.DataSec)
	if len(sec.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(sec.Segments))
	}

	active := sec.Segments[0]
	if active.Flags != 0 || !bytes.Equal(active.Offset, []byte{0x41, 0x10, 0x0B}) || !bytes.Equal(active.Init, []byte{0xAA, 0xBB}) {
		t.Errorf("active segment mismatch: %+v", active)
	}
	passive := sec.Segments[1]
	if passive.Flags != 1 || passive.Offset != nil || !bytes.Equal(passive.Init, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("passive segment mismatch: %+v", passive)
	}
	indexed := sec.Segments[2]
	if indexed.Flags != 2 || indexed.MemIndex != 1 || !bytes.Equal(indexed.Init, []byte{0xFF}) {
		t.Errorf("indexed segment mismatch: %+v", indexed)
	}
}

// Payloads the typed decoders cannot interpret degrade to the opaque record
// rather than failing the caller.
func TestDecodeSectionFallsBackToOpaque(t *testing.T) {
	tests := []struct {
		name string
		s    wasm.Section
	}{
		{"custom with truncated name length", wasm.Section{ID: wasm.SectionCustom, Payload: []byte{0xDE, 0xAD, 0xBE}}},
		{"custom with empty payload", wasm.Section{ID: wasm.SectionCustom, Payload: nil}},
		{"unknown section id", wasm.Section{ID: 14, Payload: []byte{0xCA, 0xFE}}},
		{"type with invalid value type", wasm.Section{ID: wasm.SectionType, Payload: []byte{0x01, 0x60, 0x01, 0x6A, 0x00}}},
		{"type with trailing bytes", wasm.Section{ID: wasm.SectionType, Payload: []byte{0x00, 0xFF}}},
		{"element with unhandled flags", wasm.Section{ID: wasm.SectionElement, Payload: []byte{0x01, 0x08}}},
		{"data with unhandled flags", wasm.Section{ID: wasm.SectionData, Payload: []byte{0x01, 0x03, 0x00}}},
		{"function with non-canonical count", wasm.Section{ID: wasm.SectionFunction, Payload: []byte{0x81, 0x00, 0x00}}},
		{"memory with unhandled limit flags", wasm.Section{ID: wasm.SectionMemory, Payload: []byte{0x01, 0x08, 0x01}}},
		{"count exceeding payload", wasm.Section{ID: wasm.SectionFunction, Payload: []byte{0x7F}}},
		{"code body overrunning payload", wasm.Section{ID: wasm.SectionCode, Payload: []byte{0x01, 0x7F, 0x00}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wasm.DecodeSection(tt.s)
			if err == nil {
				t.Fatal("expected typed decode to fail")
			}
			if !errors.IsKind(err, errors.KindUnsupportedShape) {
				t.Errorf("expected unsupported_shape kind, got %v", err)
			}

			rec := wasm.DecodeSectionOrOpaque(tt.s)
			op, ok := rec.(*wasm.Opaque)
			if !ok {
				t.Fatalf("expected *Opaque, got %T", rec)
			}
			if op.Kind != tt.s.ID {
				t.Errorf("opaque kind %s, section id %s", op.Kind, tt.s.ID)
			}
			if !bytes.Equal(op.EncodePayload(), tt.s.Payload) {
				t.Error("opaque record should carry the payload verbatim")
			}
		})
	}
}

func TestDecodeSectionOrOpaquePrefersTyped(t *testing.T) {
	s := wasm.Section{ID: wasm.SectionStart, Payload: []byte{0x2A}}
	rec := wasm.DecodeSectionOrOpaque(s)
	start, ok := rec.(*wasm.StartSec)
	if !ok {
		t.Fatalf("expected *StartSec, got %T", rec)
	}
	if start.FuncIndex != 42 {
		t.Errorf("expected func index 42, got %d", start.FuncIndex)
	}
}
