package wasm

import (
	"fmt"
)

func decodeCustom(sr *sectionReader) (Record, error) {
	name, err := sr.r.ReadName()
	if err != nil {
		return nil, err
	}
	data, err := sr.r.ReadRemaining()
	if err != nil {
		return nil, err
	}
	return &Custom{Name: name, Data: data}, nil
}

func decodeValType(sr *sectionReader) (ValType, error) {
	b, err := sr.r.ReadByte()
	if err != nil {
		return 0, err
	}
	v := ValType(b)
	if !v.Valid() {
		return 0, fmt.Errorf("unhandled value type 0x%02x", b)
	}
	return v, nil
}

func decodeRefType(sr *sectionReader) (ValType, error) {
	v, err := decodeValType(sr)
	if err != nil {
		return 0, err
	}
	if v != ValFuncRef && v != ValExternRef {
		return 0, fmt.Errorf("%s is not a reference type", v)
	}
	return v, nil
}

func decodeValTypeVec(sr *sectionReader) ([]ValType, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	types := make([]ValType, n)
	for i := range types {
		if types[i], err = decodeValType(sr); err != nil {
			return nil, err
		}
	}
	return types, nil
}

func decodeTypeSec(sr *sectionReader) (Record, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	sec := &TypeSec{Types: make([]FuncType, n)}
	for i := range sec.Types {
		form, err := sr.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if form != funcTypeByte {
			return nil, fmt.Errorf("type %d: unhandled form 0x%02x", i, form)
		}
		if sec.Types[i].Params, err = decodeValTypeVec(sr); err != nil {
			return nil, err
		}
		if sec.Types[i].Results, err = decodeValTypeVec(sr); err != nil {
			return nil, err
		}
	}
	return sec, nil
}

func decodeLimits(sr *sectionReader) (Limits, error) {
	flags, err := sr.r.ReadByte()
	if err != nil {
		return Limits{}, err
	}
	if flags&^(LimitsHasMax|LimitsShared|LimitsMemory64) != 0 {
		return Limits{}, fmt.Errorf("unhandled limits flags 0x%02x", flags)
	}

	lim := Limits{Flags: flags}
	if flags&LimitsMemory64 != 0 {
		if lim.Min, err = sr.r.ReadU64(); err != nil {
			return Limits{}, err
		}
		if flags&LimitsHasMax != 0 {
			if lim.Max, err = sr.r.ReadU64(); err != nil {
				return Limits{}, err
			}
		}
		return lim, nil
	}

	min32, err := sr.r.ReadU32()
	if err != nil {
		return Limits{}, err
	}
	lim.Min = uint64(min32)
	if flags&LimitsHasMax != 0 {
		max32, err := sr.r.ReadU32()
		if err != nil {
			return Limits{}, err
		}
		lim.Max = uint64(max32)
	}
	return lim, nil
}

func decodeGlobalType(sr *sectionReader) (GlobalType, error) {
	vt, err := decodeValType(sr)
	if err != nil {
		return GlobalType{}, err
	}
	mut, err := sr.r.ReadByte()
	if err != nil {
		return GlobalType{}, err
	}
	if mut > 1 {
		return GlobalType{}, fmt.Errorf("invalid mutability 0x%02x", mut)
	}
	return GlobalType{Type: vt, Mutable: mut == 1}, nil
}

func decodeImportSec(sr *sectionReader) (Record, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	sec := &ImportSec{Imports: make([]Import, n)}
	for i := range sec.Imports {
		imp := &sec.Imports[i]
		if imp.Module, err = sr.r.ReadName(); err != nil {
			return nil, err
		}
		if imp.Name, err = sr.r.ReadName(); err != nil {
			return nil, err
		}
		kind, err := sr.r.ReadByte()
		if err != nil {
			return nil, err
		}
		imp.Kind = ExternKind(kind)

		switch imp.Kind {
		case KindFunc:
			if imp.TypeIndex, err = sr.r.ReadU32(); err != nil {
				return nil, err
			}
		case KindTable:
			if imp.Table.Elem, err = decodeRefType(sr); err != nil {
				return nil, err
			}
			if imp.Table.Limits, err = decodeLimits(sr); err != nil {
				return nil, err
			}
		case KindMemory:
			if imp.Memory, err = decodeLimits(sr); err != nil {
				return nil, err
			}
		case KindGlobal:
			if imp.Global, err = decodeGlobalType(sr); err != nil {
				return nil, err
			}
		case KindTag:
			if imp.TagAttr, err = sr.r.ReadByte(); err != nil {
				return nil, err
			}
			if imp.TypeIndex, err = sr.r.ReadU32(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("import %d: unknown kind 0x%02x", i, kind)
		}
	}
	return sec, nil
}

func decodeFunctionSec(sr *sectionReader) (Record, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	sec := &FunctionSec{TypeIndices: make([]uint32, n)}
	for i := range sec.TypeIndices {
		if sec.TypeIndices[i], err = sr.r.ReadU32(); err != nil {
			return nil, err
		}
	}
	return sec, nil
}

func decodeTableSec(sr *sectionReader) (Record, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	sec := &TableSec{Tables: make([]TableType, n)}
	for i := range sec.Tables {
		if sec.Tables[i].Elem, err = decodeRefType(sr); err != nil {
			return nil, err
		}
		if sec.Tables[i].Limits, err = decodeLimits(sr); err != nil {
			return nil, err
		}
	}
	return sec, nil
}

func decodeMemorySec(sr *sectionReader) (Record, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	sec := &MemorySec{Memories: make([]Limits, n)}
	for i := range sec.Memories {
		if sec.Memories[i], err = decodeLimits(sr); err != nil {
			return nil, err
		}
	}
	return sec, nil
}

func decodeGlobalSec(sr *sectionReader) (Record, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	sec := &GlobalSec{Globals: make([]Global, n)}
	for i := range sec.Globals {
		if sec.Globals[i].Type, err = decodeGlobalType(sr); err != nil {
			return nil, err
		}
		if sec.Globals[i].Init, err = sr.expr(); err != nil {
			return nil, err
		}
	}
	return sec, nil
}

func decodeExportSec(sr *sectionReader) (Record, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	sec := &ExportSec{Exports: make([]Export, n)}
	for i := range sec.Exports {
		exp := &sec.Exports[i]
		if exp.Name, err = sr.r.ReadName(); err != nil {
			return nil, err
		}
		kind, err := sr.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if ExternKind(kind) > KindTag {
			return nil, fmt.Errorf("export %d: unknown kind 0x%02x", i, kind)
		}
		exp.Kind = ExternKind(kind)
		if exp.Index, err = sr.r.ReadU32(); err != nil {
			return nil, err
		}
	}
	return sec, nil
}

func decodeStartSec(sr *sectionReader) (Record, error) {
	idx, err := sr.r.ReadU32()
	if err != nil {
		return nil, err
	}
	return &StartSec{FuncIndex: idx}, nil
}

func decodeFuncIdxVec(sr *sectionReader) ([]uint32, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	indices := make([]uint32, n)
	for i := range indices {
		if indices[i], err = sr.r.ReadU32(); err != nil {
			return nil, err
		}
	}
	return indices, nil
}

func decodeExprVec(sr *sectionReader) ([]Expr, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	exprs := make([]Expr, n)
	for i := range exprs {
		if exprs[i], err = sr.expr(); err != nil {
			return nil, err
		}
	}
	return exprs, nil
}

func decodeElemKind(sr *sectionReader) (byte, error) {
	kind, err := sr.r.ReadByte()
	if err != nil {
		return 0, err
	}
	if kind != 0x00 {
		return 0, fmt.Errorf("unhandled element kind 0x%02x", kind)
	}
	return kind, nil
}

// decodeElementSec handles the eight element segment encodings. Flags above
// 7 have no defined layout and force the opaque fallback.
func decodeElementSec(sr *sectionReader) (Record, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	sec := &ElementSec{Segments: make([]ElementSegment, n)}
	for i := range sec.Segments {
		seg := &sec.Segments[i]
		if seg.Flags, err = sr.r.ReadU32(); err != nil {
			return nil, err
		}

		switch seg.Flags {
		case 0:
			if seg.Offset, err = sr.expr(); err != nil {
				return nil, err
			}
			if seg.FuncIndices, err = decodeFuncIdxVec(sr); err != nil {
				return nil, err
			}
		case 1, 3:
			if seg.ElemKind, err = decodeElemKind(sr); err != nil {
				return nil, err
			}
			if seg.FuncIndices, err = decodeFuncIdxVec(sr); err != nil {
				return nil, err
			}
		case 2:
			if seg.TableIndex, err = sr.r.ReadU32(); err != nil {
				return nil, err
			}
			if seg.Offset, err = sr.expr(); err != nil {
				return nil, err
			}
			if seg.ElemKind, err = decodeElemKind(sr); err != nil {
				return nil, err
			}
			if seg.FuncIndices, err = decodeFuncIdxVec(sr); err != nil {
				return nil, err
			}
		case 4:
			if seg.Offset, err = sr.expr(); err != nil {
				return nil, err
			}
			if seg.Exprs, err = decodeExprVec(sr); err != nil {
				return nil, err
			}
		case 5, 7:
			if seg.RefType, err = decodeRefType(sr); err != nil {
				return nil, err
			}
			if seg.Exprs, err = decodeExprVec(sr); err != nil {
				return nil, err
			}
		case 6:
			if seg.TableIndex, err = sr.r.ReadU32(); err != nil {
				return nil, err
			}
			if seg.Offset, err = sr.expr(); err != nil {
				return nil, err
			}
			if seg.RefType, err = decodeRefType(sr); err != nil {
				return nil, err
			}
			if seg.Exprs, err = decodeExprVec(sr); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("element segment %d: unhandled flags %d", i, seg.Flags)
		}
	}
	return sec, nil
}

func decodeCodeSec(sr *sectionReader) (Record, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	sec := &CodeSec{Bodies: make([]FuncBody, n)}
	for i := range sec.Bodies {
		size, err := sr.r.ReadU32()
		if err != nil {
			return nil, err
		}
		body, err := sr.bytesN(size)
		if err != nil {
			return nil, err
		}
		if sec.Bodies[i], err = decodeFuncBody(body); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
	}
	return sec, nil
}

func decodeFuncBody(body []byte) (FuncBody, error) {
	bsr := newSectionReader(body)
	n, err := bsr.vecLen()
	if err != nil {
		return FuncBody{}, err
	}
	fb := FuncBody{Locals: make([]LocalDecl, n)}
	for i := range fb.Locals {
		if fb.Locals[i].Count, err = bsr.r.ReadU32(); err != nil {
			return FuncBody{}, err
		}
		if fb.Locals[i].Type, err = decodeValType(bsr); err != nil {
			return FuncBody{}, err
		}
	}
	if fb.Code, err = bsr.r.ReadRemaining(); err != nil {
		return FuncBody{}, err
	}
	if len(fb.Code) == 0 {
		return FuncBody{}, fmt.Errorf("empty instruction stream")
	}
	return fb, nil
}

func decodeDataSec(sr *sectionReader) (Record, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	sec := &DataSec{Segments: make([]DataSegment, n)}
	for i := range sec.Segments {
		seg := &sec.Segments[i]
		if seg.Flags, err = sr.r.ReadU32(); err != nil {
			return nil, err
		}

		switch seg.Flags {
		case 0:
			if seg.Offset, err = sr.expr(); err != nil {
				return nil, err
			}
		case 1:
			// passive, no offset
		case 2:
			if seg.MemIndex, err = sr.r.ReadU32(); err != nil {
				return nil, err
			}
			if seg.Offset, err = sr.expr(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("data segment %d: unhandled flags %d", i, seg.Flags)
		}

		size, err := sr.r.ReadU32()
		if err != nil {
			return nil, err
		}
		if seg.Init, err = sr.bytesN(size); err != nil {
			return nil, err
		}
	}
	return sec, nil
}

func decodeDataCountSec(sr *sectionReader) (Record, error) {
	count, err := sr.r.ReadU32()
	if err != nil {
		return nil, err
	}
	return &DataCountSec{Count: count}, nil
}

func decodeTagSec(sr *sectionReader) (Record, error) {
	n, err := sr.vecLen()
	if err != nil {
		return nil, err
	}
	sec := &TagSec{Tags: make([]Tag, n)}
	for i := range sec.Tags {
		attr, err := sr.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if attr != 0x00 {
			return nil, fmt.Errorf("tag %d: unhandled attribute 0x%02x", i, attr)
		}
		sec.Tags[i].Attribute = attr
		if sec.Tags[i].TypeIndex, err = sr.r.ReadU32(); err != nil {
			return nil, err
		}
	}
	return sec, nil
}
