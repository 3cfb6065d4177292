package wasm

import (
	"github.com/andrewdavidmackenzie/wazm/internal/binary"
)

// EncodePayload returns the stored bytes verbatim.
func (o *Opaque) EncodePayload() []byte {
	return o.Bytes
}

func (c *Custom) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteName(c.Name)
	w.WriteBytes(c.Data)
	return w.Bytes()
}

func writeValTypeVec(w *binary.Writer, types []ValType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
	}
}

func (s *TypeSec) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(s.Types)))
	for _, ft := range s.Types {
		w.Byte(funcTypeByte)
		writeValTypeVec(w, ft.Params)
		writeValTypeVec(w, ft.Results)
	}
	return w.Bytes()
}

func writeLimits(w *binary.Writer, lim Limits) {
	w.Byte(lim.Flags)
	if lim.Flags&LimitsMemory64 != 0 {
		w.WriteU64(lim.Min)
		if lim.Flags&LimitsHasMax != 0 {
			w.WriteU64(lim.Max)
		}
		return
	}
	w.WriteU32(uint32(lim.Min))
	if lim.Flags&LimitsHasMax != 0 {
		w.WriteU32(uint32(lim.Max))
	}
}

func writeGlobalType(w *binary.Writer, gt GlobalType) {
	w.Byte(byte(gt.Type))
	if gt.Mutable {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

func (s *ImportSec) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(s.Imports)))
	for _, imp := range s.Imports {
		w.WriteName(imp.Module)
		w.WriteName(imp.Name)
		w.Byte(byte(imp.Kind))
		switch imp.Kind {
		case KindFunc:
			w.WriteU32(imp.TypeIndex)
		case KindTable:
			w.Byte(byte(imp.Table.Elem))
			writeLimits(w, imp.Table.Limits)
		case KindMemory:
			writeLimits(w, imp.Memory)
		case KindGlobal:
			writeGlobalType(w, imp.Global)
		case KindTag:
			w.Byte(imp.TagAttr)
			w.WriteU32(imp.TypeIndex)
		}
	}
	return w.Bytes()
}

func (s *FunctionSec) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(s.TypeIndices)))
	for _, idx := range s.TypeIndices {
		w.WriteU32(idx)
	}
	return w.Bytes()
}

func (s *TableSec) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(s.Tables)))
	for _, t := range s.Tables {
		w.Byte(byte(t.Elem))
		writeLimits(w, t.Limits)
	}
	return w.Bytes()
}

func (s *MemorySec) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(s.Memories)))
	for _, m := range s.Memories {
		writeLimits(w, m)
	}
	return w.Bytes()
}

func (s *GlobalSec) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(s.Globals)))
	for _, g := range s.Globals {
		writeGlobalType(w, g.Type)
		w.WriteBytes(g.Init)
	}
	return w.Bytes()
}

func (s *ExportSec) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(s.Exports)))
	for _, e := range s.Exports {
		w.WriteName(e.Name)
		w.Byte(byte(e.Kind))
		w.WriteU32(e.Index)
	}
	return w.Bytes()
}

func (s *StartSec) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteU32(s.FuncIndex)
	return w.Bytes()
}

func writeFuncIdxVec(w *binary.Writer, indices []uint32) {
	w.WriteU32(uint32(len(indices)))
	for _, idx := range indices {
		w.WriteU32(idx)
	}
}

func writeExprVec(w *binary.Writer, exprs []Expr) {
	w.WriteU32(uint32(len(exprs)))
	for _, e := range exprs {
		w.WriteBytes(e)
	}
}

func (s *ElementSec) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(s.Segments)))
	for _, seg := range s.Segments {
		w.WriteU32(seg.Flags)
		switch seg.Flags {
		case 0:
			w.WriteBytes(seg.Offset)
			writeFuncIdxVec(w, seg.FuncIndices)
		case 1, 3:
			w.Byte(seg.ElemKind)
			writeFuncIdxVec(w, seg.FuncIndices)
		case 2:
			w.WriteU32(seg.TableIndex)
			w.WriteBytes(seg.Offset)
			w.Byte(seg.ElemKind)
			writeFuncIdxVec(w, seg.FuncIndices)
		case 4:
			w.WriteBytes(seg.Offset)
			writeExprVec(w, seg.Exprs)
		case 5, 7:
			w.Byte(byte(seg.RefType))
			writeExprVec(w, seg.Exprs)
		case 6:
			w.WriteU32(seg.TableIndex)
			w.WriteBytes(seg.Offset)
			w.Byte(byte(seg.RefType))
			writeExprVec(w, seg.Exprs)
		}
	}
	return w.Bytes()
}

// EncodeBody serializes one function body without its size prefix.
func (b FuncBody) EncodeBody() []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(b.Locals)))
	for _, l := range b.Locals {
		w.WriteU32(l.Count)
		w.Byte(byte(l.Type))
	}
	w.WriteBytes(b.Code)
	return w.Bytes()
}

func (s *CodeSec) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(s.Bodies)))
	for _, b := range s.Bodies {
		body := b.EncodeBody()
		w.WriteU32(uint32(len(body)))
		w.WriteBytes(body)
	}
	return w.Bytes()
}

func (s *DataSec) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(s.Segments)))
	for _, seg := range s.Segments {
		w.WriteU32(seg.Flags)
		switch seg.Flags {
		case 0:
			w.WriteBytes(seg.Offset)
		case 1:
			// passive
		case 2:
			w.WriteU32(seg.MemIndex)
			w.WriteBytes(seg.Offset)
		}
		w.WriteU32(uint32(len(seg.Init)))
		w.WriteBytes(seg.Init)
	}
	return w.Bytes()
}

func (s *DataCountSec) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteU32(s.Count)
	return w.Bytes()
}

func (s *TagSec) EncodePayload() []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(s.Tags)))
	for _, t := range s.Tags {
		w.Byte(t.Attribute)
		w.WriteU32(t.TypeIndex)
	}
	return w.Bytes()
}
