package wasm

// Record is the kind-specific decoded view of one section's payload. Every
// record re-encodes through EncodePayload; for records produced by
// DecodeSection the result is byte-identical to the payload they came from.
type Record interface {
	ID() SectionID
	EncodePayload() []byte
}

// Opaque wraps a payload whose internal structure is not modeled: custom
// data, unknown section IDs, and any section the typed decoders could not
// handle. It is the universal fallback, not an error state.
type Opaque struct {
	Kind  SectionID
	Bytes []byte
}

func (o *Opaque) ID() SectionID { return o.Kind }

// Custom is a named section with an uninterpreted body.
type Custom struct {
	Name string
	Data []byte
}

func (c *Custom) ID() SectionID { return SectionCustom }

// TypeSec holds the function signatures of the type section.
type TypeSec struct {
	Types []FuncType
}

func (t *TypeSec) ID() SectionID { return SectionType }

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// ImportSec holds the import section entries.
type ImportSec struct {
	Imports []Import
}

func (i *ImportSec) ID() SectionID { return SectionImport }

// Import is one imported item. Kind selects which descriptor field applies.
type Import struct {
	Module string
	Name   string
	Kind   ExternKind

	TypeIndex uint32     // KindFunc, KindTag
	Table     TableType  // KindTable
	Memory    Limits     // KindMemory
	Global    GlobalType // KindGlobal
	TagAttr   byte       // KindTag
}

// FunctionSec maps each locally defined function to its type index.
type FunctionSec struct {
	TypeIndices []uint32
}

func (f *FunctionSec) ID() SectionID { return SectionFunction }

// TableSec holds the table definitions.
type TableSec struct {
	Tables []TableType
}

func (t *TableSec) ID() SectionID { return SectionTable }

// TableType is a table's element type and size limits.
type TableType struct {
	Elem   ValType
	Limits Limits
}

// MemorySec holds the memory definitions.
type MemorySec struct {
	Memories []Limits
}

func (m *MemorySec) ID() SectionID { return SectionMemory }

// Limits carries min/max sizes with their flag byte. The flag byte is
// preserved so shared and 64-bit memories re-encode exactly.
type Limits struct {
	Flags byte
	Min   uint64
	Max   uint64
}

// GlobalSec holds the global definitions.
type GlobalSec struct {
	Globals []Global
}

func (g *GlobalSec) ID() SectionID { return SectionGlobal }

// GlobalType is a global's value type and mutability.
type GlobalType struct {
	Type    ValType
	Mutable bool
}

// Global is one global definition with its initializer expression.
type Global struct {
	Type GlobalType
	Init Expr
}

// ExportSec holds the export section entries.
type ExportSec struct {
	Exports []Export
}

func (e *ExportSec) ID() SectionID { return SectionExport }

// Export is one exported item.
type Export struct {
	Name  string
	Kind  ExternKind
	Index uint32
}

// StartSec names the function run at instantiation.
type StartSec struct {
	FuncIndex uint32
}

func (s *StartSec) ID() SectionID { return SectionStart }

// ElementSec holds the element segments.
type ElementSec struct {
	Segments []ElementSegment
}

func (e *ElementSec) ID() SectionID { return SectionElement }

// ElementSegment is one element segment. Flags selects the encoding (0-7);
// the other fields are populated according to that encoding.
type ElementSegment struct {
	Flags       uint32
	TableIndex  uint32   // flags 2, 6
	Offset      Expr     // active segments: flags 0, 2, 4, 6
	ElemKind    byte     // flags 1, 2, 3
	RefType     ValType  // flags 5, 6, 7
	FuncIndices []uint32 // flags 0-3
	Exprs       []Expr   // flags 4-7
}

// CodeSec holds the function bodies.
type CodeSec struct {
	Bodies []FuncBody
}

func (c *CodeSec) ID() SectionID { return SectionCode }

// FuncBody is one function body: its local declarations and the instruction
// stream. Instructions are an opaque byte range at this layer.
type FuncBody struct {
	Locals []LocalDecl
	Code   []byte
}

// LocalDecl declares Count locals of one type.
type LocalDecl struct {
	Count uint32
	Type  ValType
}

// DataSec holds the data segments.
type DataSec struct {
	Segments []DataSegment
}

func (d *DataSec) ID() SectionID { return SectionData }

// DataSegment is one data segment. Flags 0 is active against memory 0,
// 1 is passive, 2 is active with an explicit memory index.
type DataSegment struct {
	Flags    uint32
	MemIndex uint32 // flags 2
	Offset   Expr   // flags 0, 2
	Init     []byte
}

// DataCountSec mirrors the data segment count for single-pass validators.
type DataCountSec struct {
	Count uint32
}

func (d *DataCountSec) ID() SectionID { return SectionDataCount }

// TagSec holds the exception tag definitions.
type TagSec struct {
	Tags []Tag
}

func (t *TagSec) ID() SectionID { return SectionTag }

// Tag is one exception tag: an attribute byte and a function type index.
type Tag struct {
	Attribute byte
	TypeIndex uint32
}
