package analysis

import (
	"bytes"
	"sort"

	"go.uber.org/zap"

	"github.com/andrewdavidmackenzie/wazm/internal/binary"
	"github.com/andrewdavidmackenzie/wazm/wasm"
)

// Options selects which parts of a report to compute. Zero value computes
// nothing beyond the module size and version.
type Options struct {
	Sections  bool
	Functions bool
	Operators bool
	CallTree  bool
}

// All enables every part of the report.
func All() Options {
	return Options{Sections: true, Functions: true, Operators: true, CallTree: true}
}

// SectionInfo describes one section's placement inside the binary image.
type SectionInfo struct {
	ID          wasm.SectionID
	Name        string // custom section name, when present
	HeaderStart int    // offset of the section id byte
	Start       int    // first payload byte
	End         int    // one past the last payload byte
	Items       int    // leading item count, -1 when not countable
}

// Size returns the section's full footprint including the header bytes.
func (s SectionInfo) Size() int {
	return s.End - s.HeaderStart
}

// OperatorCount pairs an operator name with its occurrence count.
type OperatorCount struct {
	Name  string
	Count uint64
}

// Report is the result of analyzing one module.
//
// Function indices follow the index space of the binary format: imported
// functions come first, then implemented ones in code section order.
type Report struct {
	Size     int
	Version  uint32
	Sections []SectionInfo

	ImportedFuncs map[uint32]string
	ExportedFuncs map[uint32]string
	ImportedCount uint32
	Implemented   uint32
	Start         int64 // start function index, -1 when absent

	Calls     map[uint32][]uint32 // caller to distinct callees, sorted
	Table     []uint32            // functions referenced by element segments
	Uncalled  []uint32            // implemented functions nothing reaches
	Unscanned int                 // bodies the scanner could not walk

	BodyMin   int // smallest encoded body, locals included
	BodyMax   int
	BodyTotal int

	Operators     []OperatorCount
	OperatorTotal uint64

	opts Options
}

// Analyze inspects a decoded module and builds the parts of a report the
// options ask for. Bodies the scanner cannot walk are counted rather than
// failing the whole analysis.
func Analyze(m *wasm.Module, opts Options) *Report {
	r := &Report{
		Version:       m.Version,
		ImportedFuncs: map[uint32]string{},
		ExportedFuncs: map[uint32]string{},
		Calls:         map[uint32][]uint32{},
		Start:         -1,
		opts:          opts,
	}
	r.Size, r.Sections = layout(m)
	if !opts.Sections {
		r.Sections = nil
	}
	if !opts.Functions && !opts.Operators && !opts.CallTree {
		return r
	}

	var code *wasm.CodeSec
	for _, s := range m.Sections {
		switch rec := wasm.DecodeSectionOrOpaque(s).(type) {
		case *wasm.ImportSec:
			for _, imp := range rec.Imports {
				if imp.Kind == wasm.KindFunc {
					r.ImportedFuncs[r.ImportedCount] = imp.Name
					r.ImportedCount++
				}
			}
		case *wasm.ExportSec:
			for _, exp := range rec.Exports {
				if exp.Kind == wasm.KindFunc {
					r.ExportedFuncs[exp.Index] = exp.Name
				}
			}
		case *wasm.StartSec:
			r.Start = int64(rec.FuncIndex)
		case *wasm.ElementSec:
			for _, seg := range rec.Segments {
				r.Table = append(r.Table, seg.FuncIndices...)
				for _, e := range seg.Exprs {
					if idx, ok := refFuncTarget(e); ok {
						r.Table = append(r.Table, idx)
					}
				}
			}
		case *wasm.CodeSec:
			code = rec
		}
	}
	r.Table = dedupeSorted(r.Table)

	if code != nil {
		r.Implemented = uint32(len(code.Bodies))
		var hist map[string]uint64
		if opts.Operators {
			hist = map[string]uint64{}
		}
		for i, body := range code.Bodies {
			caller := r.ImportedCount + uint32(i)
			size := len(body.EncodeBody())
			if i == 0 || size < r.BodyMin {
				r.BodyMin = size
			}
			if size > r.BodyMax {
				r.BodyMax = size
			}
			r.BodyTotal += size
			calls, err := scanBody(body.Code, hist, &r.OperatorTotal)
			if err != nil {
				r.Unscanned++
				Logger().Debug("body scan aborted",
					zap.Uint32("function", caller),
					zap.Error(err))
			}
			if len(calls) > 0 {
				r.Calls[caller] = dedupeSorted(calls)
			}
		}
		r.Operators = sortedOperators(hist)
	}

	r.Uncalled = r.uncalled()
	return r
}

// AnalyzeBytes decodes a binary module and analyzes it.
func AnalyzeBytes(data []byte, opts Options) (*Report, error) {
	m, err := wasm.Decode(data)
	if err != nil {
		return nil, err
	}
	return Analyze(m, opts), nil
}

// layout replays the encoder's framing to recover each section's offsets.
func layout(m *wasm.Module) (int, []SectionInfo) {
	off := 8
	infos := make([]SectionInfo, 0, len(m.Sections))
	for _, s := range m.Sections {
		header := 1 + lebLen(uint32(len(s.Payload)))
		info := SectionInfo{
			ID:          s.ID,
			HeaderStart: off,
			Start:       off + header,
			End:         off + header + len(s.Payload),
			Items:       sectionItems(s),
		}
		if name, ok := s.CustomName(); ok {
			info.Name = name
		}
		infos = append(infos, info)
		off = info.End
	}
	return off, infos
}

// sectionItems reads the leading item count of a counted section, the
// declared count of a data count section, and -1 for everything else.
func sectionItems(s wasm.Section) int {
	switch s.ID {
	case wasm.SectionType, wasm.SectionImport, wasm.SectionFunction,
		wasm.SectionTable, wasm.SectionMemory, wasm.SectionGlobal,
		wasm.SectionExport, wasm.SectionElement, wasm.SectionCode,
		wasm.SectionData, wasm.SectionTag, wasm.SectionDataCount:
	default:
		return -1
	}
	n, err := binary.NewReader(bytes.NewReader(s.Payload)).ReadU32()
	if err != nil {
		return -1
	}
	return int(n)
}

func lebLen(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// refFuncTarget extracts the function index from a ref.func constant
// expression.
func refFuncTarget(e wasm.Expr) (uint32, bool) {
	if len(e) == 0 || e[0] != wasm.OpRefFunc {
		return 0, false
	}
	c := &cursor{data: e[1:]}
	v, err := c.varU(5)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func dedupeSorted(in []uint32) []uint32 {
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool { return in[i] < in[j] })
	out := in[:1]
	for _, v := range in[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func sortedOperators(hist map[string]uint64) []OperatorCount {
	if len(hist) == 0 {
		return nil
	}
	ops := make([]OperatorCount, 0, len(hist))
	for name, count := range hist {
		ops = append(ops, OperatorCount{Name: name, Count: count})
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Count != ops[j].Count {
			return ops[i].Count > ops[j].Count
		}
		return ops[i].Name < ops[j].Name
	})
	return ops
}

// uncalled lists implemented functions that no direct call, export, table
// slot, or start declaration reaches.
func (r *Report) uncalled() []uint32 {
	if r.Implemented == 0 {
		return nil
	}
	reached := map[uint32]bool{}
	for _, callees := range r.Calls {
		for _, c := range callees {
			reached[c] = true
		}
	}
	for idx := range r.ExportedFuncs {
		reached[idx] = true
	}
	for _, idx := range r.Table {
		reached[idx] = true
	}
	if r.Start >= 0 {
		reached[uint32(r.Start)] = true
	}
	var out []uint32
	for i := uint32(0); i < r.Implemented; i++ {
		idx := r.ImportedCount + i
		if !reached[idx] {
			out = append(out, idx)
		}
	}
	return out
}
