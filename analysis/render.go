package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// StaticallyCalled returns every function index that appears as a direct
// call target, sorted and deduplicated.
func (r *Report) StaticallyCalled() []uint32 {
	var all []uint32
	for _, callees := range r.Calls {
		all = append(all, callees...)
	}
	return dedupeSorted(all)
}

// String renders the report as the plain text the analyze command prints.
// Only the parts the options asked for are included.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Module size: %#x (%d) bytes, format version %d\n", r.Size, r.Size, r.Version)
	if r.opts.Sections {
		r.writeSections(&b)
	}
	if r.opts.Functions {
		r.writeFunctions(&b)
	}
	if r.opts.CallTree {
		r.writeCallTree(&b)
	}
	if r.opts.Operators {
		r.writeOperators(&b)
	}
	return b.String()
}

func (r *Report) writeSections(b *strings.Builder) {
	fmt.Fprintf(b, "\nSections:\n")
	fmt.Fprintf(b, "  %-12s %-12s %-12s %-12s %-9s %-22s %s\n",
		"Header", "Start", "End", "Size (hex)", "Size", "Type", "Items")
	total := 0
	for _, s := range r.Sections {
		kind := s.ID.String()
		if s.Name != "" {
			kind = fmt.Sprintf("%s %q", kind, s.Name)
		}
		items := "-"
		if s.Items >= 0 {
			items = fmt.Sprintf("%d", s.Items)
		}
		fmt.Fprintf(b, "  %#-12x %#-12x %#-12x %#-12x %-9d %-22s %s\n",
			s.HeaderStart, s.Start, s.End, s.Size(), s.Size(), kind, items)
		total += s.Size()
	}
	fmt.Fprintf(b, "  Total section footprint: %#x (%d) bytes\n", total, total)
}

func (r *Report) writeFunctions(b *strings.Builder) {
	fmt.Fprintf(b, "\nFunctions:\n")
	fmt.Fprintf(b, "  Imported: %d\n", r.ImportedCount)
	for _, idx := range sortedKeys(r.ImportedFuncs) {
		fmt.Fprintf(b, "    #%d %s\n", idx, r.ImportedFuncs[idx])
	}
	fmt.Fprintf(b, "  Implemented: %d %s\n", r.Implemented, FormatRanges(r.implementedRange()))
	if r.Implemented > 0 {
		fmt.Fprintf(b, "  Body sizes: min %d, max %d, total %d bytes\n", r.BodyMin, r.BodyMax, r.BodyTotal)
	}
	fmt.Fprintf(b, "  Exported: %d\n", len(r.ExportedFuncs))
	for _, idx := range sortedKeys(r.ExportedFuncs) {
		fmt.Fprintf(b, "    #%d %s\n", idx, r.ExportedFuncs[idx])
	}
	if r.Start >= 0 {
		fmt.Fprintf(b, "  Start function: #%d\n", r.Start)
	}
	fmt.Fprintf(b, "  Statically called: %s\n", FormatRanges(r.StaticallyCalled()))
	fmt.Fprintf(b, "  Table referenced: %s\n", FormatRanges(r.Table))
	fmt.Fprintf(b, "  Uncalled: %s\n", FormatRanges(r.Uncalled))
	if r.Unscanned > 0 {
		fmt.Fprintf(b, "  Unscanned bodies: %d\n", r.Unscanned)
	}
}

func (r *Report) implementedRange() []uint32 {
	out := make([]uint32, 0, r.Implemented)
	for i := uint32(0); i < r.Implemented; i++ {
		out = append(out, r.ImportedCount+i)
	}
	return out
}

// writeCallTree prints one tree per exported function plus the start
// function. A function already printed under the current root is not
// expanded again, which keeps both cycles and shared subtrees bounded.
func (r *Report) writeCallTree(b *strings.Builder) {
	fmt.Fprintf(b, "\nCall tree:\n")
	roots := sortedKeys(r.ExportedFuncs)
	if r.Start >= 0 {
		if _, ok := r.ExportedFuncs[uint32(r.Start)]; !ok {
			roots = append(roots, uint32(r.Start))
			sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
		}
	}
	for _, root := range roots {
		name, ok := r.ExportedFuncs[root]
		if !ok {
			name = "start"
		}
		fmt.Fprintf(b, "  %s (#%d)\n", name, root)
		r.writeBranch(b, root, 1, map[uint32]bool{root: true})
	}
}

func (r *Report) writeBranch(b *strings.Builder, fn uint32, depth int, seen map[uint32]bool) {
	for _, callee := range r.Calls[fn] {
		indent := strings.Repeat(" ", 2+depth*3)
		if seen[callee] {
			fmt.Fprintf(b, "%s+- #%d%s (repeated)\n", indent, callee, r.funcLabel(callee))
			continue
		}
		seen[callee] = true
		fmt.Fprintf(b, "%s+- #%d%s\n", indent, callee, r.funcLabel(callee))
		r.writeBranch(b, callee, depth+1, seen)
	}
}

func (r *Report) funcLabel(fn uint32) string {
	if name, ok := r.ImportedFuncs[fn]; ok {
		return fmt.Sprintf(" %s (imported)", name)
	}
	if name, ok := r.ExportedFuncs[fn]; ok {
		return " " + name
	}
	return ""
}

func (r *Report) writeOperators(b *strings.Builder) {
	fmt.Fprintf(b, "\nOperators: %d total, %d distinct\n", r.OperatorTotal, len(r.Operators))
	for _, op := range r.Operators {
		fmt.Fprintf(b, "  %-28s %d\n", op.Name, op.Count)
	}
}

func sortedKeys(m map[uint32]string) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
