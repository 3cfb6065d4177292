// Package analysis inspects decoded WebAssembly modules: section layout,
// the function index space, the static call graph, and operator usage.
//
// # Reports
//
// Analyze walks a decoded module and fills in only the parts of a Report
// the Options ask for:
//
//	report := analysis.Analyze(module, analysis.Options{Sections: true, Functions: true})
//	fmt.Print(report)
//
// Section offsets are recovered by replaying the encoder's framing, so
// they match the byte positions in the original file. Function analysis
// scans each code body for direct call instructions and cross references
// the result against exports, element segments, and the start function to
// find implemented functions nothing reaches.
//
// # Instruction scanning
//
// The scanner knows the immediate shape of every operator it may meet and
// skips immediates without materializing them. Bodies using encodings it
// does not understand are counted in Report.Unscanned instead of failing
// the whole analysis.
package analysis
