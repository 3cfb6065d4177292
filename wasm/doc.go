// Package wasm provides byte-exact WebAssembly binary module decoding and
// encoding.
//
// The package is built around one guarantee: decoding a module and encoding
// it again reproduces the input byte for byte, and encoding a module and
// decoding it again reproduces the same value. To make that possible the
// decoder never normalizes anything it reads. Integers must already be in
// canonical LEB128 form (the shortest encoding); a padded or overlong
// encoding is rejected rather than silently re-encoded, because accepting it
// would make the module unrepresentable.
//
// # Module Layer
//
// Decode captures a module as an ordered list of raw sections:
//
//	data, _ := os.ReadFile("module.wasm")
//	module, err := wasm.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out := module.Encode()
//	// bytes.Equal(data, out) == true
//
// Only the outer framing is interpreted at this layer: the magic number,
// the version word, and each section's id byte and size. Section payloads
// are carried verbatim, in the order they appeared. Unknown section ids are
// kept as-is, so modules using future or nonstandard sections survive a
// round trip untouched.
//
// # Section Layer
//
// DecodeSection interprets a single section's payload into a typed record:
//
//	sec, _ := module.FindSection(wasm.SectionType)
//	rec, err := wasm.DecodeSection(sec)
//	if types, ok := rec.(*wasm.TypeSec); ok {
//	    fmt.Println(len(types.Types), "function signatures")
//	}
//
// Every record re-encodes to the exact payload it was decoded from:
//
//	bytes.Equal(rec.EncodePayload(), sec.Payload) // true
//
// A payload the typed decoders cannot interpret is not an error at the
// module level. DecodeSectionOrOpaque falls back to an Opaque record
// holding the raw bytes, so a malformed custom section or an unrecognized
// segment encoding degrades to pass-through instead of failing the module:
//
//	rec := wasm.DecodeSectionOrOpaque(sec)
//
// Function bodies are kept as raw instruction streams (FuncBody.Code).
// Decoding individual instructions is out of scope for this package.
//
// # Constant Expressions
//
// Global initializers and element/data offsets are constant expressions.
// ScanInitExpr finds the length of one without building an AST:
//
//	n, err := wasm.ScanInitExpr(payload)
//	expr := payload[:n] // includes the trailing end opcode
//
// The scanner understands the constant opcodes, global.get, the reference
// constants, v128.const, and the extended-const arithmetic forms.
package wasm
