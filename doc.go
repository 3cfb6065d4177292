// Package wazm provides lossless, WebAssembly-aware compression of core
// module binaries.
//
// Rather than feeding whole files to a general-purpose compressor, the
// toolchain parses the module, rewrites individual sections into more
// compressible layouts with reversible transforms, compresses the result
// through a pluggable backend, and packages everything as a compact
// artifact that restores the original file byte for byte.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	wazm/                Root package with the Compress/Decompress entry points
//	├── wasm/            Module codec and typed section model
//	├── transform/       Reversible per-section rewrites with self-validation
//	├── artifact/        Compressed artifact container format (.wz)
//	├── backend/         Compression codecs, tool contract, dispatcher
//	├── analysis/        Section, call graph, and operator reports
//	├── harness/         Corpus sweep verification
//	└── errors/          Structured error types for every pipeline phase
//
// # Quick Start
//
// Compress a module and get it back:
//
//	artifact, err := wazm.Compress(moduleBytes, "zstd")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	restored, err := wazm.Decompress(artifact)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// restored is byte-identical to moduleBytes
//
// # Round-Trip Guarantees
//
// Every layer preserves bytes exactly. The codec keeps unknown section
// kinds and non-standard orderings as raw payloads, transforms verify
// their own invertibility before being applied and fall back to identity
// when in doubt, and the harness proves equality against the original
// file after each compress/decompress cycle. A module that decodes will
// re-encode to the same bytes; a module that does not decode is rejected
// rather than repaired.
//
// # Tool Contract
//
// Compression backends come in two forms: in-process codecs and external
// processes. An external tool receives a file path, rewrites the file in
// place, and signals failure through its exit code. The wazm command
// itself satisfies this contract, so it can be verified like any other
// tool.
package wazm
