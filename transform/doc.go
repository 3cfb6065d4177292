// Package transform provides reversible section payload rewrites that
// improve downstream compression.
//
// A transform reorders the bytes of one section kind into a layout with
// more redundancy for a general-purpose compressor to find, and can undo
// that reordering exactly. Transforms never change what a module means;
// they only change how its bytes are arranged inside an artifact.
//
// # Selection
//
// A Pipeline tries transforms in a fixed priority order and picks the first
// one that applies to a section and proves itself reversible on that exact
// payload:
//
//	p := transform.Default()
//	id, rewritten := p.Apply(section)
//
// The returned id is recorded next to the compressed bytes so decompression
// knows which inverse to run:
//
//	original, err := p.Revert(id, rewritten)
//
// Apply cannot fail. A transform whose forward rewrite errors, or whose
// inverse does not reproduce the input byte for byte, is skipped with a
// logged warning, and the identity transform catches whatever falls
// through. A module never becomes uncompressible because a rewrite went
// wrong; it just compresses less well.
//
// # Built-in Transforms
//
// CodeSplit separates function body sizes from body bytes in the code
// section. DataSplit does the same for data segment headers and
// initializer contents. IndexDelta recodes the function section's type
// indices as successive differences. Identity passes any payload through
// untouched and is always registered last.
package transform
