// Package backend turns modules into compressed artifacts and back, and
// abstracts over who does the compressing.
//
// # Dispatcher
//
// The Dispatcher composes the module codec, the transform pipeline, and a
// registry of compression codecs:
//
//	d := backend.NewDispatcher(nil, nil)
//	art, err := d.Compress(moduleBytes, "zstd")
//	orig, err := d.Decompress(art)
//	// bytes.Equal(orig, moduleBytes) == true
//
// Compression rewrites each section with the best applicable transform,
// packs the rewritten payloads into one image, and compresses that image
// with the named codec. The artifact records the codec name and the
// per-section transform ids, so decompression needs nothing but the
// artifact itself.
//
// # Codecs
//
// Six codecs ship in the default registry: store, gzip, zstd, s2, lz4 and
// brotli, each tuned for ratio over speed. Store is the do-nothing
// baseline every other codec gets measured against.
//
// # Tools
//
// A Tool applies compression to a file in place, which is the shape the
// verification harness drives. CodecTool wraps the in-process pipeline;
// ExecTool shells out to an external compressor:
//
//	zstdTool := backend.NewCodecTool(d, "zstd")
//	upx, err := backend.ParseExecSpec("upx|upx -q {}|upx -d -q {}", 30*time.Second)
//
// External tools are judged only by their exit status and the bytes they
// leave behind. Stderr is captured into error details for the operator but
// never parsed.
package backend
