package backend

import (
	"context"
	"os"

	"github.com/andrewdavidmackenzie/wazm/errors"
)

// Tool compresses and decompresses a module file in place. This is the
// contract the verification harness drives: hand the tool a path, let it
// rewrite the file, judge it only by its error and by what the bytes look
// like afterwards.
type Tool interface {
	Name() string

	// Compress replaces the module file at path with its compressed form.
	Compress(ctx context.Context, path string) error

	// Decompress replaces the compressed file at path with the module it
	// encodes.
	Decompress(ctx context.Context, path string) error
}

// CodecTool runs the in-process pipeline against a file, fulfilling the
// Tool contract with one of the built-in codecs.
type CodecTool struct {
	codec string
	d     *Dispatcher
}

// NewCodecTool wraps one of the dispatcher's codecs as an in-place file
// tool.
func NewCodecTool(d *Dispatcher, codec string) *CodecTool {
	return &CodecTool{codec: codec, d: d}
}

func (t *CodecTool) Name() string { return t.codec }

func (t *CodecTool) Compress(ctx context.Context, path string) error {
	return t.rewrite(ctx, errors.PhaseCompress, path, func(data []byte) ([]byte, error) {
		return t.d.Compress(data, t.codec)
	})
}

func (t *CodecTool) Decompress(ctx context.Context, path string) error {
	return t.rewrite(ctx, errors.PhaseDecompress, path, t.d.Decompress)
}

func (t *CodecTool) rewrite(ctx context.Context, phase errors.Phase, path string, op func([]byte) ([]byte, error)) error {
	if err := ctx.Err(); err != nil {
		return errors.ToolFailure(phase, t.codec, err, "invocation cancelled")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.IOFailure(phase, path, err)
	}

	out, err := op(data)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.IOFailure(phase, path, err)
	}
	return nil
}

// CodecTools returns one in-process tool per named codec, preserving the
// given order. Unknown names surface when the tool first runs, not here.
func CodecTools(d *Dispatcher, names ...string) []Tool {
	tools := make([]Tool, len(names))
	for i, name := range names {
		tools[i] = NewCodecTool(d, name)
	}
	return tools
}
