package backend

import (
	"go.uber.org/zap"

	"github.com/andrewdavidmackenzie/wazm/artifact"
	"github.com/andrewdavidmackenzie/wazm/errors"
	"github.com/andrewdavidmackenzie/wazm/transform"
	"github.com/andrewdavidmackenzie/wazm/wasm"
)

// Dispatcher binds the module codec, the transform pipeline, and the
// compression codecs into the two whole-file operations: module bytes to
// artifact bytes, and back.
type Dispatcher struct {
	codecs   *Registry
	pipeline *transform.Pipeline
}

// NewDispatcher builds a dispatcher. Nil arguments select the default
// registry and the default transform pipeline.
func NewDispatcher(codecs *Registry, pipeline *transform.Pipeline) *Dispatcher {
	if codecs == nil {
		codecs = DefaultRegistry()
	}
	if pipeline == nil {
		pipeline = transform.Default()
	}
	return &Dispatcher{codecs: codecs, pipeline: pipeline}
}

// Codecs returns the dispatcher's codec registry.
func (d *Dispatcher) Codecs() *Registry { return d.codecs }

// CompressModule rewrites each section with the best applicable transform,
// packs the streams into an image, and compresses the image with the named
// codec. The artifact records which transform rewrote each section.
func (d *Dispatcher) CompressModule(m *wasm.Module, tool string) (*artifact.Artifact, error) {
	c, err := d.codecs.Lookup(tool)
	if err != nil {
		return nil, err
	}

	entries := make([]artifact.Entry, len(m.Sections))
	payloads := make([][]byte, len(m.Sections))
	for i, s := range m.Sections {
		tid, out := d.pipeline.Apply(s)
		entries[i] = artifact.Entry{SectionID: s.ID, TransformID: tid}
		payloads[i] = out
	}

	image, err := c.Compress(artifact.BuildImage(payloads))
	if err != nil {
		return nil, errors.ToolFailure(errors.PhaseCompress, tool, err, "compressing section image")
	}

	return &artifact.Artifact{
		Tool:          tool,
		ModuleVersion: m.Version,
		Entries:       entries,
		Image:         image,
	}, nil
}

// DecompressArtifact reconstructs the module from an artifact. The codec is
// chosen by the tool name the artifact records, and every section rewrite
// is undone with the transform recorded next to it.
func (d *Dispatcher) DecompressArtifact(a *artifact.Artifact) (*wasm.Module, error) {
	c, err := d.codecs.Lookup(a.Tool)
	if err != nil {
		return nil, err
	}

	image, err := c.Decompress(a.Image)
	if err != nil {
		return nil, errors.MalformedArtifact("decompressing section image", err)
	}

	payloads, err := artifact.SplitImage(image, len(a.Entries))
	if err != nil {
		return nil, err
	}

	sections := make([]wasm.Section, len(a.Entries))
	for i, e := range a.Entries {
		payload, err := d.pipeline.Revert(e.TransformID, payloads[i])
		if err != nil {
			return nil, err
		}
		sections[i] = wasm.Section{ID: e.SectionID, Payload: payload}
	}

	return &wasm.Module{Version: a.ModuleVersion, Sections: sections}, nil
}

// Compress parses module bytes and returns encoded artifact bytes.
func (d *Dispatcher) Compress(data []byte, tool string) ([]byte, error) {
	m, err := wasm.Decode(data)
	if err != nil {
		return nil, err
	}

	a, err := d.CompressModule(m, tool)
	if err != nil {
		return nil, err
	}
	out := a.Encode()

	Logger().Debug("compressed module",
		zap.String("tool", tool),
		zap.Int("module_size", len(data)),
		zap.Int("artifact_size", len(out)),
		zap.Int("sections", len(a.Entries)))
	return out, nil
}

// Decompress reconstructs the original module bytes from artifact bytes.
func (d *Dispatcher) Decompress(data []byte) ([]byte, error) {
	a, err := artifact.Decode(data)
	if err != nil {
		return nil, err
	}

	m, err := d.DecompressArtifact(a)
	if err != nil {
		return nil, err
	}
	return m.Encode(), nil
}
