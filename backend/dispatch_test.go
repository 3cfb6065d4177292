package backend_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewdavidmackenzie/wazm/artifact"
	"github.com/andrewdavidmackenzie/wazm/backend"
	"github.com/andrewdavidmackenzie/wazm/errors"
	"github.com/andrewdavidmackenzie/wazm/transform"
	"github.com/andrewdavidmackenzie/wazm/wasm"
)

// sampleModule is a well-formed module with type, function, code, and data
// sections, so every built-in transform gets something to chew on.
func sampleModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x07, 0x01, 0x60, 0x02, 0x7F, 0x7F, 0x01, 0x7E,
		0x03, 0x02, 0x01, 0x00,
		0x0A, 0x07, 0x01, 0x05, 0x00, 0x41, 0x07, 0x1A, 0x0B,
		0x0B, 0x09, 0x01, 0x00, 0x41, 0x08, 0x0B, 0x03, 0xAA, 0xBB, 0xCC,
	}
}

func TestDispatcherRoundTrip(t *testing.T) {
	d := backend.NewDispatcher(nil, nil)
	module := sampleModule()

	for _, tool := range d.Codecs().Names() {
		t.Run(tool, func(t *testing.T) {
			art, err := d.Compress(module, tool)
			require.NoError(t, err)

			back, err := d.Decompress(art)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(module, back),
				"%s did not reproduce the module byte for byte", tool)
		})
	}
}

func TestDispatcherModuleLevel(t *testing.T) {
	d := backend.NewDispatcher(nil, nil)
	m, err := wasm.Decode(sampleModule())
	require.NoError(t, err)

	a, err := d.CompressModule(m, "s2")
	require.NoError(t, err)
	assert.Equal(t, "s2", a.Tool)

	back, err := d.DecompressArtifact(a)
	require.NoError(t, err)
	assert.Equal(t, sampleModule(), back.Encode())
}

func TestDispatcherRecordsTransforms(t *testing.T) {
	d := backend.NewDispatcher(nil, nil)

	art, err := d.Compress(sampleModule(), "store")
	require.NoError(t, err)

	a, err := artifact.Decode(art)
	require.NoError(t, err)
	require.Len(t, a.Entries, 4)

	assert.Equal(t, "store", a.Tool)
	assert.Equal(t, artifact.Entry{SectionID: wasm.SectionType, TransformID: transform.IdentityID}, a.Entries[0])
	assert.Equal(t, artifact.Entry{SectionID: wasm.SectionFunction, TransformID: transform.IndexDeltaID}, a.Entries[1])
	assert.Equal(t, artifact.Entry{SectionID: wasm.SectionCode, TransformID: transform.CodeSplitID}, a.Entries[2])
	assert.Equal(t, artifact.Entry{SectionID: wasm.SectionData, TransformID: transform.DataSplitID}, a.Entries[3])
}

func TestDispatcherUnknownTool(t *testing.T) {
	d := backend.NewDispatcher(nil, nil)

	_, err := d.Compress(sampleModule(), "nope")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnknownTool))
}

func TestDispatcherRejectsMalformedModule(t *testing.T) {
	d := backend.NewDispatcher(nil, nil)

	_, err := d.Compress([]byte{0x00, 0x61, 0x73}, "store")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindMalformedModule))
}

func TestDispatcherRejectsCorruptImage(t *testing.T) {
	d := backend.NewDispatcher(nil, nil)

	art, err := d.Compress(sampleModule(), "zstd")
	require.NoError(t, err)

	a, err := artifact.Decode(art)
	require.NoError(t, err)
	require.NotEmpty(t, a.Image)
	a.Image[len(a.Image)/2] ^= 0xFF

	_, err = d.Decompress(a.Encode())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindMalformedArtifact))
}

func TestDispatcherDecompressUnknownRecordedTool(t *testing.T) {
	d := backend.NewDispatcher(nil, nil)

	a := &artifact.Artifact{Tool: "nope", ModuleVersion: 1}
	_, err := d.Decompress(a.Encode())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnknownTool))
}

func TestDispatcherDecompressUnknownTransformID(t *testing.T) {
	d := backend.NewDispatcher(nil, nil)

	a := &artifact.Artifact{
		Tool:          "store",
		ModuleVersion: 1,
		Entries:       []artifact.Entry{{SectionID: wasm.SectionType, TransformID: 0x63}},
		Image:         artifact.BuildImage([][]byte{{0x00}}),
	}

	_, err := d.Decompress(a.Encode())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnknownTransform))
}

func TestDispatcherPreservesOpaqueSections(t *testing.T) {
	d := backend.NewDispatcher(nil, nil)

	// A custom section named "x" and a section kind no decoder knows about.
	// Both travel through the pipeline as identity-transformed opaque bytes.
	module := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x00, 0x05, 0x01, 0x78, 0xDE, 0xAD, 0xBE,
		0x3F, 0x02, 0xCA, 0xFE,
	}

	art, err := d.Compress(module, "lz4")
	require.NoError(t, err)

	a, err := artifact.Decode(art)
	require.NoError(t, err)
	require.Len(t, a.Entries, 2)
	assert.Equal(t, transform.IdentityID, a.Entries[0].TransformID)
	assert.Equal(t, transform.IdentityID, a.Entries[1].TransformID)

	back, err := d.Decompress(art)
	require.NoError(t, err)
	assert.Equal(t, module, back)
}

func TestDispatcherEmptyModule(t *testing.T) {
	d := backend.NewDispatcher(nil, nil)
	module := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

	art, err := d.Compress(module, "gzip")
	require.NoError(t, err)

	back, err := d.Decompress(art)
	require.NoError(t, err)
	assert.Equal(t, module, back)
}
