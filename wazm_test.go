package wazm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewdavidmackenzie/wazm"
	"github.com/andrewdavidmackenzie/wazm/errors"
)

func sampleModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
		0x03, 0x02, 0x01, 0x00,
		0x0A, 0x04, 0x01, 0x02, 0x00, 0x0B,
	}
}

func TestRoundTrip(t *testing.T) {
	artifact, err := wazm.Compress(sampleModule(), "zstd")
	require.NoError(t, err)
	assert.NotEqual(t, sampleModule(), artifact)

	restored, err := wazm.Decompress(artifact)
	require.NoError(t, err)
	assert.Equal(t, sampleModule(), restored)
}

func TestCompressUnknownCodec(t *testing.T) {
	_, err := wazm.Compress(sampleModule(), "shrinkray")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnknownTool))
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := wazm.Decompress([]byte("not an artifact"))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindMalformedArtifact))
}
