package wazm

import (
	"github.com/andrewdavidmackenzie/wazm/backend"
)

// Compress parses module bytes and produces a compressed artifact using
// the named codec from the default registry. The artifact carries
// everything needed to restore the exact original bytes.
func Compress(module []byte, codec string) ([]byte, error) {
	return backend.NewDispatcher(nil, nil).Compress(module, codec)
}

// Decompress restores the original module bytes from a compressed
// artifact produced by Compress or by any tool writing the same format.
func Decompress(artifact []byte) ([]byte, error) {
	return backend.NewDispatcher(nil, nil).Decompress(artifact)
}
