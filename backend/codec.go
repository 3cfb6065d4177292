package backend

import (
	"bytes"
	"io"
	"sort"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/andrewdavidmackenzie/wazm/errors"
)

// Codec compresses and decompresses byte streams in memory. Implementations
// are stateless; both directions may be called concurrently.
type Codec interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// Store copies bytes through unchanged. It exists as the ratio baseline and
// as the codec of last resort when every real backend misbehaves on an
// input.
type Store struct{}

func (Store) Name() string { return "store" }

func (Store) Compress(data []byte) ([]byte, error) {
	return append([]byte(nil), data...), nil
}

func (Store) Decompress(data []byte) ([]byte, error) {
	return append([]byte(nil), data...), nil
}

// Zstd compresses with the zstd format at its best ratio setting.
type Zstd struct{}

func (Zstd) Name() string { return "zstd" }

func (Zstd) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func (Zstd) Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// Gzip compresses with DEFLATE in a gzip wrapper at maximum compression.
type Gzip struct{}

func (Gzip) Name() string { return "gzip" }

func (Gzip) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Gzip) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// S2 compresses with the snappy-compatible s2 format, tuned for ratio over
// speed.
type S2 struct{}

func (S2) Name() string { return "s2" }

func (S2) Compress(data []byte) ([]byte, error) {
	return s2.EncodeBest(nil, data), nil
}

func (S2) Decompress(data []byte) ([]byte, error) {
	return s2.Decode(nil, data)
}

// LZ4 compresses with the lz4 frame format at its highest level.
type LZ4 struct{}

func (LZ4) Name() string { return "lz4" }

func (LZ4) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.CompressionLevelOption(lz4.Level9)); err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (LZ4) Decompress(data []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}

// Brotli compresses with brotli at maximum quality.
type Brotli struct{}

func (Brotli) Name() string { return "brotli" }

func (Brotli) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Brotli) Decompress(data []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
}

// Registry maps codec names to implementations. The name stored in an
// artifact is resolved here during decompression, so registrations must be
// stable across the builds that write and read an artifact.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register adds or replaces a codec under its own name.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.Name()] = c
}

// Lookup resolves a codec name recorded in an artifact or given on a
// command line.
func (r *Registry) Lookup(name string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[name]
	if !ok {
		return nil, errors.UnknownTool(name)
	}
	return c, nil
}

// Names returns the registered codec names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with every built-in codec.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, c := range []Codec{Store{}, Gzip{}, Zstd{}, S2{}, LZ4{}, Brotli{}} {
		r.Register(c)
	}
	return r
}
