package harness_test

import (
	"bytes"
	"context"
	goerrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewdavidmackenzie/wazm/backend"
	"github.com/andrewdavidmackenzie/wazm/errors"
	"github.com/andrewdavidmackenzie/wazm/harness"
)

// validModule is a minimal module any runtime accepts: one empty function.
func validModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
		0x03, 0x02, 0x01, 0x00,
		0x0A, 0x04, 0x01, 0x02, 0x00, 0x0B,
	}
}

// decodableModule parses fine but does not validate: the body leaves no
// i64 result and the data segment targets a memory that does not exist.
func decodableModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x07, 0x01, 0x60, 0x02, 0x7F, 0x7F, 0x01, 0x7E,
		0x03, 0x02, 0x01, 0x00,
		0x0A, 0x07, 0x01, 0x05, 0x00, 0x41, 0x07, 0x1A, 0x0B,
		0x0B, 0x09, 0x01, 0x00, 0x41, 0x08, 0x0B, 0x03, 0xAA, 0xBB, 0xCC,
	}
}

func writeCorpus(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
	return dir
}

func TestLoadCorpus(t *testing.T) {
	dir := writeCorpus(t, map[string][]byte{
		"b.wasm":         validModule(),
		"sub/a.wasm":     decodableModule(),
		"notes.txt":      []byte("ignored"),
		"module.wat":     []byte("(module)"),
		"sub/deep.wasms": []byte("ignored"),
	})

	entries, err := harness.LoadCorpus(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b.wasm", entries[0].Name)
	assert.Equal(t, filepath.Join("sub", "a.wasm"), entries[1].Name)
	assert.Equal(t, int64(len(validModule())), entries[0].Size)
}

func TestLoadCorpusMissingRoot(t *testing.T) {
	_, err := harness.LoadCorpus(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindIO))
}

func TestSweepVerifiesAllPairs(t *testing.T) {
	dir := writeCorpus(t, map[string][]byte{
		"a.wasm":     validModule(),
		"sub/b.wasm": decodableModule(),
	})
	entries, err := harness.LoadCorpus(dir)
	require.NoError(t, err)

	d := backend.NewDispatcher(nil, nil)
	sweep := &harness.Sweep{
		Tools:   backend.CodecTools(d, "zstd", "store"),
		Workers: 2,
	}
	results, err := sweep.Run(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Zero(t, harness.Failures(results))

	for _, r := range results {
		assert.Equal(t, harness.Verified, r.State, "%s/%s", r.Tool, r.Entry.Name)
		assert.True(t, r.State.Terminal())
		assert.Positive(t, r.Original)
		assert.Positive(t, r.Compressed)
		assert.NoError(t, r.Err)
	}

	// Tools in configuration order, entries in corpus order within each.
	assert.Equal(t, "zstd", results[0].Tool)
	assert.Equal(t, "a.wasm", results[0].Entry.Name)
	assert.Equal(t, "store", results[2].Tool)
}

func TestSweepContinuesPastMalformedEntry(t *testing.T) {
	dir := writeCorpus(t, map[string][]byte{
		"bad.wasm":  {0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00},
		"good.wasm": validModule(),
	})
	entries, err := harness.LoadCorpus(dir)
	require.NoError(t, err)

	d := backend.NewDispatcher(nil, nil)
	sweep := &harness.Sweep{Tools: backend.CodecTools(d, "store")}
	results, err := sweep.Run(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, harness.Failed, results[0].State)
	assert.True(t, errors.IsKind(results[0].Err, errors.KindMalformedModule))
	assert.Equal(t, harness.Verified, results[1].State)
	assert.Equal(t, 1, harness.Failures(results))
}

// corruptTool round-trips through a real codec tool, then flips one byte
// of the restored file.
type corruptTool struct {
	inner backend.Tool
}

func (c corruptTool) Name() string { return "corrupt" }

func (c corruptTool) Compress(ctx context.Context, path string) error {
	return c.inner.Compress(ctx, path)
}

func (c corruptTool) Decompress(ctx context.Context, path string) error {
	if err := c.inner.Decompress(ctx, path); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data[10] ^= 0xFF
	return os.WriteFile(path, data, 0o644)
}

func TestSweepReportsMismatchOffset(t *testing.T) {
	dir := writeCorpus(t, map[string][]byte{"a.wasm": validModule()})
	entries, err := harness.LoadCorpus(dir)
	require.NoError(t, err)

	d := backend.NewDispatcher(nil, nil)
	sweep := &harness.Sweep{
		Tools: []backend.Tool{corruptTool{inner: backend.NewCodecTool(d, "store")}},
	}
	results, err := sweep.Run(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, harness.Failed, results[0].State)
	var mm *errors.MismatchError
	require.True(t, goerrors.As(results[0].Err, &mm))
	assert.Equal(t, int64(10), mm.Offset)
}

func TestSweepTimedOutPairDoesNotStallOthers(t *testing.T) {
	dir := writeCorpus(t, map[string][]byte{"a.wasm": validModule()})
	entries, err := harness.LoadCorpus(dir)
	require.NoError(t, err)

	d := backend.NewDispatcher(nil, nil)
	stuck := backend.NewExecTool("stuck",
		[]string{"sh", "-c", "sleep 5"}, []string{"true"}, 100*time.Millisecond)
	sweep := &harness.Sweep{
		Tools:   []backend.Tool{stuck, backend.NewCodecTool(d, "store")},
		Workers: 2,
	}

	start := time.Now()
	results, err := sweep.Run(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Less(t, time.Since(start), 3*time.Second)

	assert.Equal(t, harness.Failed, results[0].State)
	assert.True(t, errors.IsTimeout(results[0].Err))
	assert.Equal(t, harness.Verified, results[1].State)
}

func TestSweepCancelledBeforeStart(t *testing.T) {
	dir := writeCorpus(t, map[string][]byte{"a.wasm": validModule()})
	entries, err := harness.LoadCorpus(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := backend.NewDispatcher(nil, nil)
	sweep := &harness.Sweep{Tools: backend.CodecTools(d, "store", "gzip")}
	results, err := sweep.Run(ctx, entries)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, harness.Verified, r.State)
	}
	assert.Equal(t, 2, harness.Failures(results))
}

func TestSweepRevalidation(t *testing.T) {
	dir := writeCorpus(t, map[string][]byte{
		"invalid.wasm": decodableModule(),
		"valid.wasm":   validModule(),
	})
	entries, err := harness.LoadCorpus(dir)
	require.NoError(t, err)

	d := backend.NewDispatcher(nil, nil)
	sweep := &harness.Sweep{
		Tools:      backend.CodecTools(d, "store"),
		Revalidate: true,
	}
	results, err := sweep.Run(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Byte equality holds for both, but only the valid module compiles.
	assert.Equal(t, harness.Failed, results[0].State)
	assert.True(t, errors.IsKind(results[0].Err, errors.KindMalformedModule))
	assert.Equal(t, harness.Verified, results[1].State)
}

func TestSweepOnResultCallback(t *testing.T) {
	dir := writeCorpus(t, map[string][]byte{
		"a.wasm": validModule(),
		"b.wasm": validModule(),
	})
	entries, err := harness.LoadCorpus(dir)
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []string
	d := backend.NewDispatcher(nil, nil)
	sweep := &harness.Sweep{
		Tools:   backend.CodecTools(d, "store", "s2"),
		Workers: 3,
		OnResult: func(r harness.Result) {
			mu.Lock()
			seen = append(seen, r.Tool+"/"+r.Entry.Name)
			mu.Unlock()
		},
	}
	results, err := sweep.Run(context.Background(), entries)
	require.NoError(t, err)
	assert.Len(t, results, 4)
	assert.Len(t, seen, 4)
}

func TestSweepEmptyCorpus(t *testing.T) {
	d := backend.NewDispatcher(nil, nil)
	sweep := &harness.Sweep{Tools: backend.CodecTools(d, "store")}
	results, err := sweep.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSweepNoTools(t *testing.T) {
	_, err := (&harness.Sweep{}).Run(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnknownTool))
}

func TestWriteReportPlain(t *testing.T) {
	results := []harness.Result{
		{
			Tool: "zstd", Entry: harness.Entry{Name: "a.wasm"},
			State: harness.Verified, Original: 1000, Compressed: 400,
			Elapsed: 1200 * time.Microsecond,
		},
		{
			Tool: "gzip", Entry: harness.Entry{Name: "a.wasm"},
			State: harness.Failed, Original: 1000,
			Err: errors.UnknownTool("gzip"),
		},
	}

	var buf bytes.Buffer
	harness.WriteReport(&buf, results)
	out := buf.String()

	assert.Contains(t, out, "TOOL")
	assert.Contains(t, out, "verified")
	assert.Contains(t, out, "40.0%")
	assert.Contains(t, out, "1/2 pairs verified")
	assert.Contains(t, out, "zstd: 1/1")
	assert.Contains(t, out, "gzip: 0/1")
	// No ANSI escapes when the writer is not a terminal.
	assert.NotContains(t, out, "\x1b[")
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "pending", harness.Pending.String())
	assert.Equal(t, "verified", harness.Verified.String())
	assert.False(t, harness.Decompressed.Terminal())
	assert.True(t, harness.Failed.Terminal())
}
