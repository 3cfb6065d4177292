package harness

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/andrewdavidmackenzie/wazm/backend"
	"github.com/andrewdavidmackenzie/wazm/errors"
	"github.com/andrewdavidmackenzie/wazm/wasm"
)

// Sweep drives every configured tool over every corpus entry. The corpus
// is shared read-only; each pair works on its own scratch copy, and the
// pair's stages run strictly in order.
type Sweep struct {
	Tools      []backend.Tool
	Workers    int    // worker goroutines, NumCPU when zero
	Revalidate bool   // compile restored bytes after byte equality
	Scratch    string // scratch directory, a temp dir when empty

	// OnResult is called from worker goroutines as pairs finish. It must
	// be safe for concurrent use.
	OnResult func(Result)
}

type job struct {
	idx   int
	tool  backend.Tool
	entry Entry
}

// Run executes all pairs and returns one Result per pair, tools in
// configuration order and entries in corpus order within each tool. The
// returned error covers setup failures and cancellation; per-pair
// failures live in the results.
func (s *Sweep) Run(ctx context.Context, entries []Entry) ([]Result, error) {
	if len(s.Tools) == 0 {
		return nil, errors.New(errors.PhaseVerify, errors.KindUnknownTool).
			Detail("no tools configured").Build()
	}

	scratch := s.Scratch
	if scratch == "" {
		dir, err := os.MkdirTemp("", "wazm-verify-*")
		if err != nil {
			return nil, errors.IOFailure(errors.PhaseVerify, "", err)
		}
		defer os.RemoveAll(dir)
		scratch = dir
	}

	pairs := make([]job, 0, len(s.Tools)*len(entries))
	for _, tool := range s.Tools {
		for _, e := range entries {
			pairs = append(pairs, job{idx: len(pairs), tool: tool, entry: e})
		}
	}
	results := make([]Result, len(pairs))

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}

	jobs := make(chan job)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := s.runPair(ctx, scratch, j)
				results[j.idx] = res
				if s.OnResult != nil {
					s.OnResult(res)
				}
			}
		}()
	}

feed:
	for _, j := range pairs {
		select {
		case jobs <- j:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i := range results {
		if results[i].Tool == "" {
			results[i] = Result{
				Tool:  pairs[i].tool.Name(),
				Entry: pairs[i].entry,
				State: Pending,
				Err:   ctx.Err(),
			}
		}
	}
	return results, ctx.Err()
}

func (s *Sweep) runPair(ctx context.Context, scratch string, j job) Result {
	res := Result{Tool: j.tool.Name(), Entry: j.entry, State: Pending}
	start := time.Now()
	res.Err = s.drive(ctx, scratch, j, &res)
	res.Elapsed = time.Since(start)
	if res.Err != nil {
		res.State = Failed
		Logger().Debug("pair failed",
			zap.String("tool", res.Tool),
			zap.String("module", res.Entry.Name),
			zap.String("state", res.State.String()),
			zap.Error(res.Err))
		return res
	}
	res.State = Verified
	Logger().Debug("pair verified",
		zap.String("tool", res.Tool),
		zap.String("module", res.Entry.Name),
		zap.Int("original", res.Original),
		zap.Int("compressed", res.Compressed),
		zap.Duration("elapsed", res.Elapsed))
	return res
}

// drive runs one pair's stages, advancing res.State as each one lands.
// The scratch copy is compressed and decompressed in place, then compared
// against the corpus entry's canonical bytes.
func (s *Sweep) drive(ctx context.Context, scratch string, j job, res *Result) error {
	canonical, err := os.ReadFile(j.entry.Path)
	if err != nil {
		return errors.IOFailure(errors.PhaseVerify, j.entry.Path, err)
	}
	res.Original = len(canonical)

	if _, err := wasm.Decode(canonical); err != nil {
		return err
	}
	res.State = Decoded

	name := fmt.Sprintf("%03d-%s-%s", j.idx, j.tool.Name(), filepath.Base(j.entry.Name))
	path := filepath.Join(scratch, name)
	if err := os.WriteFile(path, canonical, 0o644); err != nil {
		return errors.IOFailure(errors.PhaseVerify, path, err)
	}
	defer os.Remove(path)

	if err := j.tool.Compress(ctx, path); err != nil {
		return err
	}
	res.State = Compressed
	if info, err := os.Stat(path); err == nil {
		res.Compressed = int(info.Size())
	}

	if err := j.tool.Decompress(ctx, path); err != nil {
		return err
	}
	res.State = Decompressed

	restored, err := os.ReadFile(path)
	if err != nil {
		return errors.IOFailure(errors.PhaseVerify, path, err)
	}
	if !bytes.Equal(canonical, restored) {
		return errors.NewMismatch(canonical, restored)
	}
	if s.Revalidate {
		if err := revalidate(ctx, restored); err != nil {
			return err
		}
	}
	return nil
}
