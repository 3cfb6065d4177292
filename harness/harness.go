package harness

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/andrewdavidmackenzie/wazm/errors"
)

// State tracks how far a (tool, corpus entry) pair has progressed. The
// two terminal states are Verified and Failed.
type State int

const (
	Pending State = iota
	Decoded
	Compressed
	Decompressed
	Verified
	Failed
)

var stateNames = [...]string{
	"pending", "decoded", "compressed", "decompressed", "verified", "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether the pair is finished.
func (s State) Terminal() bool {
	return s == Verified || s == Failed
}

// Entry is one corpus module, identified by its path relative to the
// corpus root. The file itself is never modified; pairs work on scratch
// copies.
type Entry struct {
	Name string
	Path string
	Size int64
}

// LoadCorpus walks root and returns every .wasm file under it, sorted by
// name so sweeps are deterministic.
func LoadCorpus(root string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".wasm") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = d.Name()
		}
		entries = append(entries, Entry{Name: rel, Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, errors.IOFailure(errors.PhaseVerify, root, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Result is the outcome of one (tool, entry) pair. A pair that never got
// scheduled before cancellation stays Pending with the context error
// attached.
type Result struct {
	Tool  string
	Entry Entry
	State State
	Err   error

	Original   int
	Compressed int
	Elapsed    time.Duration
}

// Ratio returns compressed size over original size, or zero before the
// compress stage produced anything.
func (r Result) Ratio() float64 {
	if r.Original == 0 || r.Compressed == 0 {
		return 0
	}
	return float64(r.Compressed) / float64(r.Original)
}

// Failures counts pairs that did not reach Verified.
func Failures(results []Result) int {
	n := 0
	for _, r := range results {
		if r.State != Verified {
			n++
		}
	}
	return n
}
