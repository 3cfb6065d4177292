package backend

import (
	"bytes"
	"context"
	goerrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/andrewdavidmackenzie/wazm/errors"
)

// stderrTailLimit caps how much captured stderr goes into an error detail.
const stderrTailLimit = 512

// ExecTool drives an external compressor process. The command receives the
// file path and must rewrite the file in place; exit status 0 means
// success and anything else is failure. Stderr is captured into the error
// detail but never interpreted.
//
// Each argv slot equal to "{}" is replaced with the file path. When no
// slot matches, the path is appended as the final argument.
type ExecTool struct {
	name       string
	compress   []string
	decompress []string
	timeout    time.Duration
}

// NewExecTool builds an external tool from its two argv templates. A zero
// timeout means invocations wait as long as the caller's context allows.
func NewExecTool(name string, compress, decompress []string, timeout time.Duration) *ExecTool {
	return &ExecTool{
		name:       name,
		compress:   append([]string(nil), compress...),
		decompress: append([]string(nil), decompress...),
		timeout:    timeout,
	}
}

// ParseExecSpec builds an external tool from a one-line spec:
//
//	name|compress command|decompress command
//
// Commands are split on whitespace; there is no shell quoting. Use "{}"
// where the file path belongs.
func ParseExecSpec(spec string, timeout time.Duration) (*ExecTool, error) {
	parts := strings.Split(spec, "|")
	if len(parts) != 3 {
		return nil, fmt.Errorf("exec spec %q: want name|compress command|decompress command", spec)
	}
	name := strings.TrimSpace(parts[0])
	compress := strings.Fields(parts[1])
	decompress := strings.Fields(parts[2])
	if name == "" || len(compress) == 0 || len(decompress) == 0 {
		return nil, fmt.Errorf("exec spec %q: empty name or command", spec)
	}
	return NewExecTool(name, compress, decompress, timeout), nil
}

func (t *ExecTool) Name() string { return t.name }

func (t *ExecTool) Compress(ctx context.Context, path string) error {
	return t.run(ctx, errors.PhaseCompress, t.compress, path)
}

func (t *ExecTool) Decompress(ctx context.Context, path string) error {
	return t.run(ctx, errors.PhaseDecompress, t.decompress, path)
}

func (t *ExecTool) run(ctx context.Context, phase errors.Phase, argv []string, path string) error {
	if len(argv) == 0 {
		return errors.ToolFailure(phase, t.name, nil, "no command configured")
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	args := substitutePath(argv, path)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err == nil {
		Logger().Debug("external tool finished",
			zap.String("tool", t.name),
			zap.String("phase", string(phase)),
			zap.Duration("elapsed", elapsed))
		return nil
	}

	if goerrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.ToolTimeout(phase, t.name, t.timeout)
	}
	if ctx.Err() != nil {
		return errors.ToolFailure(phase, t.name, ctx.Err(), "invocation cancelled")
	}

	return errors.ToolFailure(phase, t.name, err, stderrTail(stderr.Bytes()))
}

func substitutePath(argv []string, path string) []string {
	out := make([]string, len(argv))
	replaced := false
	for i, a := range argv {
		if a == "{}" {
			out[i] = path
			replaced = true
		} else {
			out[i] = a
		}
	}
	if !replaced {
		out = append(out, path)
	}
	return out
}

func stderrTail(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > stderrTailLimit {
		s = "..." + s[len(s)-stderrTailLimit:]
	}
	return s
}
