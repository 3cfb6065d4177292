package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/andrewdavidmackenzie/wazm/backend"
	"github.com/andrewdavidmackenzie/wazm/harness"
	"github.com/andrewdavidmackenzie/wazm/transform"
)

// execList collects repeated -exec flags.
type execList []string

func (e *execList) String() string { return strings.Join(*e, " ") }

func (e *execList) Set(v string) error {
	*e = append(*e, v)
	return nil
}

func main() {
	var (
		tools       = flag.String("tools", "store,zstd,gzip,s2,lz4,brotli", "Comma-separated built-in codecs to verify")
		workers     = flag.Int("workers", 0, "Worker goroutines (default: number of CPUs)")
		timeout     = flag.Duration("timeout", 30*time.Second, "Per-invocation timeout for external tools")
		revalidate  = flag.Bool("revalidate", false, "Compile restored modules after byte comparison")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Enable debug logging")
	)
	var execs execList
	flag.Var(&execs, "exec", "External tool spec 'name|compress cmd|decompress cmd' ({} is the file path; repeatable)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: wazm-verify [-tools list] [-exec spec] [-workers n] [-timeout d] [-revalidate] [-i] [-v] <corpus dir>")
		os.Exit(2)
	}

	// Log warnings by default, but never into a live interactive view.
	if !*interactive || *verbose {
		installLogger(*verbose)
	}

	toolSet, err := buildTools(*tools, execs, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	entries, err := harness.LoadCorpus(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "no .wasm modules under %s\n", flag.Arg(0))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sweep := &harness.Sweep{
		Tools:      toolSet,
		Workers:    *workers,
		Revalidate: *revalidate,
	}

	var results []harness.Result
	var runErr error
	if *interactive {
		results, runErr = runInteractive(ctx, sweep, entries)
	} else {
		results, runErr = sweep.Run(ctx, entries)
	}

	harness.WriteReport(os.Stdout, results)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Sweep aborted: %v\n", runErr)
	}
	if runErr != nil || harness.Failures(results) > 0 {
		os.Exit(1)
	}
}

func installLogger(verbose bool) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return
	}
	transform.SetLogger(logger.Named("transform"))
	backend.SetLogger(logger.Named("backend"))
	harness.SetLogger(logger.Named("harness"))
}

func buildTools(names string, execs []string, timeout time.Duration) ([]backend.Tool, error) {
	d := backend.NewDispatcher(nil, nil)
	var out []backend.Tool
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := d.Codecs().Lookup(name); err != nil {
			return nil, err
		}
		out = append(out, backend.NewCodecTool(d, name))
	}
	for _, spec := range execs {
		tool, err := backend.ParseExecSpec(spec, timeout)
		if err != nil {
			return nil, err
		}
		out = append(out, tool)
	}
	return out, nil
}
