package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/andrewdavidmackenzie/wazm"
	"github.com/andrewdavidmackenzie/wazm/analysis"
	"github.com/andrewdavidmackenzie/wazm/backend"
	"github.com/andrewdavidmackenzie/wazm/transform"
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#7D56F4"))

func main() {
	var (
		decompress = flag.Bool("d", false, "Decompress an artifact back into the module")
		analyze    = flag.Bool("a", false, "Print the analysis report instead of compressing")
		codec      = flag.String("c", "zstd", "Compression codec (see -codecs)")
		listCodecs = flag.Bool("codecs", false, "List available codecs and exit")
		output     = flag.String("o", "", "Write output here instead of in place")
		verbose    = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if *listCodecs {
		for _, name := range backend.DefaultRegistry().Names() {
			fmt.Println(name)
		}
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: wazm [-c codec] [-o out] [-v] <file.wasm>")
		fmt.Fprintln(os.Stderr, "       wazm -d [-o out] [-v] <file.wz>")
		fmt.Fprintln(os.Stderr, "       wazm -a <file.wasm>")
		os.Exit(1)
	}

	installLogger(*verbose)

	if err := run(flag.Arg(0), *output, *codec, *decompress, *analyze); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// installLogger wires a real logger into the library packages. Transform
// fallback warnings always reach stderr; -v adds the debug detail.
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
	analysis.SetLogger(logger.Named("analysis"))
}

func run(path, output, codec string, decompress, analyze bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	if analyze {
		return report(path, data)
	}

	var out []byte
	if decompress {
		out, err = wazm.Decompress(data)
	} else {
		out, err = wazm.Compress(data, codec)
	}
	if err != nil {
		return err
	}

	// Default is in place so the binary satisfies the external tool
	// contract.
	target := output
	if target == "" {
		target = path
	}
	return os.WriteFile(target, out, 0o644)
}

func report(path string, data []byte) error {
	rep, err := analysis.AnalyzeBytes(data, analysis.All())
	if err != nil {
		return err
	}
	title := fmt.Sprintf("wazm analysis: %s", path)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		title = titleStyle.Render(title)
	}
	fmt.Println(title)
	fmt.Print(rep.String())
	return nil
}
