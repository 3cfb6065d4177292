package harness

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	reportHeaderStyle = lipgloss.NewStyle().Bold(true)
	passStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	failStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	detailStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// Styled reports whether w is a terminal worth styling.
func Styled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// WriteReport renders one line per pair plus a per-tool summary. Output
// is colored only when w is a terminal.
func WriteReport(w io.Writer, results []Result) {
	styled := Styled(w)
	render := func(st lipgloss.Style, s string) string {
		if !styled {
			return s
		}
		return st.Render(s)
	}

	header := fmt.Sprintf("%-10s %-30s %-13s %10s %12s %8s %10s",
		"TOOL", "MODULE", "STATE", "ORIGINAL", "COMPRESSED", "RATIO", "TIME")
	fmt.Fprintln(w, render(reportHeaderStyle, header))

	for _, r := range results {
		comp, ratio := "-", "-"
		if r.Compressed > 0 {
			comp = fmt.Sprintf("%d", r.Compressed)
			ratio = fmt.Sprintf("%.1f%%", r.Ratio()*100)
		}
		line := fmt.Sprintf("%-10s %-30s %-13s %10d %12s %8s %10s",
			r.Tool, r.Entry.Name, r.State, r.Original, comp, ratio,
			r.Elapsed.Round(100*time.Microsecond))
		st := passStyle
		if r.State != Verified {
			st = failStyle
		}
		fmt.Fprintln(w, render(st, line))
		if r.Err != nil {
			fmt.Fprintln(w, render(detailStyle, "           "+r.Err.Error()))
		}
	}

	verified := len(results) - Failures(results)
	fmt.Fprintln(w)
	fmt.Fprintln(w, render(reportHeaderStyle,
		fmt.Sprintf("%d/%d pairs verified", verified, len(results))))
	for _, line := range toolSummary(results) {
		fmt.Fprintln(w, "  "+line)
	}
}

// toolSummary aggregates verified counts per tool, sorted by tool name.
func toolSummary(results []Result) []string {
	type tally struct{ verified, total int }
	byTool := map[string]*tally{}
	for _, r := range results {
		t := byTool[r.Tool]
		if t == nil {
			t = &tally{}
			byTool[r.Tool] = t
		}
		t.total++
		if r.State == Verified {
			t.verified++
		}
	}
	names := make([]string, 0, len(byTool))
	for name := range byTool {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		t := byTool[name]
		lines = append(lines, fmt.Sprintf("%s: %d/%d", name, t.verified, t.total))
	}
	return lines
}
