package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andrewdavidmackenzie/wazm/harness"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	spinStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// feedLines is how many finished pairs stay visible while running.
const feedLines = 10

type sweepModel struct {
	cancel     context.CancelFunc
	resultCh   chan harness.Result
	doneCh     chan sweepDoneMsg
	spin       spinner.Model
	feed       []harness.Result
	results    []harness.Result
	err        error
	total      int
	failed     int
	finished   bool
	cancelling bool
}

type resultMsg harness.Result

type sweepDoneMsg struct {
	results []harness.Result
	err     error
}

func newSweepModel(cancel context.CancelFunc, total int, resultCh chan harness.Result, doneCh chan sweepDoneMsg) *sweepModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinStyle
	return &sweepModel{
		cancel:   cancel,
		resultCh: resultCh,
		doneCh:   doneCh,
		spin:     sp,
		total:    total,
	}
}

func (m *sweepModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitResult, m.waitDone)
}

func (m *sweepModel) waitResult() tea.Msg {
	return resultMsg(<-m.resultCh)
}

func (m *sweepModel) waitDone() tea.Msg {
	return <-m.doneCh
}

func (m *sweepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancelling = true
			m.cancel()
			// The sweep winds down and delivers sweepDoneMsg.
			return m, nil
		}

	case resultMsg:
		m.feed = append(m.feed, harness.Result(msg))
		if harness.Result(msg).State != harness.Verified {
			m.failed++
		}
		return m, m.waitResult

	case sweepDoneMsg:
		m.finished = true
		m.results = msg.results
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *sweepModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("wazm verify") + "\n\n")

	switch {
	case m.finished:
		fmt.Fprintf(&b, "done: %d/%d pairs verified\n", len(m.feed)-m.failed, m.total)
	case m.cancelling:
		fmt.Fprintf(&b, "%s cancelling, waiting for running pairs\n\n", m.spin.View())
	default:
		fmt.Fprintf(&b, "%s %d/%d pairs, %d failed\n\n", m.spin.View(), len(m.feed), m.total, m.failed)
	}

	start := len(m.feed) - feedLines
	if start < 0 {
		start = 0
	}
	for _, r := range m.feed[start:] {
		line := fmt.Sprintf("%-10s %-30s %s", r.Tool, r.Entry.Name, r.State)
		st := passStyle
		if r.State != harness.Verified {
			st = failStyle
		}
		b.WriteString(st.Render(line) + "\n")
	}

	if !m.finished {
		b.WriteString(helpStyle.Render("\nq to cancel"))
	}
	return b.String()
}

// runInteractive drives the sweep under a bubbletea program, streaming
// per-pair completions into the view. The full report is printed by the
// caller after the program exits.
func runInteractive(ctx context.Context, sweep *harness.Sweep, entries []harness.Entry) ([]harness.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	total := len(sweep.Tools) * len(entries)
	resultCh := make(chan harness.Result, total)
	doneCh := make(chan sweepDoneMsg, 1)
	sweep.OnResult = func(r harness.Result) { resultCh <- r }

	go func() {
		results, err := sweep.Run(ctx, entries)
		doneCh <- sweepDoneMsg{results: results, err: err}
	}()

	p := tea.NewProgram(newSweepModel(cancel, total, resultCh, doneCh))
	out, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := out.(*sweepModel)
	return final.results, final.err
}
