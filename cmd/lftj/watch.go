package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/codenerd/lftjengine/internal/engine"
)

var watchCmd = &cobra.Command{
	Use:   "watch [s4|s5]",
	Short: "Interactively insert/delete tuples and watch deltas propagate live",
	Long: `watch builds one of the spec.md §8 example queries and opens a small
terminal UI: type a line of the form +relation:atom1,atom2,... to insert a
tuple or -relation:atom1,atom2,... to delete one, press enter to flush it
through the query graph, and watch a history of the applied edits and the
query's current materialized result.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ex, ok := examples[args[0]]
	if !ok {
		return fmt.Errorf("unknown example %q (known: %s)", args[0], strings.Join(knownExampleNames(), ", "))
	}
	e, handle, err := setup(ex)
	if err != nil {
		return fmt.Errorf("failed to set up example %q: %w", args[0], err)
	}

	m := newWatchModel(ex.name, e, handle)
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}

var (
	watchHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	watchAddStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	watchRemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	watchErrStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	watchMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// watchModel is a minimal hand-rolled tea.Model (no bubbles components,
// only bubbletea + lipgloss, per the module's wired dependency set): a
// single-line input buffer, a scrolling log of applied deltas, and the
// query's current result set.
type watchModel struct {
	queryName string
	e         *engine.Engine
	handle    *engine.QueryHandle

	input string
	log   []string
	err   string
}

func newWatchModel(queryName string, e *engine.Engine, handle *engine.QueryHandle) *watchModel {
	return &watchModel{queryName: queryName, e: e, handle: handle}
}

func (m *watchModel) Init() tea.Cmd { return nil }

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		m.applyLine(strings.TrimSpace(m.input))
		m.input = ""
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes:
		m.input += string(keyMsg.Runes)
	case tea.KeySpace:
		m.input += " "
	}
	return m, nil
}

// applyLine parses a +/- line, applies it, flushes, and records the
// applied edit into the log (or sets m.err on failure).
func (m *watchModel) applyLine(line string) {
	m.err = ""
	if line == "" {
		return
	}
	sign := line[0]
	if sign != '+' && sign != '-' {
		m.err = fmt.Sprintf("line must start with + or -: %q", line)
		return
	}
	relation, tuple, err := parseInsertSpec(line[1:])
	if err != nil {
		m.err = err.Error()
		return
	}

	if sign == '+' {
		err = m.e.Insert(relation, tuple)
	} else {
		err = m.e.Delete(relation, tuple)
	}
	if err != nil {
		m.err = err.Error()
		return
	}
	if err := m.e.FlushAll(); err != nil {
		m.err = err.Error()
		return
	}

	verb := "inserted into"
	if sign == '-' {
		verb = "deleted from"
	}
	m.log = append(m.log, fmt.Sprintf("%s %s %s", tuple.String(), verb, relation))
	if len(m.log) > 20 {
		m.log = m.log[len(m.log)-20:]
	}
}

func (m *watchModel) View() string {
	var b strings.Builder
	b.WriteString(watchHeaderStyle.Render(fmt.Sprintf("lftj watch — %s", m.queryName)))
	b.WriteString("\n")
	b.WriteString(watchMutedStyle.Render("type +relation:a,b or -relation:a,b then Enter; Esc/Ctrl-C to quit"))
	b.WriteString("\n\n")

	results, ok := m.handle.GetResults()
	if ok {
		b.WriteString(fmt.Sprintf("result (%d):\n", len(results)))
		for _, t := range sortedTuples(results) {
			b.WriteString(watchAddStyle.Render(t.String()))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(watchMutedStyle.Render("query output does not materialize"))
		b.WriteString("\n")
	}

	b.WriteString("\nhistory:\n")
	for _, line := range m.log {
		b.WriteString(watchMutedStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n> " + m.input)
	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(watchErrStyle.Render("error: " + m.err))
	}
	return b.String()
}
