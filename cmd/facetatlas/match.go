// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/facetatlas/facetatlas/internal/scene"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

// --- lipgloss styles ---

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
)

type matchKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Skip   key.Binding
	Quit   key.Binding
}

func (k matchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Skip, k.Quit}
}

func (k matchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var matchKeys = matchKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Skip:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// matchDecision is the answer given for one entity.
type matchDecision struct {
	Entity  string
	Subject string
}

// matchModel steps through the pending candidates one entity at a time.
type matchModel struct {
	candidates []scene.Candidate
	idx        int
	cursor     int
	decisions  []matchDecision
	done       bool
	help       help.Model
}

func newMatchModel(candidates []scene.Candidate) matchModel {
	return matchModel{
		candidates: candidates,
		done:       len(candidates) == 0,
		help:       help.New(),
	}
}

// choices returns the subjects offered for the current entity followed by
// the decline answer.
func (m matchModel) choices() []string {
	if m.idx >= len(m.candidates) {
		return nil
	}
	return append(append([]string(nil), m.candidates[m.idx].Subjects...), scene.NoMatch)
}

func (m matchModel) Init() tea.Cmd {
	return nil
}

func (m matchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, matchKeys.Quit):
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, matchKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, matchKeys.Down):
		if m.cursor < len(m.choices())-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, matchKeys.Select):
		m.decisions = append(m.decisions, matchDecision{
			Entity:  m.candidates[m.idx].Entity,
			Subject: m.choices()[m.cursor],
		})
		return m.advance()
	case key.Matches(keyMsg, matchKeys.Skip):
		return m.advance()
	}
	return m, nil
}

func (m matchModel) advance() (tea.Model, tea.Cmd) {
	m.idx++
	m.cursor = 0
	if m.idx >= len(m.candidates) {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m matchModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("  Scene matching  ") + "\n\n")

	if m.idx >= len(m.candidates) {
		b.WriteString(successStyle.Render(fmt.Sprintf("%d of %d entities answered", len(m.decisions), len(m.candidates))) + "\n")
		return boxStyle.Render(b.String())
	}

	c := m.candidates[m.idx]
	b.WriteString(promptStyle.Render(fmt.Sprintf("%d/%d: which subject does %q show?", m.idx+1, len(m.candidates), c.Entity)) + "\n\n")
	for i, choice := range m.choices() {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("  > "+choice) + "\n")
		} else {
			b.WriteString(dimStyle.Render("    "+choice) + "\n")
		}
	}
	b.WriteString("\n" + m.help.View(matchKeys))

	return boxStyle.Render(b.String())
}

func (c *cli) newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Interactively confirm fuzzy scene matches",
		Long: "Synchronize the scene, then pick the ontology subject each unmatched\n" +
			"entity displays. Answers are saved to scene.bindings_path.",
		RunE: c.runMatch,
	}

	cmd.Flags().String("scene", "", "scene file to match (default scene.path)")

	return cmd
}

func (c *cli) runMatch(cmd *cobra.Command, _ []string) error {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !isTerminal(f) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(),
			"facetatlas match requires an interactive terminal.\n"+
				"Use 'facetatlas sync' to list candidates and 'facetatlas bind' to confirm them.")
		return faerr.New(faerr.CodeCLISetupFailure, "facetatlas match: not an interactive terminal")
	}

	cfg, logger, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	scenePath, _ := cmd.Flags().GetString("scene")
	app, err := WireApp(cmd.Context(), cfg, scenePath, logger)
	if err != nil {
		return err
	}
	if _, err := app.Session.Synchronize(cmd.Context()); err != nil {
		return err
	}

	pending := app.Session.Pending()
	if len(pending) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no candidates awaiting confirmation")
		return app.SaveBindings()
	}

	final, err := tea.NewProgram(newMatchModel(pending), tea.WithAltScreen()).Run()
	if err != nil {
		return faerr.Errorf(faerr.CodeCLISetupFailure, "match picker error: %w", err)
	}
	fm, ok := final.(matchModel)
	if !ok {
		return faerr.New(faerr.CodeCLISetupFailure, "unexpected model type after picker")
	}

	bound, err := applyDecisions(app, fm.decisions)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "bound %d of %d answered entities\n", bound, len(fm.decisions))
	return nil
}

// applyDecisions confirms each answer and saves the bindings.
func applyDecisions(app *App, decisions []matchDecision) (int, error) {
	bound := 0
	for _, d := range decisions {
		ok, err := app.Session.Confirm(d.Subject, d.Entity)
		if err != nil {
			return bound, err
		}
		if ok {
			bound++
		}
	}
	return bound, app.SaveBindings()
}

// isTerminal reports whether f is a terminal file descriptor.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
