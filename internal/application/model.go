package application

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/scenecsv/internal/core"
)

// Model is the bubbletea model of the spawn menu.
type Model struct {
	ctx context.Context
	svc *core.Service

	root    *Menu
	current *Menu
	cursor  int

	busy   bool
	status string
	err    error
}

// New builds the menu for svc.
func New(ctx context.Context, svc *core.Service) *Model {
	m := &Model{ctx: ctx, svc: svc}
	m.root = buildMenuTree(m)
	m.current = m.root
	return m
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spawnedMsg:
		m.busy, m.err = false, nil
		m.status = spawnSummary(msg.res)
	case previewMsg:
		m.busy, m.err = false, nil
		m.status = fmt.Sprintf("%s: %d rows map to %d records (%d skipped)",
			msg.pv.Profile, len(msg.pv.Rows), len(msg.pv.Records), len(msg.pv.Skipped))
	case statusMsg:
		m.busy, m.err = false, nil
		m.status = string(msg)
	case errMsg:
		m.busy, m.err = false, msg.err
		m.status = ""
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.current.Items)-1 {
			m.cursor++
		}
	case "esc", "backspace":
		if m.current.Parent != nil {
			m.current, m.cursor = m.current.Parent, 0
		}
	case "enter", " ":
		return m.choose()
	}
	return m, nil
}

func (m *Model) choose() (tea.Model, tea.Cmd) {
	item := m.current.Items[m.cursor]

	if item.Submenu != nil {
		m.current, m.cursor = item.Submenu, 0
		return m, nil
	}
	if item.Action == nil || m.busy {
		return m, nil
	}

	m.busy = true
	m.status = "Working..."
	return m, item.Action()
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.current.Title + "\n\n")
	for i, item := range m.current.Items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(cursor + item.Label + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString("Error: " + core.FormatUserError(m.err) + "\n")
	case m.status != "":
		b.WriteString(m.status + "\n")
	}
	b.WriteString("\nup/down: move  enter: select  esc: back  q: quit\n")
	return b.String()
}

func spawnSummary(res *core.SpawnResult) string {
	s := fmt.Sprintf("%s: placed %d, unresolved %d, skipped %d",
		res.Profile, len(res.Placed), len(res.Unresolved), len(res.Skipped))
	if len(res.Unresolved) > 0 {
		s += "\nMissing prefabs: " + strings.Join(uniq(res.Unresolved), ", ")
	}
	return s
}

func uniq(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
