// Package application is the terminal front end: a bubbletea menu for
// spawning profiles and clearing the scene.
package application

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/scenecsv/internal/core"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

// MenuItem is one selectable line. It either opens Submenu or runs Action.
type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func() tea.Cmd
}

// Menu is a titled list of items.
type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

const backLabel = "Back"

// linkParents sets Parent on every submenu and points each Back item at the
// enclosing menu's parent.
func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == backLabel {
			item.Submenu = parent
			continue
		}
		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

func buildMenuTree(m *Model) *Menu {
	root := &Menu{
		Title: "scenecsv",
		Items: []MenuItem{
			{Label: "Spawn ->", Submenu: profileMenu(m, "Spawn", m.spawnCmd)},
			{Label: "Preview ->", Submenu: profileMenu(m, "Preview", m.previewCmd)},
			{Label: "Show scene", Action: m.sceneCmd},
			{Label: "Clear scene", Action: m.clearCmd},
			{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
		},
	}

	linkParents(root, nil)
	return root
}

// profileMenu lists every profile with action bound to its name.
func profileMenu(m *Model, title string, action func(name string) tea.Cmd) *Menu {
	profiles := m.svc.Profiles()
	if len(profiles) == 0 {
		return &Menu{
			Title: title,
			Items: []MenuItem{
				{Label: "No profiles loaded"},
				{Label: backLabel},
			},
		}
	}

	items := make([]MenuItem, 0, len(profiles)+1)
	for _, p := range profiles {
		name := p.Name
		items = append(items, MenuItem{
			Label:  fmt.Sprintf("%s (%s)", name, p.Source),
			Action: func() tea.Cmd { return action(name) },
		})
	}
	items = append(items, MenuItem{Label: backLabel})

	return &Menu{Title: title, Items: items}
}

/* ----------------------------------------
	COMMANDS
---------------------------------------- */

type spawnedMsg struct{ res *core.SpawnResult }
type previewMsg struct{ pv *core.Preview }
type statusMsg string
type errMsg struct{ err error }

func (m *Model) spawnCmd(name string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		res, err := svc.Spawn(core.ContextWithOrigin(ctx, core.Origin{Via: "tui"}), name)
		if err != nil {
			return errMsg{err}
		}
		return spawnedMsg{res}
	}
}

func (m *Model) previewCmd(name string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		pv, err := svc.Preview(ctx, name)
		if err != nil {
			return errMsg{err}
		}
		return previewMsg{pv}
	}
}

func (m *Model) sceneCmd() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		nodes := svc.Scene()
		return statusMsg(fmt.Sprintf("Scene holds %d objects", len(nodes)))
	}
}

func (m *Model) clearCmd() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		if err := svc.ClearScene(ctx); err != nil {
			return errMsg{err}
		}
		return statusMsg("Scene cleared")
	}
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, svc *core.Service) error {
	_, err := tea.NewProgram(New(ctx, svc), tea.WithContext(ctx)).Run()
	return err
}
