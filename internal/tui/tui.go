// Package tui holds the interactive terminal views.
package tui

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"seosuite/internal/store"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Picker is a bubbletea model that selects one project from a list.
type Picker struct {
	projects []store.Project
	activeID string
	cursor   int
	chosen   int
	quitting bool
}

// NewPicker starts with the cursor on the active project.
func NewPicker(projects []store.Project, activeID string) Picker {
	p := Picker{projects: projects, activeID: activeID, chosen: -1}
	for i, project := range projects {
		if project.ID == activeID {
			p.cursor = i
		}
	}
	return p
}

// Init is the first command that will be run. We don't need any.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update handles key presses.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		p.quitting = true
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case "enter":
		if len(p.projects) > 0 {
			p.chosen = p.cursor
		}
		return p, tea.Quit
	}
	return p, nil
}

// View renders the project list.
func (p Picker) View() string {
	if p.quitting || p.chosen >= 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Select the active project"))
	b.WriteString("\n")
	if len(p.projects) == 0 {
		b.WriteString("No projects yet.\n")
	}
	for i, project := range p.projects {
		cursor := "  "
		if i == p.cursor {
			cursor = cursorStyle.Render("> ")
		}
		name := project.Name
		if project.ID == p.activeID {
			name = activeStyle.Render(name + " (active)")
		}
		fmt.Fprintf(&b, "%s%s\n", cursor, name)
	}
	b.WriteString(helpTextStyle.Render("\n↑/↓ move • enter select • q quit"))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the chosen project, if enter was pressed.
func (p Picker) Selected() (store.Project, bool) {
	if p.chosen < 0 || p.chosen >= len(p.projects) {
		return store.Project{}, false
	}
	return p.projects[p.chosen], true
}

// PickProject runs the picker on the given terminal streams.
func PickProject(projects []store.Project, activeID string, in io.Reader, out io.Writer) (store.Project, bool, error) {
	final, err := tea.NewProgram(NewPicker(projects, activeID), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return store.Project{}, false, fmt.Errorf("project picker failed: %w", err)
	}
	picker, ok := final.(Picker)
	if !ok {
		return store.Project{}, false, nil
	}
	project, chosen := picker.Selected()
	return project, chosen, nil
}
