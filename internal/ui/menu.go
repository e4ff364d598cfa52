// Package ui holds the start menu and the shared terminal components.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	logoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	itemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("12")).Bold(true)
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const logo = `
 ▀█▀ ▄▀█ █▀ █▄▀ █▄▄ █▀█ ▄▀█ █▀█ █▀▄
  █  █▀█ ▄█ █ █ █▄█ █▄█ █▀█ █▀▄ █▄▀
`

// menuChoice is a command the menu can launch. key selects it directly.
type menuChoice struct {
	key  string
	name string
	hint string
}

type MenuModel struct {
	choices  []menuChoice
	cursor   int
	selected string
	quitting bool
	armed    bool // esc pressed once
}

func NewMenuModel() MenuModel {
	return MenuModel{
		choices: []menuChoice{
			{"b", "board", "open the kanban board"},
			{"s", "serve", "run the HTTP API"},
			{"m", "mcp", "run the MCP server on stdio"},
			{"l", "list", "print all tasks"},
			{"t", "status", "show column counts"},
		},
	}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Type == tea.KeyEsc {
		if m.armed {
			m.quitting = true
			return m, tea.Quit
		}
		m.armed = true
		return m, nil
	}
	m.armed = false

	switch key.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		m.cursor = (m.cursor - 1 + len(m.choices)) % len(m.choices)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(m.choices)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.choices) - 1

	case "enter", " ":
		m.selected = m.choices[m.cursor].name
		return m, tea.Quit

	default:
		for i, c := range m.choices {
			if key.String() == c.key {
				m.cursor = i
				m.selected = c.name
				return m, tea.Quit
			}
		}
	}

	return m, nil
}

func (m MenuModel) View() string {
	if m.quitting || m.selected != "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(logoStyle.Render(logo))
	b.WriteString("\n\n")

	for i, c := range m.choices {
		line := fmt.Sprintf("[%s] %-8s %s", keyStyle.Render(c.key), c.name, hintStyle.Render(c.hint))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("› " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.armed {
		b.WriteString(hintStyle.Render("press esc again to quit"))
	} else {
		b.WriteString(hintStyle.Render("↑/↓ move • enter or shortcut to launch • q quit"))
	}
	b.WriteString("\n")
	return b.String()
}

// Selected is the chosen command name, or "" when the user quit.
func (m MenuModel) Selected() string {
	return m.selected
}

func RunMenu() (string, error) {
	final, err := tea.NewProgram(NewMenuModel()).Run()
	if err != nil {
		return "", fmt.Errorf("menu: %w", err)
	}
	return final.(MenuModel).Selected(), nil
}
