package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

var columnColors = map[models.TaskStatus]lipgloss.Color{
	models.TaskStatusTodo:       lipgloss.Color("12"),
	models.TaskStatusInProgress: lipgloss.Color("214"),
	models.TaskStatusDone:       lipgloss.Color("42"),
}

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true)

	selectedTaskStyle = lipgloss.NewStyle().
				Bold(true).
				Reverse(true)

	moreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)
)

// Column renders the tasks of one status as a bordered box.
type Column struct {
	Status   models.TaskStatus
	Tasks    []*models.Task
	Cursor   int
	Focused  bool
	Width    int
	MaxItems int // 0 shows every task
}

func NewColumn(status models.TaskStatus, width int) *Column {
	return &Column{
		Status: status,
		Tasks:  make([]*models.Task, 0),
		Width:  width,
	}
}

// Selected returns the task under the cursor, or nil for an empty column.
func (c *Column) Selected() *models.Task {
	if c.Cursor < 0 || c.Cursor >= len(c.Tasks) {
		return nil
	}
	return c.Tasks[c.Cursor]
}

func (c *Column) View() string {
	color := columnColors[c.Status]

	header := columnHeaderStyle.Foreground(color).
		Render(fmt.Sprintf("%s (%d)", c.Status.Label(), len(c.Tasks)))

	// border and padding take two columns each
	innerWidth := c.Width - 4
	if innerWidth < 0 {
		innerWidth = 0
	}

	var lines []string
	if len(c.Tasks) == 0 {
		lines = append(lines, placeholderStyle.Render("No tasks"))
	}

	start, end := c.window()
	if start > 0 {
		lines = append(lines, moreStyle.Render(fmt.Sprintf("↑ %d more", start)))
	}
	for i := start; i < end; i++ {
		lines = append(lines, c.renderTask(i, innerWidth)...)
	}
	if end < len(c.Tasks) {
		lines = append(lines, moreStyle.Render(fmt.Sprintf("↓ %d more", len(c.Tasks)-end)))
	}

	style := columnStyle.BorderForeground(lipgloss.Color("238"))
	if c.Focused {
		style = style.Border(lipgloss.ThickBorder()).BorderForeground(color)
	}

	boxWidth := c.Width - 2
	if boxWidth < 0 {
		boxWidth = 0
	}
	return style.Width(boxWidth).Render(header + "\n" + strings.Join(lines, "\n"))
}

func (c *Column) renderTask(i, innerWidth int) []string {
	t := c.Tasks[i]
	selected := c.Focused && i == c.Cursor

	nameWidth := innerWidth - 2
	if nameWidth < 0 {
		nameWidth = 0
	}

	wrapped := lipgloss.NewStyle().Width(nameWidth).Render(t.Title)

	var lines []string
	for j, line := range strings.Split(wrapped, "\n") {
		prefix := "  "
		if j == 0 {
			prefix = "• "
			if selected {
				prefix = "> "
			}
		}
		if selected {
			line = selectedTaskStyle.Render(line)
		}
		lines = append(lines, prefix+line)
	}
	return lines
}

// window picks the visible slice of tasks, keeping the cursor in view.
func (c *Column) window() (int, int) {
	n := len(c.Tasks)
	if c.MaxItems <= 0 || n <= c.MaxItems {
		return 0, n
	}

	start := c.Cursor - c.MaxItems/2
	if start < 0 {
		start = 0
	}
	end := start + c.MaxItems
	if end > n {
		end = n
		start = end - c.MaxItems
	}
	return start, end
}
