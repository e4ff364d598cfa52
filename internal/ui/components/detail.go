package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252"))

	detailMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	detailBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	scrollbarTrackStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("236"))

	scrollbarHandleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
)

// TaskDetail shows the selected task's full title and description in a
// scrollable viewport.
type TaskDetail struct {
	viewport viewport.Model
	task     *models.Task
	ready    bool
}

func NewTaskDetail(width, height int) *TaskDetail {
	d := &TaskDetail{}
	d.SetSize(width, height)
	return d
}

func (d *TaskDetail) SetSize(width, height int) {
	vpWidth := width
	if width > 0 {
		vpWidth = width - 1
	}
	if !d.ready {
		d.viewport = viewport.New(vpWidth, height)
		d.ready = true
	} else {
		d.viewport.Width = vpWidth
		d.viewport.Height = height
	}
	d.updateContent()
}

func (d *TaskDetail) SetTask(t *models.Task) {
	if d.task != nil && t != nil && d.task.ID == t.ID && d.task.Status == t.Status {
		return
	}
	d.task = t
	d.updateContent()
	d.viewport.GotoTop()
}

func (d *TaskDetail) updateContent() {
	width := d.viewport.Width

	var b strings.Builder
	if d.task == nil {
		b.WriteString(detailMetaStyle.Render("No task selected"))
	} else {
		b.WriteString(detailTitleStyle.Render(d.task.Title))
		b.WriteString("\n")
		b.WriteString(detailMetaStyle.Render(d.task.Status.Label() + " · created " + d.task.CreatedAt.Local().Format("Jan 2 15:04")))
		if d.task.Description != "" {
			b.WriteString("\n")
			b.WriteString(detailBodyStyle.Render(d.task.Description))
		}
	}

	content := b.String()
	if width > 0 {
		content = lipgloss.NewStyle().Width(width).Render(content)
	}
	d.viewport.SetContent(content)
}

func (d *TaskDetail) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return cmd
}

func (d *TaskDetail) View() string {
	if !d.ready {
		return ""
	}

	if d.viewport.TotalLineCount() <= d.viewport.Height {
		return d.viewport.View()
	}

	h := d.viewport.Height
	handlePos := int(float64(h-1) * d.viewport.ScrollPercent())

	var sb strings.Builder
	for i := 0; i < h; i++ {
		if i == handlePos {
			sb.WriteString(scrollbarHandleStyle.Render("┃"))
		} else {
			sb.WriteString(scrollbarTrackStyle.Render("│"))
		}
		if i < h-1 {
			sb.WriteString("\n")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, d.viewport.View(), sb.String())
}
