// Package board is the interactive kanban view.
package board

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/taskboard/internal/ui/components"
	"github.com/nick-dorsch/taskboard/pkg/models"
	"github.com/rs/zerolog"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)
)

// Board is the task backend the view drives. Both the local service and the
// HTTP client implement it.
type Board interface {
	ListTasks(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error)
	AddTask(ctx context.Context, title, description string) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	GenerateTasks(ctx context.Context, prompt string) (*models.GenerateResult, error)
}

type inputMode int

const (
	modeBrowse inputMode = iota
	modeAddTitle
	modeAddDescription
	modeGenerate
)

type tasksLoadedMsg struct {
	tasks []*models.Task
	err   error
}

type mutationDoneMsg struct {
	notice string
	err    error
}

type generatedMsg struct {
	result *models.GenerateResult
	err    error
}

type refreshTickMsg time.Time

type Model struct {
	board   Board
	ctx     context.Context
	cancel  context.CancelFunc
	log     zerolog.Logger
	refresh time.Duration

	cols    models.Columns
	columns []*components.Column
	detail  *components.TaskDetail
	focus   int
	loaded  bool

	mode       inputMode
	input      textinput.Model
	draftTitle string

	spinner    spinner.Model
	generating bool

	notice string
	err    error

	width  int
	height int
}

func New(ctx context.Context, b Board, refresh time.Duration, log zerolog.Logger) *Model {
	ctx, cancel := context.WithCancel(ctx)

	ti := textinput.New()
	ti.CharLimit = 500
	ti.Cursor.SetMode(cursor.CursorStatic)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	columns := make([]*components.Column, 0, len(models.Statuses))
	for _, status := range models.Statuses {
		columns = append(columns, components.NewColumn(status, 30))
	}
	columns[0].Focused = true

	return &Model{
		board:   b,
		ctx:     ctx,
		cancel:  cancel,
		log:     log.With().Str("component", "board").Logger(),
		refresh: refresh,
		cols:    models.Partition(nil),
		columns: columns,
		detail:  components.NewTaskDetail(90, 3),
		input:   ti,
		spinner: sp,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m *Model) load() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		tasks, err := m.board.ListTasks(ctx, nil)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m *Model) tick() tea.Cmd {
	if m.refresh <= 0 {
		return nil
	}
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (m *Model) mutate(notice string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return mutationDoneMsg{notice: notice, err: fn(ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tasksLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.loaded = true
		m.cols = models.Partition(msg.tasks)
		m.syncColumns()
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.err = nil
			m.notice = msg.notice
		}
		return m, m.load()

	case generatedMsg:
		m.generating = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.err = nil
		m.notice = fmt.Sprintf("Generated %d task(s)", len(msg.result.Created))
		if msg.result.Skipped > 0 {
			m.notice += fmt.Sprintf(", skipped %d", msg.result.Skipped)
		}
		return m, m.load()

	case refreshTickMsg:
		return m, tea.Batch(m.load(), m.tick())

	case spinner.TickMsg:
		if !m.generating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.cancel()
		return m, tea.Quit

	case "left", "h":
		m.moveFocus(-1)
	case "right", "l", "tab":
		m.moveFocus(1)
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)

	case "pgup", "pgdown":
		return m, m.detail.Update(msg)

	case "a":
		m.startInput(modeAddTitle, "Title: ")
	case "g":
		if m.generating {
			m.notice = "Generation already running"
			return m, nil
		}
		m.startInput(modeGenerate, "Goal: ")

	case "1", "2", "3":
		status := models.Statuses[int(msg.Runes[0]-'1')]
		return m, m.moveSelected(status)
	case "[":
		if m.focus > 0 {
			return m, m.moveSelected(models.Statuses[m.focus-1])
		}
	case "]":
		if m.focus < len(models.Statuses)-1 {
			return m, m.moveSelected(models.Statuses[m.focus+1])
		}

	case "d", "delete":
		t := m.Selected()
		if t == nil {
			return m, nil
		}
		id, title := t.ID, t.Title
		return m, m.mutate(fmt.Sprintf("Deleted %q", title), func(ctx context.Context) error {
			return m.board.DeleteTask(ctx, id)
		})

	case "r":
		m.err = nil
		m.notice = ""
		return m, m.load()
	}

	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.stopInput()
		return m, nil

	case tea.KeyEnter:
		value := m.input.Value()
		blank := strings.TrimSpace(value) == ""

		switch m.mode {
		case modeAddTitle:
			if blank {
				m.stopInput()
				return m, nil
			}
			m.draftTitle = value
			m.startInput(modeAddDescription, "Description (optional): ")
			return m, nil

		case modeAddDescription:
			title := m.draftTitle
			m.stopInput()
			return m, m.mutate(fmt.Sprintf("Added %q", title), func(ctx context.Context) error {
				_, err := m.board.AddTask(ctx, title, value)
				return err
			})

		case modeGenerate:
			m.stopInput()
			if blank {
				return m, nil
			}
			m.generating = true
			m.notice = ""
			m.err = nil
			ctx := m.ctx
			generate := func() tea.Msg {
				result, err := m.board.GenerateTasks(ctx, value)
				return generatedMsg{result: result, err: err}
			}
			return m, tea.Batch(m.spinner.Tick, generate)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) startInput(mode inputMode, prompt string) {
	m.mode = mode
	m.input.Reset()
	m.input.Prompt = prompt
	m.input.PromptStyle = promptStyle
	m.input.Focus()
}

func (m *Model) stopInput() {
	m.mode = modeBrowse
	m.draftTitle = ""
	m.input.Reset()
	m.input.Blur()
}

func (m *Model) moveSelected(status models.TaskStatus) tea.Cmd {
	t := m.Selected()
	if t == nil || t.Status == status {
		return nil
	}
	id, title := t.ID, t.Title
	return m.mutate(fmt.Sprintf("Moved %q to %s", title, status.Label()), func(ctx context.Context) error {
		_, err := m.board.UpdateTaskStatus(ctx, id, status)
		return err
	})
}

func (m *Model) setError(err error) {
	m.err = err
	m.notice = ""
	m.log.Error().Err(err).Msg("board operation failed")
}

func (m *Model) moveFocus(delta int) {
	next := m.focus + delta
	if next < 0 || next >= len(m.columns) {
		return
	}
	m.columns[m.focus].Focused = false
	m.focus = next
	m.columns[m.focus].Focused = true
	m.detail.SetTask(m.Selected())
}

func (m *Model) moveCursor(delta int) {
	col := m.columns[m.focus]
	next := col.Cursor + delta
	if next < 0 || next >= len(col.Tasks) {
		return
	}
	col.Cursor = next
	m.detail.SetTask(m.Selected())
}

// syncColumns copies the partitioned board into the column components,
// keeping each cursor on the same task when it still exists.
func (m *Model) syncColumns() {
	for i, status := range models.Statuses {
		col := m.columns[i]

		var selectedID string
		if t := col.Selected(); t != nil {
			selectedID = t.ID
		}

		col.Tasks = m.cols.Column(status)
		col.Cursor = clamp(col.Cursor, len(col.Tasks))
		for j, t := range col.Tasks {
			if t.ID == selectedID {
				col.Cursor = j
				break
			}
		}
	}
	m.detail.SetTask(m.Selected())
}

// Selected returns the task under the cursor in the focused column.
func (m *Model) Selected() *models.Task {
	return m.columns[m.focus].Selected()
}

// Columns returns the board as last loaded.
func (m *Model) Columns() models.Columns {
	return m.cols
}

func (m *Model) layout() {
	colWidth := (m.width - 2) / len(m.columns)
	if colWidth < 20 {
		colWidth = 20
	}

	// header, detail, status and help lines
	maxItems := (m.height - 14) / 2
	if maxItems < 3 {
		maxItems = 3
	}

	for _, col := range m.columns {
		col.Width = colWidth
		col.MaxItems = maxItems
	}
	m.detail.SetSize(colWidth*len(m.columns), 3)
	m.input.Width = colWidth * 2
}

func (m *Model) View() string {
	var b strings.Builder

	header := titleStyle.Render("Taskboard")
	stats := statsStyle.Render(fmt.Sprintf("%d todo · %d in progress · %d done",
		len(m.cols.Todo), len(m.cols.InProgress), len(m.cols.Done)))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, header, " ", stats))
	b.WriteString("\n")

	if !m.loaded && m.err == nil {
		b.WriteString("Loading tasks...\n")
	}

	views := make([]string, 0, len(m.columns))
	for _, col := range m.columns {
		views = append(views, col.View())
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, views...))
	b.WriteString("\n")
	b.WriteString(m.detail.View())
	b.WriteString("\n")

	switch {
	case m.mode != modeBrowse:
		b.WriteString(m.input.View())
	case m.generating:
		b.WriteString(m.spinner.View() + " Generating...")
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.notice != "":
		b.WriteString(noticeStyle.Render(m.notice))
	}
	b.WriteString("\n")

	b.WriteString(m.renderHelp())
	return b.String()
}

func (m *Model) renderHelp() string {
	if m.mode != modeBrowse {
		return helpStyle.Render("enter to confirm • esc to cancel")
	}
	return helpStyle.Render("←/→ column • ↑/↓ task • a add • g generate • 1/2/3 or [/] move • d delete • r refresh • q quit")
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Run shows the board until the user quits or ctx is cancelled.
func Run(ctx context.Context, b Board, refresh time.Duration, log zerolog.Logger) error {
	m := New(ctx, b, refresh, log)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
