package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nick-dorsch/taskboard/pkg/models"
	"github.com/rs/zerolog"
)

type fakeBoard struct {
	tasks    []*models.Task
	next     int
	listErr  error
	generate func(prompt string) (*models.GenerateResult, error)
	prompts  []string
}

func (f *fakeBoard) ListTasks(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeBoard) AddTask(ctx context.Context, title, description string) (*models.Task, error) {
	f.next++
	t := &models.Task{
		ID:          fmt.Sprintf("t%d", f.next),
		Title:       title,
		Description: description,
		Status:      models.TaskStatusTodo,
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, f.next, 0, time.UTC),
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeBoard) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			t.Status = status
			return t, nil
		}
	}
	return nil, models.ErrTaskNotFound
}

func (f *fakeBoard) DeleteTask(ctx context.Context, id string) error {
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return models.ErrTaskNotFound
}

func (f *fakeBoard) GenerateTasks(ctx context.Context, prompt string) (*models.GenerateResult, error) {
	f.prompts = append(f.prompts, prompt)
	return f.generate(prompt)
}

// drain runs cmd and feeds every resulting message back into the model.
// Timers and quit messages are dropped.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil, tea.QuitMsg, spinner.TickMsg, refreshTickMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			drain(t, m, c)
		}
	default:
		_, next := m.Update(msg)
		drain(t, m, next)
	}
}

func press(t *testing.T, m *Model, key string) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	drain(t, m, cmd)
}

// typeText enters text into the active input without running its commands.
func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func newTestModel(t *testing.T, b *fakeBoard) *Model {
	t.Helper()
	m := New(context.Background(), b, 0, zerolog.Nop())
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	drain(t, m, m.Init())
	return m
}

func seeded() *fakeBoard {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &fakeBoard{
		next: 10,
		tasks: []*models.Task{
			{ID: "a", Title: "Old todo", Status: models.TaskStatusTodo, CreatedAt: base},
			{ID: "b", Title: "New todo", Status: models.TaskStatusTodo, CreatedAt: base.Add(time.Minute)},
			{ID: "c", Title: "Working", Status: models.TaskStatusInProgress, CreatedAt: base},
		},
	}
}

func TestInitLoadsColumns(t *testing.T) {
	m := newTestModel(t, seeded())

	cols := m.Columns()
	if len(cols.Todo) != 2 || len(cols.InProgress) != 1 || len(cols.Done) != 0 {
		t.Fatalf("unexpected columns: %+v", cols)
	}
	if cols.Todo[0].ID != "b" {
		t.Errorf("expected newest todo first, got %s", cols.Todo[0].ID)
	}
	if sel := m.Selected(); sel == nil || sel.ID != "b" {
		t.Errorf("expected newest todo selected, got %v", sel)
	}

	view := m.View()
	for _, want := range []string{"Taskboard", "To Do", "In Progress", "Done", "New todo", "No tasks"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestNavigation(t *testing.T) {
	m := newTestModel(t, seeded())

	press(t, m, "down")
	if sel := m.Selected(); sel == nil || sel.ID != "a" {
		t.Fatalf("expected a after down, got %v", sel)
	}
	press(t, m, "down")
	if sel := m.Selected(); sel.ID != "a" {
		t.Errorf("cursor moved past end of column")
	}

	press(t, m, "right")
	if sel := m.Selected(); sel == nil || sel.ID != "c" {
		t.Fatalf("expected c in progress column, got %v", sel)
	}
	press(t, m, "right")
	if m.Selected() != nil {
		t.Errorf("expected nothing selected in empty done column")
	}
	press(t, m, "right")
	if m.focus != 2 {
		t.Errorf("focus moved past last column: %d", m.focus)
	}

	press(t, m, "left")
	press(t, m, "left")
	if sel := m.Selected(); sel.ID != "a" {
		t.Errorf("expected cursor kept on a, got %s", sel.ID)
	}
}

func TestMoveTask(t *testing.T) {
	b := seeded()
	m := newTestModel(t, b)

	press(t, m, "3")
	cols := m.Columns()
	if len(cols.Done) != 1 || cols.Done[0].ID != "b" {
		t.Fatalf("expected b in done, got %+v", cols.Done)
	}
	if !strings.Contains(m.notice, "Done") {
		t.Errorf("expected move notice, got %q", m.notice)
	}

	// cursor stays in the focused column on the remaining task
	if sel := m.Selected(); sel == nil || sel.ID != "a" {
		t.Fatalf("expected a selected, got %v", sel)
	}

	press(t, m, "]")
	if got := m.Columns().InProgress; len(got) != 2 {
		t.Errorf("expected 2 in progress, got %d", len(got))
	}

	press(t, m, "right")
	press(t, m, "[")
	if got := m.Columns().Todo; len(got) != 1 {
		t.Errorf("expected 1 todo after moving back, got %d", len(got))
	}
}

func TestDeleteTask(t *testing.T) {
	b := seeded()
	m := newTestModel(t, b)

	press(t, m, "d")
	if len(b.tasks) != 2 {
		t.Fatalf("expected 2 tasks left, got %d", len(b.tasks))
	}
	if sel := m.Selected(); sel == nil || sel.ID != "a" {
		t.Errorf("expected a selected after delete, got %v", sel)
	}

	// deleting from an empty column is a no-op
	press(t, m, "right")
	press(t, m, "right")
	press(t, m, "d")
	if len(b.tasks) != 2 {
		t.Errorf("delete on empty column removed a task")
	}
}

func TestAddTask(t *testing.T) {
	b := &fakeBoard{}
	m := newTestModel(t, b)

	press(t, m, "a")
	if m.mode != modeAddTitle {
		t.Fatalf("expected title input, got mode %d", m.mode)
	}
	typeText(m, "Buy milk")
	press(t, m, "enter")
	if m.mode != modeAddDescription {
		t.Fatalf("expected description input, got mode %d", m.mode)
	}
	typeText(m, "semi-skimmed")
	press(t, m, "enter")

	if m.mode != modeBrowse {
		t.Errorf("expected browse mode after add")
	}
	if len(b.tasks) != 1 || b.tasks[0].Title != "Buy milk" || b.tasks[0].Description != "semi-skimmed" {
		t.Fatalf("unexpected tasks: %+v", b.tasks)
	}
	if len(m.Columns().Todo) != 1 {
		t.Errorf("board not reloaded after add")
	}
}

func TestAddTaskCancel(t *testing.T) {
	b := &fakeBoard{}
	m := newTestModel(t, b)

	press(t, m, "a")
	press(t, m, "enter")
	if m.mode != modeBrowse || len(b.tasks) != 0 {
		t.Errorf("blank title should cancel")
	}

	press(t, m, "a")
	typeText(m, "Something")
	press(t, m, "esc")
	if m.mode != modeBrowse || len(b.tasks) != 0 {
		t.Errorf("esc should cancel")
	}

	// q while typing is text, not quit
	press(t, m, "a")
	press(t, m, "q")
	if m.input.Value() != "q" {
		t.Errorf("expected q in input, got %q", m.input.Value())
	}
}

func TestGenerate(t *testing.T) {
	b := &fakeBoard{}
	b.generate = func(prompt string) (*models.GenerateResult, error) {
		t1, _ := b.AddTask(context.Background(), "Buy milk", "")
		t2, _ := b.AddTask(context.Background(), "Call dentist", "")
		return &models.GenerateResult{Created: []*models.Task{t1, t2}, Skipped: 1}, nil
	}
	m := newTestModel(t, b)

	press(t, m, "g")
	typeText(m, "weekly errands")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.generating {
		t.Fatalf("expected generating state")
	}
	if !strings.Contains(m.View(), "Generating...") {
		t.Errorf("expected progress indicator in view")
	}
	drain(t, m, cmd)

	if m.generating {
		t.Errorf("generation should have finished")
	}
	if len(b.prompts) != 1 || b.prompts[0] != "weekly errands" {
		t.Errorf("unexpected prompts: %v", b.prompts)
	}
	if len(m.Columns().Todo) != 2 {
		t.Errorf("expected 2 generated todos, got %d", len(m.Columns().Todo))
	}
	if m.notice != "Generated 2 task(s), skipped 1" {
		t.Errorf("unexpected notice %q", m.notice)
	}
}

func TestGenerateError(t *testing.T) {
	b := &fakeBoard{}
	b.generate = func(prompt string) (*models.GenerateResult, error) {
		return nil, errors.New("task generation is not configured")
	}
	m := newTestModel(t, b)

	press(t, m, "g")
	typeText(m, "plan a trip")
	press(t, m, "enter")

	if m.generating {
		t.Errorf("generation should have finished")
	}
	if m.err == nil || !strings.Contains(m.View(), "not configured") {
		t.Errorf("expected error in view, got %q", m.View())
	}
	if len(m.Columns().Todo) != 0 {
		t.Errorf("failed generation must not add tasks")
	}
}

func TestLoadError(t *testing.T) {
	b := &fakeBoard{listErr: errors.New("connection refused")}
	m := newTestModel(t, b)

	if !strings.Contains(m.View(), "connection refused") {
		t.Errorf("expected load error in view")
	}

	b.listErr = nil
	b.tasks = seeded().tasks
	press(t, m, "r")
	if m.Columns().Len() != 3 {
		t.Errorf("expected refresh to recover, got %d tasks", m.Columns().Len())
	}
}

func TestQuitCancelsContext(t *testing.T) {
	m := newTestModel(t, &fakeBoard{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected QuitMsg")
	}
	if m.ctx.Err() == nil {
		t.Errorf("expected context cancelled on quit")
	}
}
