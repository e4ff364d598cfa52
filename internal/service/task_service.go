// Package service is the single write path for tasks. Every transport (HTTP,
// MCP, the terminal board, the CLI) goes through TaskService.
package service

import (
	"context"
	"strings"
	"sync"

	"github.com/nick-dorsch/taskboard/internal/generate"
	"github.com/nick-dorsch/taskboard/internal/store"
	"github.com/nick-dorsch/taskboard/pkg/models"
	"github.com/rs/zerolog"
)

// Drafter produces draft tasks from a goal without persisting them.
type Drafter interface {
	Draft(ctx context.Context, goal string) (*generate.Draft, error)
}

type TaskService struct {
	store store.Store
	gen   Drafter
	log   zerolog.Logger

	mu       sync.RWMutex
	onChange func(context.Context)
}

// New returns ErrStoreNil without a store. gen may be nil, in which case
// GenerateTasks reports generate.ErrNotConfigured.
func New(st store.Store, gen Drafter, log zerolog.Logger) (*TaskService, error) {
	if st == nil {
		return nil, ErrStoreNil
	}

	return &TaskService{
		store: st,
		gen:   gen,
		log:   log.With().Str("component", "service").Logger(),
	}, nil
}

// SetOnChange registers fn to run after every successful write.
func (s *TaskService) SetOnChange(fn func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *TaskService) changed(ctx context.Context) {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()

	if fn != nil {
		fn(ctx)
	}
}

func (s *TaskService) ListTasks(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error) {
	return s.store.ListTasks(ctx, status)
}

// Board lists every task and splits it into display columns.
func (s *TaskService) Board(ctx context.Context) (models.Columns, error) {
	tasks, err := s.store.ListTasks(ctx, nil)
	if err != nil {
		return models.Columns{}, err
	}
	return models.Partition(tasks), nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return s.store.GetTask(ctx, id)
}

// AddTask creates a todo task with title and description stored exactly as
// given. A blank title is rejected with models.ErrEmptyTitle.
func (s *TaskService) AddTask(ctx context.Context, title, description string) (*models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, models.ErrEmptyTitle
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		Status:      models.TaskStatusTodo,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", task.ID).Str("title", task.Title).Msg("task added")
	s.changed(ctx)
	return task, nil
}

// UpdateTaskStatus moves a task to another column and returns it.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error) {
	if err := s.store.UpdateTaskStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.changed(ctx)

	s.log.Info().Str("id", id).Str("status", string(status)).Msg("task moved")
	return s.store.GetTask(ctx, id)
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("id", id).Msg("task deleted")
	s.changed(ctx)
	return nil
}

// GenerateTasks asks the model for tasks matching prompt and inserts every
// usable item in a single batch. Nothing is inserted when the model call or
// the parse fails.
func (s *TaskService) GenerateTasks(ctx context.Context, prompt string) (*models.GenerateResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if s.gen == nil {
		return nil, generate.ErrNotConfigured
	}

	draft, err := s.gen.Draft(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateTasks(ctx, draft.Tasks); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("created", len(draft.Tasks)).
		Int("skipped", draft.Skipped).
		Msg("tasks generated")

	if len(draft.Tasks) > 0 {
		s.changed(ctx)
	}
	return &models.GenerateResult{Created: draft.Tasks, Skipped: draft.Skipped}, nil
}
