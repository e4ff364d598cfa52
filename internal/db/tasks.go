package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

const taskColumns = `id, title, description, status, created_at`

// CreateTask inserts a new task into the database.
// If t.ID is empty, a new UUID is generated; an empty status defaults to todo.
func (db *DB) CreateTask(ctx context.Context, t *models.Task) error {
	return db.createTask(ctx, db.DB, t)
}

// CreateTasks inserts all tasks in a single transaction. Either every task is
// committed or none is.
func (db *DB) CreateTasks(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tasks {
		if err := db.createTask(ctx, tx, t); err != nil {
			return fmt.Errorf("failed to create task %q: %w", t.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// PutTasks writes tasks as given, keeping their IDs and creation times.
// Existing rows with the same ID are overwritten.
func (db *DB) PutTasks(ctx context.Context, tasks []*models.Task) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tasks {
		if t.ID == "" {
			return fmt.Errorf("task %q has no id", t.Title)
		}
		if !t.Status.Valid() {
			return fmt.Errorf("task %s: %w: %q", t.ID, models.ErrInvalidStatus, t.Status)
		}
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("task %s: %w", t.ID, models.ErrEmptyTitle)
		}
		if t.CreatedAt.IsZero() {
			return fmt.Errorf("task %s has no creation time", t.ID)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET title = ?, description = ?, status = ?, created_at = ?
			WHERE id = ?`,
			t.Title, t.Description, t.Status, t.CreatedAt.UnixNano(), t.ID)
		if err != nil {
			return fmt.Errorf("failed to update task %s: %w", t.ID, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		} else if n > 0 {
			continue
		}

		if err := db.createTask(ctx, tx, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTask retrieves a task by its ID.
func (db *DB) GetTask(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	t, err := scanTask(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// ListTasks returns all tasks, optionally filtered by status. No particular
// order is guaranteed; callers sort for display.
func (db *DB) ListTasks(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	args := []any{}

	if status != nil {
		query += " WHERE status = ?"
		args = append(args, *status)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return tasks, nil
}

// UpdateTaskStatus replaces the status of a task and nothing else.
func (db *DB) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}

	res, err := db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", models.ErrTaskNotFound, id)
	}
	return nil
}

// DeleteTask deletes a task by its ID.
func (db *DB) DeleteTask(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%w: %s", models.ErrTaskNotFound, id)
	}
	return nil
}

func (db *DB) createTask(ctx context.Context, exec executor, t *models.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return models.ErrEmptyTitle
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = models.TaskStatusTodo
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidStatus, t.Status)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = db.clock.Next()
	}

	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := exec.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.Status, t.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var createdAt int64
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &createdAt); err != nil {
		return nil, err
	}
	t.CreatedAt = time.Unix(0, createdAt).UTC()
	return t, nil
}
