// Package store selects the task persistence backend.
package store

import (
	"context"
	"fmt"

	"github.com/nick-dorsch/taskboard/internal/config"
	"github.com/nick-dorsch/taskboard/internal/db"
	"github.com/nick-dorsch/taskboard/internal/firestore"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

// Store persists tasks. Implementations return models.ErrTaskNotFound for
// unknown ids and assign id and creation time on insert.
type Store interface {
	ListTasks(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	CreateTasks(ctx context.Context, tasks []*models.Task) error
	PutTasks(ctx context.Context, tasks []*models.Task) error
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error
	DeleteTask(ctx context.Context, id string) error
	Close() error
}

var (
	_ Store = (*db.DB)(nil)
	_ Store = (*firestore.Store)(nil)
)

// Open connects to the backend named by cfg.Driver and prepares its schema.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		d, err := db.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := d.Init(ctx); err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return d, nil

	case config.DriverMySQL:
		d, err := db.OpenMySQL(cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := d.Init(ctx); err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return d, nil

	case config.DriverFirestore:
		return firestore.Open(ctx, cfg.Firestore)
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
