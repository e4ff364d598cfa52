// Package firestore stores tasks as documents in a Cloud Firestore collection.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	fs "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/google/uuid"
	"github.com/nick-dorsch/taskboard/internal/config"
	"github.com/nick-dorsch/taskboard/pkg/models"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// taskDoc is the stored document shape. created_at is kept as Unix
// nanoseconds because Firestore timestamps only carry microseconds, which
// would collapse the ordering of tasks created in the same batch.
type taskDoc struct {
	Title       string `firestore:"title"`
	Description string `firestore:"description"`
	Status      string `firestore:"status"`
	CreatedAt   int64  `firestore:"created_at"`
}

type Store struct {
	client *fs.Client
	col    *fs.CollectionRef
	clock  *models.CreationClock
}

// Open initializes a Firebase app for the configured project and returns a
// store over its Firestore collection. FIRESTORE_EMULATOR_HOST is honored by
// the SDK.
func Open(ctx context.Context, cfg config.FirestoreConfig) (*Store, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get firestore client: %w", err)
	}

	return New(client, cfg.Collection), nil
}

// New wraps an existing client. The store takes ownership of it.
func New(client *fs.Client, collection string) *Store {
	return &Store{
		client: client,
		col:    client.Collection(collection),
		clock:  models.NewCreationClock(),
	}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) ListTasks(ctx context.Context, st *models.TaskStatus) ([]*models.Task, error) {
	q := s.col.Query
	if st != nil {
		q = q.Where("status", "==", string(*st))
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	tasks := []*models.Task{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}

		t, err := decode(snap)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	snap, err := s.col.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", models.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return decode(snap)
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	if err := s.prepare(t); err != nil {
		return err
	}
	if _, err := s.col.Doc(t.ID).Create(ctx, encode(t)); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// CreateTasks writes every task in one transaction.
func (s *Store) CreateTasks(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	// Prepared outside the transaction so a retried attempt reuses the same
	// ids and creation times.
	for _, t := range tasks {
		if err := s.prepare(t); err != nil {
			return fmt.Errorf("failed to create task %q: %w", t.Title, err)
		}
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *fs.Transaction) error {
		for _, t := range tasks {
			if err := tx.Create(s.col.Doc(t.ID), encode(t)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create tasks: %w", err)
	}
	return nil
}

// PutTasks overwrites or inserts tasks keeping their ids and creation times.
func (s *Store) PutTasks(ctx context.Context, tasks []*models.Task) error {
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
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *fs.Transaction) error {
		for _, t := range tasks {
			if err := tx.Set(s.col.Doc(t.ID), encode(t)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to put tasks: %w", err)
	}
	return nil
}

func (s *Store) UpdateTaskStatus(ctx context.Context, id string, st models.TaskStatus) error {
	if !st.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidStatus, st)
	}

	_, err := s.col.Doc(id).Update(ctx, []fs.Update{
		{Path: "status", Value: string(st)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", models.ErrTaskNotFound, id)
		}
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.col.Doc(id).Delete(ctx, fs.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", models.ErrTaskNotFound, id)
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *Store) prepare(t *models.Task) error {
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
		t.CreatedAt = s.clock.Next()
	}
	return nil
}

func encode(t *models.Task) taskDoc {
	return taskDoc{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UnixNano(),
	}
}

func decode(snap *fs.DocumentSnapshot) (*models.Task, error) {
	var doc taskDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode task %s: %w", snap.Ref.ID, err)
	}
	return &models.Task{
		ID:          snap.Ref.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Status:      models.TaskStatus(doc.Status),
		CreatedAt:   time.Unix(0, doc.CreatedAt).UTC(),
	}, nil
}
