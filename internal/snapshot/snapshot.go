// Package snapshot dumps and restores the board as JSON lines: one meta
// record followed by one record per task, oldest first.
package snapshot

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/nick-dorsch/taskboard/pkg/models"
)

const Version = 1

const (
	recordMeta = "meta"
	recordTask = "task"
)

// Source is the read side needed to export.
type Source interface {
	ListTasks(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error)
}

// Sink is the write side needed to import.
type Sink interface {
	PutTasks(ctx context.Context, tasks []*models.Task) error
}

type metaRecord struct {
	RecordType string    `json:"record_type"`
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Tasks      int       `json:"tasks"`
}

type taskRecord struct {
	RecordType string `json:"record_type"`
	*models.Task
}

// Export writes every task of src to w.
func Export(ctx context.Context, src Source, w io.Writer) error {
	tasks, err := src.ListTasks(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	slices.SortStableFunc(tasks, func(a, b *models.Task) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	enc := json.NewEncoder(w)
	if err := enc.Encode(metaRecord{
		RecordType: recordMeta,
		Version:    Version,
		ExportedAt: time.Now().UTC(),
		Tasks:      len(tasks),
	}); err != nil {
		return fmt.Errorf("failed to write snapshot meta: %w", err)
	}

	for _, t := range tasks {
		if err := enc.Encode(taskRecord{RecordType: recordTask, Task: t}); err != nil {
			return fmt.Errorf("failed to write snapshot line: %w", err)
		}
	}
	return nil
}

// ExportFile writes the snapshot to path atomically using a temporary file.
func ExportFile(ctx context.Context, src Source, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "snapshot-*.jsonl")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	buf := bufio.NewWriter(tempFile)
	if err := Export(ctx, src, buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := tempFile.Name()
	tempFile = nil // Prevent defer from removing it

	if err := os.Rename(filename, path); err != nil {
		os.Remove(filename)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Import reads a snapshot from r and upserts its tasks into dst in one call,
// keeping their ids and creation times. It returns the number of tasks read.
func Import(ctx context.Context, dst Sink, r io.Reader) (int, error) {
	var tasks []*models.Task

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var base struct {
			RecordType string `json:"record_type"`
			Version    int    `json:"version"`
		}
		if err := json.Unmarshal(data, &base); err != nil {
			return 0, fmt.Errorf("line %d: failed to unmarshal record: %w", line, err)
		}

		switch base.RecordType {
		case recordMeta:
			if base.Version > Version {
				return 0, fmt.Errorf("line %d: unsupported snapshot version %d", line, base.Version)
			}
		case recordTask:
			var t models.Task
			if err := json.Unmarshal(data, &t); err != nil {
				return 0, fmt.Errorf("line %d: failed to unmarshal task: %w", line, err)
			}
			if t.ID == "" {
				return 0, fmt.Errorf("line %d: task has no id", line)
			}
			if !t.Status.Valid() {
				return 0, fmt.Errorf("line %d: %w: %q", line, models.ErrInvalidStatus, t.Status)
			}
			if strings.TrimSpace(t.Title) == "" {
				return 0, fmt.Errorf("line %d: task %s: %w", line, t.ID, models.ErrEmptyTitle)
			}
			if t.CreatedAt.IsZero() {
				return 0, fmt.Errorf("line %d: task %s has no created_at", line, t.ID)
			}
			tasks = append(tasks, &t)
		default:
			return 0, fmt.Errorf("line %d: unknown record type %q", line, base.RecordType)
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scanner error: %w", err)
	}

	if len(tasks) == 0 {
		return 0, nil
	}
	if err := dst.PutTasks(ctx, tasks); err != nil {
		return 0, err
	}
	return len(tasks), nil
}

func ImportFile(ctx context.Context, dst Sink, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	return Import(ctx, dst, file)
}
