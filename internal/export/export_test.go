package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nick-dorsch/taskboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	tasks []*models.Task
	err   error
}

func (f *fakeSource) ListTasks(context.Context, *models.TaskStatus) ([]*models.Task, error) {
	return f.tasks, f.err
}

func sampleSource() *fakeSource {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return &fakeSource{tasks: []*models.Task{
		{ID: "1", Title: "old todo", Status: models.TaskStatusTodo, CreatedAt: base},
		{ID: "2", Title: "new todo", Description: "with, comma", Status: models.TaskStatusTodo, CreatedAt: base.Add(time.Hour)},
		{ID: "3", Title: "shipped", Status: models.TaskStatusDone, CreatedAt: base.Add(2 * time.Hour)},
	}}
}

func TestExportJSON(t *testing.T) {
	out, err := NewExporter(sampleSource()).Export(context.Background(), "json")
	require.NoError(t, err)

	var cols models.Columns
	require.NoError(t, json.Unmarshal(out, &cols))
	require.Len(t, cols.Todo, 2)
	assert.Equal(t, "2", cols.Todo[0].ID)
	assert.Empty(t, cols.InProgress)
	assert.Len(t, cols.Done, 1)
}

func TestExportCSV(t *testing.T) {
	out, err := NewExporter(sampleSource()).Export(context.Background(), "CSV")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"column", "id", "title", "description", "status", "created_at"}, records[0])
	assert.Equal(t, "To Do", records[1][0])
	assert.Equal(t, "new todo", records[1][2])
	assert.Equal(t, "with, comma", records[1][3])
	assert.Equal(t, "Done", records[3][0])
}

func TestExportPDF(t *testing.T) {
	out, err := NewExporter(sampleSource()).Export(context.Background(), "pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := NewExporter(sampleSource()).Export(context.Background(), "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.ErrorContains(t, err, "json, csv, pdf")

	assert.NoError(t, CheckFormat("PDF"))
}

func TestExportSourceError(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewExporter(&fakeSource{err: boom}).Export(context.Background(), "json")
	assert.ErrorIs(t, err, boom)
}
