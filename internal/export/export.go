// Package export renders the board as a JSON, CSV or PDF report.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

// Formats lists the supported report formats.
var Formats = []string{"json", "csv", "pdf"}

var ErrUnknownFormat = errors.New("unknown export format")

// CheckFormat reports ErrUnknownFormat for anything outside Formats.
func CheckFormat(format string) error {
	if slices.Contains(Formats, strings.ToLower(format)) {
		return nil
	}
	return fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
}

type Source interface {
	ListTasks(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error)
}

type Exporter struct{ src Source }

func NewExporter(src Source) *Exporter { return &Exporter{src: src} }

// Export renders every task grouped by column, newest first within a column.
func (e *Exporter) Export(ctx context.Context, format string) ([]byte, error) {
	if err := CheckFormat(format); err != nil {
		return nil, err
	}

	tasks, err := e.src.ListTasks(ctx, nil)
	if err != nil {
		return nil, err
	}
	cols := models.Partition(tasks)

	switch strings.ToLower(format) {
	case "json":
		return json.MarshalIndent(cols, "", "  ")
	case "csv":
		return renderCSV(cols)
	case "pdf":
		return renderPDF(cols)
	default:
		return nil, CheckFormat(format)
	}
}

func renderCSV(cols models.Columns) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"column", "id", "title", "description", "status", "created_at"})
	for _, status := range models.Statuses {
		for _, t := range cols.Column(status) {
			_ = w.Write([]string{
				status.Label(),
				t.ID,
				t.Title,
				t.Description,
				string(t.Status),
				t.CreatedAt.Format(time.RFC3339Nano),
			})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func renderPDF(cols models.Columns) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Task Board")
	pdf.Ln(12)

	for _, status := range models.Statuses {
		col := cols.Column(status)

		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, tr(fmt.Sprintf("%s (%d)", status.Label(), len(col))))
		pdf.Ln(9)

		pdf.SetFont("Arial", "", 10)
		if len(col) == 0 {
			pdf.MultiCell(0, 6, "No tasks", "0", "L", false)
		}
		for _, t := range col {
			line := "- " + t.Title
			if t.Description != "" {
				line += ": " + t.Description
			}
			pdf.MultiCell(0, 6, tr(line), "0", "L", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
