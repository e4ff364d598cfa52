// Package generate turns a free-text goal into draft tasks by asking a
// language model for a JSON array of {title, description} items.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/nick-dorsch/taskboard/embed/prompts"
	"github.com/nick-dorsch/taskboard/pkg/models"
	"github.com/rs/zerolog"
)

// Model performs a single text generation call.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var promptTmpl = template.Must(template.New("generate").Parse(prompts.Generate))

// Draft is the parsed model output: tasks ready to insert plus the number of
// array elements that could not be used.
type Draft struct {
	Tasks   []*models.Task
	Skipped int
}

type Generator struct {
	model    Model
	minTasks int
	maxTasks int
	log      zerolog.Logger
}

func New(model Model, minTasks, maxTasks int, log zerolog.Logger) *Generator {
	return &Generator{
		model:    model,
		minTasks: minTasks,
		maxTasks: maxTasks,
		log:      log.With().Str("component", "generate").Logger(),
	}
}

// Prompt renders the instruction sent to the model for goal.
func (g *Generator) Prompt(goal string) (string, error) {
	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, struct {
		Min, Max int
		Goal     string
	}{g.minTasks, g.maxTasks, goal})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// Draft calls the model once and parses its answer. Nothing is persisted.
func (g *Generator) Draft(ctx context.Context, goal string) (*Draft, error) {
	prompt, err := g.Prompt(goal)
	if err != nil {
		return nil, err
	}

	text, err := g.model.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	draft, err := Parse(text)
	if err != nil {
		g.log.Warn().Err(err).Msg("discarding model output")
		return nil, err
	}

	if draft.Skipped > 0 {
		g.log.Debug().
			Int("kept", len(draft.Tasks)).
			Int("skipped", draft.Skipped).
			Msg("skipped items without a usable title")
	}
	return draft, nil
}

// Parse converts raw model text into a Draft. Elements whose title is a
// non-empty string are kept; a missing or non-string description becomes "".
func Parse(text string) (*Draft, error) {
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, ErrInvalidShape
	}

	draft := &Draft{Tasks: []*models.Task{}}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			draft.Skipped++
			continue
		}

		title, ok := obj["title"].(string)
		if !ok || strings.TrimSpace(title) == "" {
			draft.Skipped++
			continue
		}

		description, _ := obj["description"].(string)
		draft.Tasks = append(draft.Tasks, &models.Task{
			Title:       title,
			Description: description,
			Status:      models.TaskStatusTodo,
		})
	}
	return draft, nil
}
