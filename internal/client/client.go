// Package client talks to a running taskboard API server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nick-dorsch/taskboard/internal/apierr"
	"github.com/nick-dorsch/taskboard/internal/generate"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

// ErrInvalidInput is returned for requests the server rejected as malformed.
var ErrInvalidInput = errors.New("invalid input")

// APIError is a non-2xx response. It unwraps to the domain error named by the
// response code, and to a status-level error, so callers can use errors.Is the
// same way they would against a local store.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() []error {
	var errs []error
	if err := apierr.Lookup(e.Code); err != nil {
		errs = append(errs, err)
	}

	switch e.StatusCode {
	case http.StatusNotFound:
		errs = append(errs, models.ErrTaskNotFound)
	case http.StatusBadRequest:
		errs = append(errs, ErrInvalidInput)
	case http.StatusServiceUnavailable:
		errs = append(errs, generate.ErrNotConfigured)
	case http.StatusBadGateway:
		errs = append(errs, generate.ErrUpstream)
	}
	return errs
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL. Requests are bounded by
// their context only; generation can take as long as the model needs.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

func (c *Client) ListTasks(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error) {
	path := "/api/tasks"
	if status != nil {
		path += "?" + url.Values{"status": {string(*status)}}.Encode()
	}

	var tasks []*models.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) Board(ctx context.Context) (models.Columns, error) {
	var cols models.Columns
	err := c.do(ctx, http.MethodGet, "/api/board", nil, &cols)
	return cols, err
}

func (c *Client) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) AddTask(ctx context.Context, title, description string) (*models.Task, error) {
	body := map[string]string{"title": title, "description": description}

	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error) {
	body := map[string]string{"status": string(status)}

	var task models.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id)+"/status", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) GenerateTasks(ctx context.Context, prompt string) (*models.GenerateResult, error) {
	var result models.GenerateResult
	if err := c.do(ctx, http.MethodPost, "/api/generate", map[string]string{"prompt": prompt}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &APIError{StatusCode: resp.StatusCode, Code: e.Code, Message: e.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
