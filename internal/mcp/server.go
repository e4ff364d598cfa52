package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

// TaskService is what the tools operate on; service.TaskService satisfies it.
type TaskService interface {
	ListTasks(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error)
	Board(ctx context.Context) (models.Columns, error)
	AddTask(ctx context.Context, title, description string) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	GenerateTasks(ctx context.Context, prompt string) (*models.GenerateResult, error)
}

// NewServer creates a new MCP server.
func NewServer(svc TaskService, version string) *server.MCPServer {
	s := server.NewMCPServer("Taskboard", version)

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, optionally filtered by status."),
		mcp.WithString("status", mcp.Description("Filter by status (todo|inprogress|done)")),
	), listTasksHandler(svc))

	s.AddTool(mcp.NewTool("get_board",
		mcp.WithDescription("Get the board as three columns (todo, inprogress, done), newest task first."),
	), getBoardHandler(svc))

	s.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task to the To Do column."),
		mcp.WithString("title", mcp.Description("Task title"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Optional task description")),
	), addTaskHandler(svc))

	s.AddTool(mcp.NewTool("update_task_status",
		mcp.WithDescription("Move a task to another column."),
		mcp.WithString("id", mcp.Description("Task ID"), mcp.Required()),
		mcp.WithString("status", mcp.Description("New status (todo|inprogress|done)"), mcp.Required()),
	), updateTaskStatusHandler(svc))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task permanently."),
		mcp.WithString("id", mcp.Description("Task ID"), mcp.Required()),
	), deleteTaskHandler(svc))

	s.AddTool(mcp.NewTool("generate_tasks",
		mcp.WithDescription("Generate actionable tasks for a goal using Gemini and add them to To Do."),
		mcp.WithString("prompt", mcp.Description("The goal to break into tasks"), mcp.Required()),
	), generateTasksHandler(svc))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func listTasksHandler(svc TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)
		var status *models.TaskStatus
		if s, ok := args["status"].(string); ok && s != "" {
			ts, err := models.ParseTaskStatus(s)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			status = &ts
		}

		tasks, err := svc.ListTasks(ctx, status)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return jsonResult(map[string]any{"tasks": tasks})
	}
}

func getBoardHandler(svc TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cols, err := svc.Board(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(cols)
	}
}

func addTaskHandler(svc TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title := mcp.ParseString(request, "title", "")
		description := mcp.ParseString(request, "description", "")

		task, err := svc.AddTask(ctx, title, description)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(task)
	}
}

func updateTaskStatusHandler(svc TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		status, err := models.ParseTaskStatus(mcp.ParseString(request, "status", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		task, err := svc.UpdateTaskStatus(ctx, id, status)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(task)
	}
}

func deleteTaskHandler(svc TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		if err := svc.DeleteTask(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("Task deleted successfully"), nil
	}
}

func generateTasksHandler(svc TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prompt := mcp.ParseString(request, "prompt", "")

		result, err := svc.GenerateTasks(ctx, prompt)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		summary := fmt.Sprintf("Created %d task(s)", len(result.Created))
		if result.Skipped > 0 {
			summary += fmt.Sprintf(", skipped %d item(s) without a title", result.Skipped)
		}
		return mcp.NewToolResultText(summary + "\n" + string(data)), nil
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
