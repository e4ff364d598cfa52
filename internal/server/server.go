// Package server exposes the task board as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/nick-dorsch/taskboard/internal/apierr"
	"github.com/nick-dorsch/taskboard/internal/service"
	"github.com/nick-dorsch/taskboard/pkg/models"
	"github.com/rs/zerolog"
)

// TaskService is the subset of service.TaskService the API serves.
type TaskService interface {
	ListTasks(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error)
	Board(ctx context.Context) (models.Columns, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	AddTask(ctx context.Context, title, description string) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	GenerateTasks(ctx context.Context, prompt string) (*models.GenerateResult, error)
}

type Server struct {
	svc    TaskService
	log    zerolog.Logger
	engine *gin.Engine
	server *http.Server
}

type addTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,taskstatus"`
}

type generateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

var registerValidators sync.Once

func NewServer(svc TaskService, log zerolog.Logger) *Server {
	registerValidators.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
				return models.TaskStatus(fl.Field().String()).Valid()
			})
		}
	})

	s := &Server{
		svc: svc,
		log: log.With().Str("component", "server").Logger(),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/tasks", s.listTasks)
	api.GET("/tasks/:id", s.getTask)
	api.POST("/tasks", s.addTask)
	api.PATCH("/tasks/:id/status", s.updateTaskStatus)
	api.DELETE("/tasks/:id", s.deleteTask)
	api.POST("/generate", s.generateTasks)
	api.GET("/board", s.board)

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on addr and blocks until the server stops. A graceful
// Shutdown makes it return nil.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Str("addr", addr).Msg("listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) listTasks(c *gin.Context) {
	var filter *models.TaskStatus
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseTaskStatus(raw)
		if err != nil {
			s.fail(c, err)
			return
		}
		filter = &status
	}

	tasks, err := s.svc.ListTasks(c.Request.Context(), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) getTask(c *gin.Context) {
	task, err := s.svc.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) addTask(c *gin.Context) {
	var req addTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: title is required", "code": apierr.CodeInvalidRequest})
		return
	}

	task, err := s.svc.AddTask(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) updateTaskStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: must be one of todo, inprogress, done", models.ErrInvalidStatus))
		return
	}

	task, err := s.svc.UpdateTaskStatus(c.Request.Context(), c.Param("id"), models.TaskStatus(req.Status))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	if err := s.svc.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) generateTasks(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, service.ErrEmptyPrompt)
		return
	}

	result, err := s.svc.GenerateTasks(c.Request.Context(), req.Prompt)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) board(c *gin.Context) {
	cols, err := s.svc.Board(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cols)
}

func (s *Server) fail(c *gin.Context, err error) {
	code, status := apierr.Classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
