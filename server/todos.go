package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/existflow/todoserver/internal/db"
	"github.com/existflow/todoserver/internal/logger"
	"github.com/existflow/todoserver/internal/model"
	"github.com/labstack/echo/v4"
)

// dueDate accepts an RFC 3339 timestamp or a calendar date. Empty strings
// and null leave it unset.
type dueDate struct {
	t *time.Time
}

func (d *dueDate) UnmarshalJSON(data []byte) error {
	d.t = nil
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("dueDate must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			d.t = &t
			return nil
		}
	}
	return fmt.Errorf("invalid dueDate %q", s)
}

type createTodoRequest struct {
	Title     string  `json:"title" validate:"notblank"`
	DueDate   dueDate `json:"dueDate"`
	ProjectID *string `json:"projectId"`
	Priority  *int    `json:"priority"`
}

type updateTodoRequest struct {
	ID          string  `json:"_id"`
	Title       string  `json:"title" validate:"notblank"`
	Completed   bool    `json:"completed"`
	ProjectID   *string `json:"projectId"`
	DueDate     dueDate `json:"dueDate"`
	Description *string `json:"description"`
	Priority    *int    `json:"priority"`
}

type deleteTodoRequest struct {
	ID string `json:"_id" validate:"required"`
}

var todoMessages = map[string]string{
	"Title": "No todo title",
	"ID":    "TodoId required",
}

// optionalID treats an empty reference like an absent one
func optionalID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	return &trimmed
}

// handleListTodos returns every todo owned by the caller
func (s *Server) handleListTodos(c echo.Context) error {
	uid := userID(c)

	todos, err := s.store.ListTodos(c.Request().Context(), uid)
	if err != nil {
		return err
	}

	if len(todos) == 0 {
		logger.Info("No todos found", logger.F("uid", uid))
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, todos)
}

// handleCreateTodo creates a todo and links it to its project
func (s *Server) handleCreateTodo(c echo.Context) error {
	var req createTodoRequest
	if ok, err := bindAndValidate(c, &req, todoMessages); !ok {
		return err
	}

	ctx := c.Request().Context()
	uid := userID(c)

	todo := model.NewTodo(uid, req.Title)
	todo.DueDate = req.DueDate.t
	todo.ProjectID = optionalID(req.ProjectID)
	todo.Priority = req.Priority
	if isAnonymous(c) && s.expireAt != nil {
		expireAt := s.expireAt(s.now())
		todo.ExpireAt = &expireAt
	}

	if err := s.store.CreateTodo(ctx, todo); err != nil {
		if errors.Is(err, db.ErrNotCreated) {
			return badRequest(c, "Invalid todo data")
		}
		return err
	}

	if projectID := todo.ProjectRef(); projectID != "" {
		if err := s.store.AddTodoToProject(ctx, uid, projectID, todo.ID); err != nil {
			return err
		}
	}

	logger.Info("Todo created", logger.F("uid", uid), logger.F("todo_id", todo.ID))
	return c.JSON(http.StatusCreated, msg("New todo has been created"))
}

// handleUpdateTodo replaces every mutable field of a todo
func (s *Server) handleUpdateTodo(c echo.Context) error {
	var req updateTodoRequest
	if ok, err := bindAndValidate(c, &req, todoMessages); !ok {
		return err
	}

	ctx := c.Request().Context()
	uid := userID(c)

	todo, err := s.store.GetTodo(ctx, uid, req.ID)
	if errors.Is(err, db.ErrNotFound) {
		return badRequest(c, "Todo not found")
	}
	if err != nil {
		return err
	}

	previous := todo.ProjectRef()
	projectID := optionalID(req.ProjectID)

	if projectID != nil && *projectID != previous {
		if err := s.store.AddTodoToProject(ctx, uid, *projectID, todo.ID); err != nil {
			return err
		}
	}

	// The previous project keeps its reference unless detaching is enabled
	if s.detachOnMove && previous != "" && (projectID == nil || *projectID != previous) {
		if err := s.store.RemoveTodoFromProject(ctx, uid, previous, todo.ID); err != nil {
			return err
		}
	}

	todo.Title = req.Title
	todo.Completed = req.Completed
	todo.ProjectID = projectID
	todo.DueDate = req.DueDate.t
	todo.Description = req.Description
	todo.Priority = req.Priority

	if err := s.store.UpdateTodo(ctx, todo); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return badRequest(c, "Todo not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, msg(fmt.Sprintf("Todo updated. id: %s", todo.ID)))
}

// handleDeleteTodo removes a todo and its project back-reference
func (s *Server) handleDeleteTodo(c echo.Context) error {
	var req deleteTodoRequest
	if ok, err := bindAndValidate(c, &req, todoMessages); !ok {
		return err
	}

	ctx := c.Request().Context()
	uid := userID(c)

	todo, err := s.store.GetTodo(ctx, uid, req.ID)
	if errors.Is(err, db.ErrNotFound) {
		return badRequest(c, "Todo not found")
	}
	if err != nil {
		return err
	}

	if projectID := todo.ProjectRef(); projectID != "" {
		if err := s.store.RemoveTodoFromProject(ctx, uid, projectID, todo.ID); err != nil {
			return err
		}
	}

	if err := s.store.DeleteTodo(ctx, uid, todo.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return badRequest(c, "Todo not found")
		}
		return err
	}

	logger.Info("Todo deleted", logger.F("uid", uid), logger.F("todo_id", todo.ID))
	return c.JSON(http.StatusOK, msg(fmt.Sprintf("Todo with ID %s has been deleted", todo.ID)))
}
