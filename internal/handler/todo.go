package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-service/internal/middleware"
	"github.com/iliyamo/todo-service/internal/model"
	"github.com/iliyamo/todo-service/internal/service"
)

// TodoHandler serves /todos.  Every route sits behind JWTAuth; the owner is
// always the verified user, never a value from the request.
type TodoHandler struct {
	Todos *service.TodoService
	Log   *slog.Logger
}

func NewTodoHandler(t *service.TodoService, log *slog.Logger) *TodoHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TodoHandler{Todos: t, Log: log}
}

type createTodoReq struct {
	Title     string `json:"title"`
	Completed *bool  `json:"completed"`
}

type updateTodoReq struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

type todoResp struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	OwnerID   uint64    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTodoResp(t *model.Todo) todoResp {
	return todoResp{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		OwnerID:   t.OwnerID,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// List returns the caller's todos, oldest first.
func (h *TodoHandler) List(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return middleware.Unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	items, err := h.Todos.List(ctx, uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	out := make([]todoResp, 0, len(items))
	for _, t := range items {
		out = append(out, toTodoResp(t))
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a todo owned by the caller.
func (h *TodoHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return middleware.Unauthorized(c)
	}
	var req createTodoReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	completed := req.Completed != nil && *req.Completed

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	t, err := h.Todos.Create(ctx, uid, req.Title, completed)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toTodoResp(t))
}

// Get returns one of the caller's todos.
func (h *TodoHandler) Get(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return middleware.Unauthorized(c)
	}
	id, ok := todoID(c)
	if !ok {
		return unprocessable(c, "id", "id must be a positive integer")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	t, err := h.Todos.Get(ctx, uid, id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toTodoResp(t))
}

// Update applies the fields present in the body; absent or null fields are
// left unchanged.
func (h *TodoHandler) Update(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return middleware.Unauthorized(c)
	}
	id, ok := todoID(c)
	if !ok {
		return unprocessable(c, "id", "id must be a positive integer")
	}
	var req updateTodoReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	t, err := h.Todos.Update(ctx, uid, id, model.TodoPatch{Title: req.Title, Completed: req.Completed})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toTodoResp(t))
}

// Delete removes one of the caller's todos.
func (h *TodoHandler) Delete(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return middleware.Unauthorized(c)
	}
	id, ok := todoID(c)
	if !ok {
		return unprocessable(c, "id", "id must be a positive integer")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Todos.Delete(ctx, uid, id); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func todoID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}
