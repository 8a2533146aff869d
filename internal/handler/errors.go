package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-service/internal/middleware"
	"github.com/iliyamo/todo-service/internal/service"
)

// errorResp is the body of every non-2xx response written by handlers.
type errorResp struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

const msgTodoNotFound = "todo not found"

// writeError maps the service error taxonomy to a status code and body.
// Anything outside the taxonomy is logged and reported as a bare 500.
func writeError(c echo.Context, log *slog.Logger, err error) error {
	var fe *service.FieldError
	switch {
	case errors.As(err, &fe) && errors.Is(fe.Kind, service.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, errorResp{Error: fe.Message, Field: fe.Field})
	case errors.As(err, &fe) && errors.Is(fe.Kind, service.ErrConflict):
		return c.JSON(http.StatusConflict, errorResp{Error: fe.Message, Field: fe.Field})
	case errors.Is(err, service.ErrUnauthorized):
		return middleware.Unauthorized(c)
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResp{Error: msgTodoNotFound})
	}
	log.ErrorContext(c.Request().Context(), "request failed",
		"method", c.Request().Method, "path", c.Path(), "err", err)
	return c.JSON(http.StatusInternalServerError, errorResp{Error: "internal server error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResp{Error: msg})
}

func unprocessable(c echo.Context, field, msg string) error {
	return c.JSON(http.StatusUnprocessableEntity, errorResp{Error: msg, Field: field})
}
