package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/todoplanner/apigateway/internal/domain"
	"github.com/todoplanner/apigateway/internal/logger"
	"github.com/todoplanner/apigateway/internal/schedule"
	"github.com/todoplanner/apigateway/internal/service"
	"github.com/todoplanner/apigateway/internal/service/serviceutils"
)

type TodoHandler struct {
	svc service.TodoService
}

func NewTodoHandler(svc service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// createTodoRequest is the wire shape of a new task. Timestamps are RFC 3339
// strings; empty means unset.
type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Important   bool   `json:"important"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Deadline    string `json:"deadline"`
}

// parseOptionalTime turns an RFC 3339 string into a timestamp, nil when empty.
func parseOptionalTime(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, &domain.ValidationError{Field: field, Reason: fmt.Sprintf("invalid timestamp %q, expected RFC 3339", value)}
	}
	return &t, nil
}

// respondErr maps domain errors onto HTTP statuses: validation is the
// client's fault, a missing record is 404, anything else is ours.
func respondErr(c echo.Context, msg string, err error) error {
	switch {
	case domain.IsValidation(err):
		return serviceutils.ResponseError(c, http.StatusBadRequest, msg, err)
	case errors.Is(err, domain.ErrNotFound):
		return serviceutils.ResponseError(c, http.StatusNotFound, msg, err)
	default:
		logger.ErrorLog(c.Request().Context(), "%s: %v", msg, err)
		return serviceutils.ResponseError(c, http.StatusInternalServerError, msg, err)
	}
}

// CreateHandler handles POST /todos
func (h *TodoHandler) CreateHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var req createTodoRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "invalid request body", err)
	}

	start, err := parseOptionalTime("startTime", req.StartTime)
	if err != nil {
		return respondErr(c, "invalid startTime", err)
	}
	end, err := parseOptionalTime("endTime", req.EndTime)
	if err != nil {
		return respondErr(c, "invalid endTime", err)
	}
	deadline, err := parseOptionalTime("deadline", req.Deadline)
	if err != nil {
		return respondErr(c, "invalid deadline", err)
	}

	todo, err := h.svc.Add(ctx, service.AddTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Important:   req.Important,
		StartTime:   start,
		EndTime:     end,
		Deadline:    deadline,
	})
	if err != nil {
		return respondErr(c, "failed to create todo", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusCreated, "todo created", todo)
}

// ListHandler handles GET /todos?view=today|tomorrow|all (default today)
func (h *TodoHandler) ListHandler(c echo.Context) error {
	ctx := c.Request().Context()

	view := schedule.View(c.QueryParam("view"))
	if view == "" {
		view = schedule.ViewToday
	}

	todos, err := h.svc.List(ctx, view, time.Now())
	if err != nil {
		return respondErr(c, "failed to list todos", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "", todos)
}

// GetHandler handles GET /todos/:id
func (h *TodoHandler) GetHandler(c echo.Context) error {
	todo, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondErr(c, "failed to load todo", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "", todo)
}

// DeleteHandler handles DELETE /todos/:id
func (h *TodoHandler) DeleteHandler(c echo.Context) error {
	if err := h.svc.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return respondErr(c, "failed to delete todo", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "todo deleted", nil)
}

// UpdateDoneHandler handles PATCH /todos/:id/done
func (h *TodoHandler) UpdateDoneHandler(c echo.Context) error {
	var req struct {
		Done bool `json:"done"`
	}
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "invalid request body", err)
	}

	if err := h.svc.ToggleDone(c.Request().Context(), c.Param("id"), req.Done); err != nil {
		return respondErr(c, "failed to update todo", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "todo updated", nil)
}

// UpdateStatusHandler handles PATCH /todos/:id/status
func (h *TodoHandler) UpdateStatusHandler(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "invalid request body", err)
	}

	if err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), domain.Status(req.Status)); err != nil {
		return respondErr(c, "failed to update todo status", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "todo updated", nil)
}

// UpdateStartTimeHandler handles PATCH /todos/:id/start-time
// An empty startTime clears the field.
func (h *TodoHandler) UpdateStartTimeHandler(c echo.Context) error {
	var req struct {
		StartTime string `json:"startTime"`
	}
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "invalid request body", err)
	}

	start, err := parseOptionalTime("startTime", req.StartTime)
	if err != nil {
		return respondErr(c, "invalid startTime", err)
	}
	if err := h.svc.UpdateStartTime(c.Request().Context(), c.Param("id"), start); err != nil {
		return respondErr(c, "failed to update startTime", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "todo updated", nil)
}

// UpdateEndTimeHandler handles PATCH /todos/:id/end-time
// An empty endTime clears the field.
func (h *TodoHandler) UpdateEndTimeHandler(c echo.Context) error {
	var req struct {
		EndTime string `json:"endTime"`
	}
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "invalid request body", err)
	}

	end, err := parseOptionalTime("endTime", req.EndTime)
	if err != nil {
		return respondErr(c, "invalid endTime", err)
	}
	if err := h.svc.UpdateEndTime(c.Request().Context(), c.Param("id"), end); err != nil {
		return respondErr(c, "failed to update endTime", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "todo updated", nil)
}

// SearchHandler handles GET /todos/search?q=
func (h *TodoHandler) SearchHandler(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "missing query parameter q", nil)
	}

	todos, err := h.svc.Search(c.Request().Context(), query)
	if err != nil {
		return respondErr(c, "search failed", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "", todos)
}
