package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/todoplanner/apigateway/internal/reminder"
	"github.com/todoplanner/apigateway/internal/service/serviceutils"
)

type ReminderHandler struct {
	engine  *reminder.Engine
	history *reminder.History
}

func NewReminderHandler(engine *reminder.Engine, history *reminder.History) *ReminderHandler {
	return &ReminderHandler{engine: engine, history: history}
}

// PendingHandler handles GET /reminders/pending. Data is null when no
// reminder dialog is open.
func (h *ReminderHandler) PendingHandler(c echo.Context) error {
	return serviceutils.ResponseSuccess(c, http.StatusOK, "", h.engine.Pending())
}

type resolveRequest struct {
	Decision     string `json:"decision"`
	NewStartTime string `json:"newStartTime"`
	NewEndTime   string `json:"newEndTime"`
}

// ResolveHandler handles POST /reminders/resolve
func (h *ReminderHandler) ResolveHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "invalid request body", err)
	}

	newStart, err := parseOptionalTime("newStartTime", req.NewStartTime)
	if err != nil {
		return respondErr(c, "invalid newStartTime", err)
	}
	newEnd, err := parseOptionalTime("newEndTime", req.NewEndTime)
	if err != nil {
		return respondErr(c, "invalid newEndTime", err)
	}

	err = h.engine.Resolve(ctx, reminder.Decision(req.Decision), reminder.Payload{
		NewStartTime: newStart,
		NewEndTime:   newEnd,
	})
	if err != nil {
		if errors.Is(err, reminder.ErrNoPending) {
			return serviceutils.ResponseError(c, http.StatusConflict, "no pending reminder", err)
		}
		return respondErr(c, "failed to resolve reminder", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "reminder resolved", nil)
}

// CloseHandler handles POST /reminders/close. Closing without a pending
// reminder is a no-op.
func (h *ReminderHandler) CloseHandler(c echo.Context) error {
	h.engine.Close()
	return serviceutils.ResponseSuccess(c, http.StatusOK, "reminder closed", nil)
}

// HistoryHandler handles GET /reminders/history
func (h *ReminderHandler) HistoryHandler(c echo.Context) error {
	return serviceutils.ResponseSuccess(c, http.StatusOK, "", h.history.Recent())
}
