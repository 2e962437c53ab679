package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/todoplanner/apigateway/internal/domain"
	"github.com/todoplanner/apigateway/internal/logger"
)

// ErrNoPending is returned by Resolve when no reminder dialog is open.
var ErrNoPending = errors.New("no pending reminder to resolve")

// Decision is the user's answer to a reminder dialog.
type Decision string

const (
	DecisionStarted       Decision = "started"
	DecisionPostpone      Decision = "postpone"
	DecisionCancel        Decision = "cancel"
	DecisionCompleted     Decision = "completed"
	DecisionPartiallyDone Decision = "partiallyDone"
)

// ValidDecision reports whether d is one of the known dialog answers.
func ValidDecision(d Decision) bool {
	switch d {
	case DecisionStarted, DecisionPostpone, DecisionCancel, DecisionCompleted, DecisionPartiallyDone:
		return true
	}
	return false
}

// Payload carries the optional new times accompanying a decision.
type Payload struct {
	NewStartTime *time.Time
	NewEndTime   *time.Time
}

// Resolve applies the user's decision on the pending reminder to the task and
// dismisses the dialog. An unknown decision is rejected up front, before the
// dialog is touched. For known decisions the dismissal is unconditional: a
// failed mutation is returned to the caller but does not re-offer the
// reminder (best effort, as the reminder key stays fired either way). Each
// decision maps to a single repository call, so a failure leaves the record
// untouched.
func (e *Engine) Resolve(ctx context.Context, decision Decision, payload Payload) error {
	if !ValidDecision(decision) {
		return &domain.ValidationError{Field: "decision", Reason: fmt.Sprintf("unknown decision %q", decision)}
	}

	e.mu.Lock()
	ev := e.pending
	e.pending = nil
	e.mu.Unlock()

	if ev == nil {
		return ErrNoPending
	}

	err := e.applyDecision(ctx, ev.Todo.ID, decision, payload)
	if err != nil {
		logger.ErrorLog(ctx, "reminder resolution %q on todo %s failed: %v", decision, ev.Todo.ID, err)
	}
	return err
}

func (e *Engine) applyDecision(ctx context.Context, id string, decision Decision, payload Payload) error {
	switch decision {
	case DecisionStarted:
		s := domain.StatusInProgress
		return e.repo.Update(ctx, id, domain.TodoPatch{Status: &s})

	case DecisionPostpone:
		if payload.NewStartTime == nil {
			return nil
		}
		return e.repo.Update(ctx, id, domain.TodoPatch{SetStartTime: true, StartTime: payload.NewStartTime})

	case DecisionCancel:
		return e.repo.Delete(ctx, id)

	case DecisionCompleted:
		s := domain.StatusCompleted
		return e.repo.Update(ctx, id, domain.TodoPatch{Status: &s})

	case DecisionPartiallyDone:
		s := domain.StatusPartiallyDone
		patch := domain.TodoPatch{Status: &s}
		if payload.NewEndTime != nil {
			patch.SetEndTime = true
			patch.EndTime = payload.NewEndTime
		}
		return e.repo.Update(ctx, id, patch)

	default:
		return &domain.ValidationError{Field: "decision", Reason: fmt.Sprintf("unknown decision %q", decision)}
	}
}
