package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the lifecycle state of a todo.
type Status string

const (
	StatusPending       Status = "pending"
	StatusInProgress    Status = "inProgress"
	StatusCompleted     Status = "completed"
	StatusPartiallyDone Status = "partiallyDone"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusPartiallyDone:
		return true
	}
	return false
}

const (
	MaxTitleLen       = 120
	MaxDescriptionLen = 500
)

// Todo is a single task record.
//
// StartTime/EndTime are the current schema; Deadline only exists on records
// created before the time-window model and acts as a fallback for both ends.
// Done mirrors Status: it is true iff Status == StatusCompleted.
type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Important   bool       `json:"important"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Deadline    *time.Time `json:"deadline"`
	Done        bool       `json:"done"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewTodo validates the creation payload and builds a pending record.
// The caller assigns ID and CreatedAt (typically repository.Create).
func NewTodo(title, description string, important bool, start, end, deadline *time.Time) (*Todo, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if n := utf8.RuneCountInString(title); n < 1 || n > MaxTitleLen {
		return nil, &ValidationError{Field: "title", Reason: "must be 1-120 characters after trimming"}
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLen {
		return nil, &ValidationError{Field: "description", Reason: "must be at most 500 characters after trimming"}
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, &ValidationError{Field: "startTime", Reason: "startTime must not be after endTime"}
	}

	return &Todo{
		Title:       title,
		Description: description,
		Important:   important,
		StartTime:   start,
		EndTime:     end,
		Deadline:    deadline,
		Done:        false,
		Status:      StatusPending,
	}, nil
}

// EffectiveStart returns startTime, falling back to the legacy deadline.
func (t *Todo) EffectiveStart() *time.Time {
	if t.StartTime != nil {
		return t.StartTime
	}
	return t.Deadline
}

// EffectiveEnd returns endTime, falling back to the legacy deadline.
func (t *Todo) EffectiveEnd() *time.Time {
	if t.EndTime != nil {
		return t.EndTime
	}
	return t.Deadline
}

// EffectiveTime is the sort key instant: first defined of startTime, endTime,
// deadline. Nil means the task has no schedule at all.
func (t *Todo) EffectiveTime() *time.Time {
	if t.StartTime != nil {
		return t.StartTime
	}
	if t.EndTime != nil {
		return t.EndTime
	}
	return t.Deadline
}

// SetStatus updates the lifecycle state keeping the Done mirror consistent.
func (t *Todo) SetStatus(s Status) {
	t.Status = s
	t.Done = s == StatusCompleted
}

// Normalize upgrades a record read from storage to the current schema.
// Deadline-only legacy rows get endTime=deadline and a status derived from
// done, matching the original store migration.
func (t *Todo) Normalize() {
	if t.Status == "" {
		if t.Done {
			t.Status = StatusCompleted
		} else {
			t.Status = StatusPending
		}
	}
	if t.StartTime == nil && t.EndTime == nil && t.Deadline != nil {
		end := *t.Deadline
		t.EndTime = &end
	}
	t.Done = t.Status == StatusCompleted
}
