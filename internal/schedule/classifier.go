// Package schedule holds the pure view logic of the planner: which tasks
// belong to the "today" and "tomorrow" views and in what order they appear.
package schedule

import (
	"time"

	"github.com/todoplanner/apigateway/internal/domain"
)

// View selects which day window a listing covers.
type View string

const (
	ViewToday    View = "today"
	ViewTomorrow View = "tomorrow"
	ViewAll      View = "all"
)

// ValidView reports whether v is a known view name.
func ValidView(v View) bool {
	return v == ViewToday || v == ViewTomorrow || v == ViewAll
}

// DayWindow returns the inclusive [midnight, 23:59:59.999] bounds of the
// calendar day offset days after ref, in ref's location. AddDate keeps the
// arithmetic correct across DST transitions.
func DayWindow(ref time.Time, offset int) (time.Time, time.Time) {
	day := ref.AddDate(0, 0, offset)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 999_000_000, day.Location())
	return start, end
}

// Classify filters todos down to the ones belonging to view's day window
// relative to ref. ViewAll passes everything through. The result is a new
// slice in input order; sorting is a separate concern (see Sort).
func Classify(todos []domain.Todo, view View, ref time.Time) []domain.Todo {
	if view == ViewAll {
		out := make([]domain.Todo, len(todos))
		copy(out, todos)
		return out
	}

	offset := 0
	if view == ViewTomorrow {
		offset = 1
	}
	winStart, winEnd := DayWindow(ref, offset)

	out := make([]domain.Todo, 0, len(todos))
	for i := range todos {
		if inWindow(&todos[i], winStart, winEnd) {
			out = append(out, todos[i])
		}
	}
	return out
}

// inWindow applies the membership rules: effective start in window, effective
// end in window, the task spanning the whole window, or the legacy deadline
// falling in the window when none of the other rules matched.
func inWindow(t *domain.Todo, winStart, winEnd time.Time) bool {
	start := t.EffectiveStart()
	end := t.EffectiveEnd()

	// Tasks with no schedule only show up in the "all" view.
	if start == nil && end == nil {
		return false
	}

	if start != nil && between(*start, winStart, winEnd) {
		return true
	}
	if end != nil && between(*end, winStart, winEnd) {
		return true
	}
	if start != nil && end != nil && !start.After(winStart) && !end.Before(winEnd) {
		return true
	}
	if t.Deadline != nil && between(*t.Deadline, winStart, winEnd) {
		return true
	}
	return false
}

func between(t, lo, hi time.Time) bool {
	return !t.Before(lo) && !t.After(hi)
}
