package schedule

import (
	"sort"

	"github.com/todoplanner/apigateway/internal/domain"
)

// Sort returns a new slice ordered for display: important tasks first, then
// by effective time ascending (tasks with no time at all sort last), then by
// creation time. The sort is stable, so fully tied tasks keep input order.
func Sort(todos []domain.Todo) []domain.Todo {
	out := make([]domain.Todo, len(todos))
	copy(out, todos)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]

		if a.Important != b.Important {
			return a.Important
		}

		at, bt := a.EffectiveTime(), b.EffectiveTime()
		switch {
		case at != nil && bt == nil:
			return true
		case at == nil && bt != nil:
			return false
		case at != nil && bt != nil && !at.Equal(*bt):
			return at.Before(*bt)
		}

		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out
}
