package query

import (
	"strings"
	"time"

	"github.com/ayush/task-manager/backend/internal/models"
)

// Match reports whether t passes the filter. Ownership is checked by the caller.
func (f Filter) Match(t models.Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		desc := ""
		if t.Description != nil {
			desc = *t.Description
		}
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(desc), term) {
			return false
		}
	}
	return true
}

// Less orders a before b. Ties report false so a stable sort keeps store order.
// Null due dates sort last ascending, as Postgres does.
func (s Sort) Less(a, b models.Task) bool {
	c := compare(s.Field, a, b)
	if s.Desc {
		return c > 0
	}
	return c < 0
}

func compare(field string, a, b models.Task) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "status":
		return strings.Compare(a.Status, b.Status)
	case "priority":
		return strings.Compare(a.Priority, b.Priority)
	case "due_date":
		return compareTimePtr(a.DueDate, b.DueDate)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}
