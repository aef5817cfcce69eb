// Package query turns client-supplied list parameters into a scoped,
// parameterized task query. Only values from fixed sets ever reach SQL text.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/models"
)

var (
	statuses   = []string{models.TaskPending, models.TaskInProgress, models.TaskCompleted}
	priorities = []string{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}

	// sortColumns maps accepted sortField values to column names.
	sortColumns = map[string]string{
		"title":      "title",
		"status":     "status",
		"priority":   "priority",
		"due_date":   "due_date",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
)

func ValidStatus(s string) bool   { return contains(statuses, s) }
func ValidPriority(p string) bool { return contains(priorities, p) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Filter narrows a task list. Empty fields are not applied.
type Filter struct {
	Status   string
	Priority string
	Search   string
}

// Sort orders a task list by a single field.
type Sort struct {
	Field string
	Desc  bool
}

var DefaultSort = Sort{Field: "created_at", Desc: true}

// Parse reads status, priority, search, sortField and sortDirection.
func Parse(q url.Values) (Filter, Sort, error) {
	f := Filter{
		Status:   strings.TrimSpace(q.Get("status")),
		Priority: strings.TrimSpace(q.Get("priority")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if f.Status != "" && !ValidStatus(f.Status) {
		return Filter{}, Sort{}, apperr.Validationf("Invalid status")
	}
	if f.Priority != "" && !ValidPriority(f.Priority) {
		return Filter{}, Sort{}, apperr.Validationf("Invalid priority")
	}

	s := DefaultSort
	if field := q.Get("sortField"); field != "" {
		if _, ok := sortColumns[field]; !ok {
			return Filter{}, Sort{}, apperr.Validationf("Invalid sortField")
		}
		s.Field = field
	}
	switch q.Get("sortDirection") {
	case "":
	case "asc":
		s.Desc = false
	case "desc":
		s.Desc = true
	default:
		return Filter{}, Sort{}, apperr.Validationf("Invalid sortDirection")
	}

	return f, s, nil
}

// SQL returns a WHERE clause scoped to ownerID and its positional args.
func (f Filter) SQL(ownerID string) (string, []any) {
	var (
		conds = []string{"user_id = $1"}
		args  = []any{ownerID}
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Status != "" {
		conds = append(conds, "status = "+next(f.Status))
	}
	if f.Priority != "" {
		conds = append(conds, "priority = "+next(f.Priority))
	}
	if f.Search != "" {
		p := next("%" + escapeLike(f.Search) + "%")
		conds = append(conds, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

// SQL returns the ORDER BY clause. Unknown fields fall back to the default.
func (s Sort) SQL() string {
	col, ok := sortColumns[s.Field]
	if !ok {
		col = sortColumns[DefaultSort.Field]
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return "ORDER BY " + col + " " + dir
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
