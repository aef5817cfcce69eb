package tasks

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/models"
	"github.com/ayush/task-manager/backend/internal/query"
)

const maxDescriptionLen = 500

var (
	ErrTitleRequired   = apperr.Validationf("Title is required and must be a non-empty string")
	ErrDescriptionLong = apperr.Validationf("Description must be less than 500 characters")
	ErrInvalidStatus   = apperr.Validationf("Invalid status")
	ErrInvalidPriority = apperr.Validationf("Invalid priority")
	ErrInvalidDueDate  = apperr.Validationf("due_date must be an RFC 3339 timestamp or YYYY-MM-DD")
	ErrNoFieldsToPatch = apperr.Validationf("provide at least one field to update")
)

// Input is the JSON body for creating or updating a task. Nil fields are
// absent; an empty description or due_date clears it on update.
type Input struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

func (in Input) empty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil && in.Priority == nil && in.DueDate == nil
}

// toPatch validates every supplied field.
func (in Input) toPatch() (models.TaskPatch, error) {
	var p models.TaskPatch

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return p, ErrTitleRequired
		}
		p.Title = &title
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if utf8.RuneCountInString(desc) > maxDescriptionLen {
			return p, ErrDescriptionLong
		}
		if desc == "" {
			p.ClearDescription = true
		} else {
			p.Description = &desc
		}
	}
	if in.Status != nil {
		if !query.ValidStatus(*in.Status) {
			return p, ErrInvalidStatus
		}
		p.Status = in.Status
	}
	if in.Priority != nil {
		if !query.ValidPriority(*in.Priority) {
			return p, ErrInvalidPriority
		}
		p.Priority = in.Priority
	}
	if in.DueDate != nil {
		raw := strings.TrimSpace(*in.DueDate)
		if raw == "" {
			p.ClearDueDate = true
		} else {
			due, err := parseDueDate(raw)
			if err != nil {
				return p, err
			}
			p.DueDate = &due
		}
	}
	return p, nil
}

func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDueDate
}
