package team

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/models"
)

// emailPattern is anchored only at the end, so any address ending in a
// valid local@domain suffix passes (john+tag@example.com).
var emailPattern = regexp.MustCompile(`\w+([.-]?\w)*@\w+([.-]?\w)*(\.\w{2,3})+$`)

const maxLastNameLen = 30

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignup(req *models.SignupRequest) error {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = normalizeEmail(req.Email)

	switch {
	case req.FirstName == "":
		return apperr.Validationf("First name is required")
	case req.LastName == "":
		return apperr.Validationf("Full name is required")
	case utf8.RuneCountInString(req.LastName) > maxLastNameLen:
		return apperr.Validationf("Full name should be less than 30 characters")
	case req.Email == "":
		return apperr.Validationf("Email is required")
	case !emailPattern.MatchString(req.Email):
		return apperr.Validationf("Invalid email id")
	case req.Password == "":
		return apperr.Validationf("Password is required")
	}
	return nil
}

func validStatus(s string) bool {
	switch s {
	case models.StatusToDo, models.StatusInProgress, models.StatusCompleted:
		return true
	}
	return false
}

// parseDueDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperr.Validationf("due_date is required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validationf("due_date must be a valid date")
}
