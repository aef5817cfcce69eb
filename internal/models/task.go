package models

import "time"

const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a row in the personal app's tasks table.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskPatch holds the replaceable fields of a task; nil means keep.
// ClearDescription and ClearDueDate set the column to null.
type TaskPatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *string
	Priority         *string
	DueDate          *time.Time
	ClearDueDate     bool
}
