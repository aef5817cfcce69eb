package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team-board status labels.
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// Assignment is a team-board task created by an admin and optionally
// assigned to one of the admin's users.
type Assignment struct {
	ID        primitive.ObjectID  `json:"id"                bson:"_id,omitempty"`
	AdminID   primitive.ObjectID  `json:"adminId"           bson:"adminId"`
	UserID    *primitive.ObjectID `json:"userId,omitempty"  bson:"userId,omitempty"`
	AssignTo  string              `json:"assign_to"         bson:"assign_to"`
	TaskName  string              `json:"task_name"         bson:"task_name"`
	DueDate   time.Time           `json:"due_date"          bson:"due_date"`
	Status    string              `json:"status"            bson:"status"`
	CreatedAt time.Time           `json:"createdAt"         bson:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"         bson:"updatedAt"`
}

// AssignmentScope restricts a query to one owner. Exactly one field is set:
// AdminID for admin routes, UserID for user routes.
type AssignmentScope struct {
	AdminID *primitive.ObjectID
	UserID  *primitive.ObjectID
}

// AssignmentPatch holds the replaceable fields; nil means keep.
type AssignmentPatch struct {
	TaskName *string
	DueDate  *time.Time
	Status   *string
}
