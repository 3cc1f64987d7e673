package models

import "time"

const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

type Task struct {
	ID          string
	UserID      string
	CategoryID  *string
	Title       string
	Description *string
	Status      string
	Priority    string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Category is populated by task queries when CategoryID is set.
	Category *Category
}
