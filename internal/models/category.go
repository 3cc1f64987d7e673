package models

import "time"

type Category struct {
	ID          string
	UserID      string
	Name        string
	Color       *string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
