package models

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
