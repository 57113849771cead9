package domain

import "time"

// User represents a wallet owner.
type User struct {
	ID             string
	Email          string
	Name           string
	HashedPassword string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
