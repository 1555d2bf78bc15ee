package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a member account. A user always carries at least one
// Authentication row: either a local password identity or a federated one.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	FullName  string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
