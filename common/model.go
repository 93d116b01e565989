package common

import (
	"time"

	uuid "github.com/kthomas/go.uuid"
)

// Model base class with uuid v4 primary key and accumulated errors
type Model struct {
	ID        uuid.UUID `sql:"primary_key;type:uuid;default:uuid_generate_v4()" json:"id"`
	CreatedAt time.Time `sql:"not null;default:now()" json:"created_at"`
	Errors    []*Error  `sql:"-" json:"-"`
}

// Error struct for accumulating model validation and persistence errors
type Error struct {
	Message *string `json:"message"`
	Status  *int    `json:"status,omitempty"`
}
