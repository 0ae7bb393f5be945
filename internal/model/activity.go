package model

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog is an append-only audit row. PublishedAt is set once the
// row has been fanned out to the message broker.
type ActivityLog struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Action      string     `json:"action" db:"action"`
	Details     JSONMap    `json:"details" db:"-"`
	RawDetails  []byte     `json:"-" db:"details"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	PublishedAt *time.Time `json:"-" db:"published_at"`
}

const (
	DefaultActivityLimit = 10
	MaxActivityLimit     = 50
)
