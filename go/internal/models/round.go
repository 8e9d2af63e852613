package models

import (
	"time"

	"github.com/google/uuid"
)

// RoundStatus defines the client-side lifecycle state of a round.
type RoundStatus string

const (
	RoundStatusNone      RoundStatus = "NONE"
	RoundStatusActive    RoundStatus = "ACTIVE"
	RoundStatusCompleted RoundStatus = "COMPLETED"
)

// Round represents one practice session against a dataset.
type Round struct {
	ID          uuid.UUID `json:"id"`
	DatasetName string    `json:"dataset_name"`
	UserID      uuid.UUID `json:"user_id"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}
