package db

import (
	"time"

	"github.com/google/uuid"
)

type Round struct {
	ID          uuid.UUID
	DatasetName string
	UserID      uuid.UUID
	Completed   bool
	CreatedAt   time.Time
}
