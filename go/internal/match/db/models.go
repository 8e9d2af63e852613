package db

import (
	"time"

	"github.com/google/uuid"
)

type Match struct {
	ID            uuid.UUID
	RoundID       uuid.UUID
	StockSymbol   string
	UserSelection int32
	Correct       bool
	UserID        uuid.UUID
	LoggedAt      time.Time
}
