package models

import (
	"time"

	"github.com/google/uuid"
)

// Match represents one scored answer event within a round. Append-only.
type Match struct {
	ID            uuid.UUID `json:"id"`
	RoundID       uuid.UUID `json:"round_id"`
	StockSymbol   string    `json:"stock_symbol"`
	UserSelection int       `json:"user_selection"`
	Correct       bool      `json:"correct"`
	UserID        uuid.UUID `json:"user_id"`
	LoggedAt      time.Time `json:"logged_at"`
}
