package match

import (
	"github.com/google/uuid"
)

// LogMatchRequest carries one scored answer event headed for the
// persistence layer.
type LogMatchRequest struct {
	RoundID       uuid.UUID `json:"round_id"`
	StockSymbol   string    `json:"stock_symbol"`
	UserSelection int       `json:"user_selection"`
	Correct       bool      `json:"correct"`
	UserID        uuid.UUID `json:"user_id"`
}
