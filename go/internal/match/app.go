package match

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/chartdrill/go/internal/ids"
	"github.com/mcdev12/chartdrill/go/internal/models"
)

// MatchRepository defines what the match app layer needs from the repository
type MatchRepository interface {
	CreateMatch(ctx context.Context, req LogMatchRequest) (*models.Match, error)
	ListMatchesByRound(ctx context.Context, roundID uuid.UUID) ([]models.Match, error)
}

// App handles match business logic
type App struct {
	repo MatchRepository
}

// NewApp creates a new match App
func NewApp(repo MatchRepository) *App {
	return &App{
		repo: repo,
	}
}

// LogMatch validates ids locally and appends the match. Malformed ids
// are rejected without touching the database.
func (a *App) LogMatch(ctx context.Context, req LogMatchRequest) (*models.Match, error) {
	if !ids.Valid(req.RoundID) {
		return nil, fmt.Errorf("round id: %w", ids.ErrMalformed)
	}
	if !ids.Valid(req.UserID) {
		return nil, fmt.Errorf("user id: %w", ids.ErrMalformed)
	}
	if req.StockSymbol == "" {
		return nil, fmt.Errorf("stock symbol is required")
	}

	return a.repo.CreateMatch(ctx, req)
}

// GetRoundMatches retrieves a round's match history in log order
func (a *App) GetRoundMatches(ctx context.Context, roundID uuid.UUID) ([]models.Match, error) {
	if !ids.Valid(roundID) {
		return nil, fmt.Errorf("round id: %w", ids.ErrMalformed)
	}
	return a.repo.ListMatchesByRound(ctx, roundID)
}
