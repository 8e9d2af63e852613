package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcdev12/chartdrill/go/internal/match/db"
	"github.com/mcdev12/chartdrill/go/internal/models"
	"github.com/mcdev12/chartdrill/go/internal/round"
)

// foreignKeyViolation is the Postgres error code raised when a match
// references a round id that no longer exists.
const foreignKeyViolation = "23503"

// Querier defines what the repository needs from the database layer
type Querier interface {
	CreateMatch(ctx context.Context, arg db.CreateMatchParams) (db.Match, error)
	ListMatchesByRound(ctx context.Context, roundID uuid.UUID) ([]db.Match, error)
}

// Repository implements match data access operations
type Repository struct {
	queries Querier
}

// NewRepository creates a new matches repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// CreateMatch appends one match row. A foreign key violation on the
// round id surfaces as round.ErrRoundNotFound so callers can run the
// recovery path.
func (r *Repository) CreateMatch(ctx context.Context, req LogMatchRequest) (*models.Match, error) {
	m, err := r.queries.CreateMatch(ctx, db.CreateMatchParams{
		ID:            uuid.New(),
		RoundID:       req.RoundID,
		StockSymbol:   req.StockSymbol,
		UserSelection: int32(req.UserSelection),
		Correct:       req.Correct,
		UserID:        req.UserID,
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == foreignKeyViolation {
			return nil, round.ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	return r.dbMatchToModel(m), nil
}

// ListMatchesByRound retrieves a round's matches in log order
func (r *Repository) ListMatchesByRound(ctx context.Context, roundID uuid.UUID) ([]models.Match, error) {
	matches, err := r.queries.ListMatchesByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	out := make([]models.Match, len(matches))
	for i, m := range matches {
		out[i] = *r.dbMatchToModel(m)
	}
	return out, nil
}

// dbMatchToModel converts a database match to domain model
func (r *Repository) dbMatchToModel(dbMatch db.Match) *models.Match {
	return &models.Match{
		ID:            dbMatch.ID,
		RoundID:       dbMatch.RoundID,
		StockSymbol:   dbMatch.StockSymbol,
		UserSelection: int(dbMatch.UserSelection),
		Correct:       dbMatch.Correct,
		UserID:        dbMatch.UserID,
		LoggedAt:      dbMatch.LoggedAt,
	}
}
