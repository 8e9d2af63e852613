package round

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/chartdrill/go/internal/models"
	"github.com/mcdev12/chartdrill/go/internal/round/db"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	CreateRound(ctx context.Context, arg db.CreateRoundParams) (db.Round, error)
	GetRound(ctx context.Context, id uuid.UUID) (db.Round, error)
	UpdateRoundCompleted(ctx context.Context, arg db.UpdateRoundCompletedParams) (db.Round, error)
	ListRoundsByUser(ctx context.Context, userID uuid.UUID) ([]db.Round, error)
}

// Repository implements round data access operations
type Repository struct {
	queries Querier
}

// NewRepository creates a new rounds repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// CreateRound persists a new round row
func (r *Repository) CreateRound(ctx context.Context, req CreateRoundRequest) (*models.Round, error) {
	round, err := r.queries.CreateRound(ctx, db.CreateRoundParams{
		ID:          req.ID,
		DatasetName: req.DatasetName,
		UserID:      req.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	return r.dbRoundToModel(round), nil
}

// GetRound retrieves a round by ID
func (r *Repository) GetRound(ctx context.Context, id uuid.UUID) (*models.Round, error) {
	round, err := r.queries.GetRound(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	return r.dbRoundToModel(round), nil
}

// UpdateRound flips the completion flag on a round
func (r *Repository) UpdateRound(ctx context.Context, id uuid.UUID, req UpdateRoundRequest) (*models.Round, error) {
	round, err := r.queries.UpdateRoundCompleted(ctx, db.UpdateRoundCompletedParams{
		ID:        id,
		Completed: req.Completed,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to update round: %w", err)
	}

	return r.dbRoundToModel(round), nil
}

// ListRoundsByUser retrieves all rounds owned by a user, newest first
func (r *Repository) ListRoundsByUser(ctx context.Context, userID uuid.UUID) ([]models.Round, error) {
	rounds, err := r.queries.ListRoundsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}

	out := make([]models.Round, len(rounds))
	for i, round := range rounds {
		out[i] = *r.dbRoundToModel(round)
	}
	return out, nil
}

// dbRoundToModel converts a database round to domain model
func (r *Repository) dbRoundToModel(dbRound db.Round) *models.Round {
	return &models.Round{
		ID:          dbRound.ID,
		DatasetName: dbRound.DatasetName,
		UserID:      dbRound.UserID,
		Completed:   dbRound.Completed,
		CreatedAt:   dbRound.CreatedAt,
	}
}
