package round

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/chartdrill/go/internal/ids"
	"github.com/mcdev12/chartdrill/go/internal/models"
	"github.com/rs/zerolog/log"
)

// RoundRepository defines what the round app layer needs from the repository
type RoundRepository interface {
	CreateRound(ctx context.Context, req CreateRoundRequest) (*models.Round, error)
	GetRound(ctx context.Context, id uuid.UUID) (*models.Round, error)
	UpdateRound(ctx context.Context, id uuid.UUID, req UpdateRoundRequest) (*models.Round, error)
	ListRoundsByUser(ctx context.Context, userID uuid.UUID) ([]models.Round, error)
}

// App handles round business logic
type App struct {
	repo RoundRepository
}

// NewApp creates a new round App
func NewApp(repo RoundRepository) *App {
	return &App{
		repo: repo,
	}
}

// CreateRound creates a round for a user on a dataset. Requires an
// authenticated user and a selected dataset; it never fabricates a
// round id on failure.
func (a *App) CreateRound(ctx context.Context, datasetName string, userID uuid.UUID) (*models.Round, error) {
	if !ids.Valid(userID) {
		return nil, ErrUnauthenticated
	}
	if datasetName == "" {
		return nil, ErrNoDataset
	}

	round, err := a.repo.CreateRound(ctx, CreateRoundRequest{
		ID:          uuid.New(),
		DatasetName: datasetName,
		UserID:      userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	log.Info().
		Str("round_id", round.ID.String()).
		Str("dataset", round.DatasetName).
		Str("user_id", round.UserID.String()).
		Msg("created round")
	return round, nil
}

// CompleteRound marks a round completed
func (a *App) CompleteRound(ctx context.Context, id uuid.UUID) (*models.Round, error) {
	if !ids.Valid(id) {
		return nil, ids.ErrMalformed
	}

	round, err := a.repo.UpdateRound(ctx, id, UpdateRoundRequest{Completed: true})
	if err != nil {
		return nil, fmt.Errorf("failed to complete round: %w", err)
	}

	log.Info().Str("round_id", id.String()).Msg("round completed")
	return round, nil
}

// GetRound retrieves a round by ID
func (a *App) GetRound(ctx context.Context, id uuid.UUID) (*models.Round, error) {
	if !ids.Valid(id) {
		return nil, ids.ErrMalformed
	}
	return a.repo.GetRound(ctx, id)
}

// GetUserRounds retrieves all rounds belonging to a user, newest first
func (a *App) GetUserRounds(ctx context.Context, userID uuid.UUID) ([]models.Round, error) {
	if !ids.Valid(userID) {
		return nil, ErrUnauthenticated
	}
	return a.repo.ListRoundsByUser(ctx, userID)
}

// LatestIncompleteRound returns the most recently created incomplete
// round for a user, or ErrRoundNotFound when none exists.
func (a *App) LatestIncompleteRound(ctx context.Context, userID uuid.UUID) (*models.Round, error) {
	rounds, err := a.GetUserRounds(ctx, userID)
	if err != nil {
		return nil, err
	}

	var latest *models.Round
	for i := range rounds {
		r := &rounds[i]
		if r.Completed {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrRoundNotFound
	}
	return latest, nil
}
