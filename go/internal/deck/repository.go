package deck

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcdev12/chartdrill/go/internal/deck/db"
	"github.com/mcdev12/chartdrill/go/internal/models"
	"github.com/mcdev12/chartdrill/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	ListCardsByDataset(ctx context.Context, datasetName string) ([]db.Card, error)
	ListDatasets(ctx context.Context) ([]string, error)
}

// Repository implements deck data access operations
type Repository struct {
	queries Querier
}

// NewRepository creates a new decks repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// GetDeck retrieves the ordered cards for a dataset. Rows with
// unparseable chart or answer payloads are kept as cards without
// answer data; the session layer treats those as content gaps.
func (r *Repository) GetDeck(ctx context.Context, datasetName string) (*models.Deck, error) {
	rows, err := r.queries.ListCardsByDataset(ctx, datasetName)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrDeckNotFound
	}

	cards := make([]models.Card, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, r.dbCardToModel(row))
	}

	return &models.Deck{
		DatasetName: datasetName,
		Cards:       cards,
	}, nil
}

// ListDatasets retrieves the names of all seeded datasets
func (r *Repository) ListDatasets(ctx context.Context) ([]string, error) {
	names, err := r.queries.ListDatasets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return names, nil
}

// dbCardToModel converts a database card to domain model
func (r *Repository) dbCardToModel(dbCard db.Card) models.Card {
	card := models.Card{
		Name: dbCard.Name,
	}

	if dbCard.ChartFiles.Valid {
		if err := json.Unmarshal(dbCard.ChartFiles.RawMessage, &card.ChartFiles); err != nil {
			log.Warn().
				Err(err).
				Str("card", dbCard.Name).
				Str("dataset", dbCard.DatasetName).
				Msg("unparseable chart_files payload")
		}
	}

	if dbCard.ExpectedAnswers.Valid {
		if err := json.Unmarshal(dbCard.ExpectedAnswers.RawMessage, &card.ExpectedAnswerSequence); err != nil {
			log.Warn().
				Err(err).
				Str("card", dbCard.Name).
				Str("dataset", dbCard.DatasetName).
				Msg("unparseable expected_answers payload")
		}
	}

	card.RevealFile = sqlutil.FromSqlStringPtr(dbCard.RevealFile)

	return card
}
