package deck

import (
	"context"
	"fmt"
	"time"

	"github.com/mcdev12/chartdrill/go/internal/models"
)

// DeckRepository defines what the deck app layer needs from the repository
type DeckRepository interface {
	GetDeck(ctx context.Context, datasetName string) (*models.Deck, error)
	ListDatasets(ctx context.Context) ([]string, error)
}

// App handles deck loading
type App struct {
	repo         DeckRepository
	fetchTimeout time.Duration
}

// NewApp creates a new deck App. fetchTimeout is the hard ceiling on
// any single deck load.
func NewApp(repo DeckRepository, fetchTimeout time.Duration) *App {
	return &App{
		repo:         repo,
		fetchTimeout: fetchTimeout,
	}
}

// GetDeck loads the ordered cards for a dataset. The fetch is awaited
// with a hard timeout rather than polled for.
func (a *App) GetDeck(ctx context.Context, datasetName string) (*models.Deck, error) {
	if datasetName == "" {
		return nil, fmt.Errorf("dataset name is required")
	}

	ctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	return a.repo.GetDeck(ctx, datasetName)
}

// ListDatasets returns the names of all available datasets
func (a *App) ListDatasets(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	return a.repo.ListDatasets(ctx)
}
