package match

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/chartdrill/go/internal/ids"
	"github.com/mcdev12/chartdrill/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMatchRepo struct {
	created []LogMatchRequest
}

func (f *fakeMatchRepo) CreateMatch(ctx context.Context, req LogMatchRequest) (*models.Match, error) {
	f.created = append(f.created, req)
	return &models.Match{ID: uuid.New(), RoundID: req.RoundID}, nil
}

func (f *fakeMatchRepo) ListMatchesByRound(ctx context.Context, roundID uuid.UUID) ([]models.Match, error) {
	return nil, nil
}

func validRequest() LogMatchRequest {
	return LogMatchRequest{
		RoundID:       uuid.New(),
		StockSymbol:   "AAPL",
		UserSelection: 1,
		Correct:       true,
		UserID:        uuid.New(),
	}
}

func TestLogMatch(t *testing.T) {
	repo := &fakeMatchRepo{}
	app := NewApp(repo)

	_, err := app.LogMatch(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
}

func TestLogMatchRejectsMalformedIDsLocally(t *testing.T) {
	repo := &fakeMatchRepo{}
	app := NewApp(repo)

	req := validRequest()
	req.RoundID = uuid.Nil
	_, err := app.LogMatch(context.Background(), req)
	assert.ErrorIs(t, err, ids.ErrMalformed)

	req = validRequest()
	req.UserID = uuid.Nil
	_, err = app.LogMatch(context.Background(), req)
	assert.ErrorIs(t, err, ids.ErrMalformed)

	// No network call happens for malformed input
	assert.Empty(t, repo.created)
}

func TestLogMatchRequiresStockSymbol(t *testing.T) {
	app := NewApp(&fakeMatchRepo{})

	req := validRequest()
	req.StockSymbol = ""
	_, err := app.LogMatch(context.Background(), req)

	assert.Error(t, err)
}

func TestGetRoundMatchesRejectsNilID(t *testing.T) {
	app := NewApp(&fakeMatchRepo{})

	_, err := app.GetRoundMatches(context.Background(), uuid.Nil)

	assert.ErrorIs(t, err, ids.ErrMalformed)
}
