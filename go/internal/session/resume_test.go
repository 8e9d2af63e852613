package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/chartdrill/go/internal/models"
	"github.com/mcdev12/chartdrill/go/internal/round"
	"github.com/mcdev12/chartdrill/go/internal/session/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoResumeRehydratesIncompleteRound(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	userID := uuid.New()

	incomplete := &models.Round{
		ID:          uuid.New(),
		DatasetName: "sp500",
		UserID:      userID,
		CreatedAt:   time.Now().Add(-time.Hour),
	}
	f.rounds.latest = incomplete
	f.matches.history = []models.Match{
		{RoundID: incomplete.ID, StockSymbol: "AAPL", Correct: true},
	}

	f.engine.handleCommand(ctx, cmdSignIn{userID: userID})

	resumed := decodePayload[events.RoundResumedPayload](t, f.sink.last(t, events.EventTypeRoundResumed))
	assert.Equal(t, incomplete.ID.String(), resumed.RoundID)
	assert.Equal(t, 1, resumed.MatchCount)
	assert.Equal(t, 1, resumed.CorrectCount)
	assert.Equal(t, "100.00", resumed.Accuracy)

	// Cursor lands on the card after the last answered symbol
	card := decodePayload[events.CardAdvancedPayload](t, f.sink.last(t, events.EventTypeCardAdvanced))
	assert.Equal(t, "MSFT", card.StockSymbol)

	assert.Equal(t, models.RoundStatusActive, f.engine.status)
	assert.Equal(t, incomplete.ID, f.engine.activeRound.ID)
	assert.Empty(t, f.rounds.created, "resume never creates a new round")
}

func TestAutoResumeNoIncompleteRound(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	f.rounds.latestErr = round.ErrRoundNotFound

	f.engine.handleCommand(ctx, cmdSignIn{userID: uuid.New()})

	assert.Empty(t, f.sink.byType(events.EventTypeRoundResumed))
	assert.Equal(t, models.RoundStatusNone, f.engine.status)
}

func TestAutoResumeUnknownSymbolFallsBackToFirstCard(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	userID := uuid.New()

	incomplete := &models.Round{ID: uuid.New(), DatasetName: "sp500", UserID: userID}
	f.rounds.latest = incomplete
	// The deck was edited since this round was played: the last
	// answered symbol is gone
	f.matches.history = []models.Match{
		{RoundID: incomplete.ID, StockSymbol: "DELISTED", Correct: false},
	}

	f.engine.handleCommand(ctx, cmdSignIn{userID: userID})

	card := decodePayload[events.CardAdvancedPayload](t, f.sink.last(t, events.EventTypeCardAdvanced))
	assert.Equal(t, "AAPL", card.StockSymbol)
}

func TestAutoResumeFallsBackToFreshRoundOnHistoryFailure(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	userID := uuid.New()

	f.rounds.latest = &models.Round{ID: uuid.New(), DatasetName: "sp500", UserID: userID}
	f.matches.err = errors.New("query timeout")

	f.engine.handleCommand(ctx, cmdSignIn{userID: userID})

	// Resume failed but the session is still usable: a fresh round
	// opened on the same dataset
	require.Len(t, f.rounds.created, 1)
	assert.Equal(t, "sp500", f.rounds.created[0].DatasetName)
	assert.Equal(t, models.RoundStatusActive, f.engine.status)
	assert.NotEmpty(t, f.sink.byType(events.EventTypeRoundStarted))
}

func TestAutoResumeSkippedWhileRoundActive(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	userID := signInAndStart(t, f, "sp500")
	active := f.engine.activeRound.ID

	f.rounds.latest = &models.Round{ID: uuid.New(), DatasetName: "sp500", UserID: userID}
	f.engine.handleCommand(ctx, cmdSignIn{userID: userID})

	assert.Equal(t, active, f.engine.activeRound.ID)
	assert.Empty(t, f.sink.byType(events.EventTypeRoundResumed))
}
