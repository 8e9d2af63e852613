package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/chartdrill/go/internal/deck"
	"github.com/mcdev12/chartdrill/go/internal/models"
	"github.com/mcdev12/chartdrill/go/internal/round"
	"github.com/mcdev12/chartdrill/go/internal/session/events"
	"github.com/rs/zerolog/log"
)

// autoResume rehydrates the most recently created incomplete round for
// the signed-in user. When loading the round fails outright it falls
// back to creating a brand-new round on the same dataset rather than
// leaving the session unusable.
func (e *Engine) autoResume(ctx context.Context) {
	r, err := e.rounds.LatestIncompleteRound(ctx, e.userID)
	if err != nil {
		if errors.Is(err, round.ErrRoundNotFound) {
			log.Debug().Str("session_id", e.id).Msg("no incomplete round to resume")
			return
		}
		log.Warn().Err(err).Str("session_id", e.id).Msg("failed to query rounds for resume")
		return
	}

	if err := e.resumeRound(ctx, r); err != nil {
		log.Warn().
			Err(err).
			Str("round_id", r.ID.String()).
			Msg("resume failed, starting a fresh round instead")
		e.startDataset(ctx, r.DatasetName)
	}
}

// resumeRound enters ACTIVE directly with an existing round id: it
// loads the round's deck and match history, rebuilds the session
// metrics, and positions the cursor at the card following the last
// answered stock symbol.
func (e *Engine) resumeRound(ctx context.Context, r *models.Round) error {
	d, err := e.decks.GetDeck(ctx, r.DatasetName)
	if err != nil {
		return fmt.Errorf("failed to load deck for resume: %w", err)
	}

	history, err := e.matches.GetRoundMatches(ctx, r.ID)
	if err != nil {
		return fmt.Errorf("failed to load match history: %w", err)
	}

	e.activeRound = r
	e.deck = d
	e.cursor = deck.NewCursor(d)
	e.metrics = MetricsFromMatches(history)
	e.status = models.RoundStatusActive
	e.awaitingAdvance = false
	e.answeredSinceAdvance = false
	e.timeUpOverlay = false
	e.stopAdvanceTimer()

	if len(history) > 0 {
		e.cursor.SeekAfterSymbol(history[len(history)-1].StockSymbol)
	}

	log.Info().
		Str("session_id", e.id).
		Str("round_id", r.ID.String()).
		Str("dataset", r.DatasetName).
		Int("match_count", e.metrics.MatchCount).
		Msg("resumed incomplete round")

	e.emit(events.EventTypeRoundResumed, events.RoundResumedPayload{
		RoundID:      r.ID.String(),
		DatasetName:  r.DatasetName,
		CardIndex:    e.cursor.CardIndex(),
		MatchCount:   e.metrics.MatchCount,
		CorrectCount: e.metrics.CorrectCount,
		Accuracy:     e.metrics.Accuracy(),
		ResumedAt:    e.clock.Now().UTC(),
	})
	e.presentCard()
	return nil
}
