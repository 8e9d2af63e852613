package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/chartdrill/go/internal/match"
	"github.com/mcdev12/chartdrill/go/internal/models"
	"github.com/mcdev12/chartdrill/go/internal/round"
	"github.com/mcdev12/chartdrill/go/internal/session/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fakes shared by the engine, logger and resume tests. The engine's
// handlers are driven directly rather than through Run so every test
// stays single-threaded and deterministic.

type fakeDecks struct {
	decks map[string]*models.Deck
	err   error
}

func (f *fakeDecks) GetDeck(ctx context.Context, datasetName string) (*models.Deck, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.decks[datasetName]
	if !ok {
		return nil, errors.New("deck not found")
	}
	return d, nil
}

type fakeRounds struct {
	created     []*models.Round
	createErr   error
	completed   []uuid.UUID
	completeErr error
	latest      *models.Round
	latestErr   error
}

func (f *fakeRounds) CreateRound(ctx context.Context, datasetName string, userID uuid.UUID) (*models.Round, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	r := &models.Round{
		ID:          uuid.New(),
		DatasetName: datasetName,
		UserID:      userID,
		CreatedAt:   time.Now(),
	}
	f.created = append(f.created, r)
	return r, nil
}

func (f *fakeRounds) CompleteRound(ctx context.Context, id uuid.UUID) (*models.Round, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	f.completed = append(f.completed, id)
	return &models.Round{ID: id, Completed: true}, nil
}

func (f *fakeRounds) LatestIncompleteRound(ctx context.Context, userID uuid.UUID) (*models.Round, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	if f.latest == nil {
		return nil, round.ErrRoundNotFound
	}
	return f.latest, nil
}

type fakeMatches struct {
	history []models.Match
	err     error

	mu     sync.Mutex
	logged []match.LogMatchRequest
	logErr error
	// logErrOnce fails only the first LogMatch call
	logErrOnce error
}

func (f *fakeMatches) GetRoundMatches(ctx context.Context, roundID uuid.UUID) ([]models.Match, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

func (f *fakeMatches) LogMatch(ctx context.Context, req match.LogMatchRequest) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErrOnce != nil {
		err := f.logErrOnce
		f.logErrOnce = nil
		return nil, err
	}
	if f.logErr != nil {
		return nil, f.logErr
	}
	f.logged = append(f.logged, req)
	return &models.Match{ID: uuid.New(), RoundID: req.RoundID}, nil
}

func (f *fakeMatches) loggedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logged)
}

type recordingSink struct {
	events []events.Event
}

func (s *recordingSink) Emit(event events.Event) {
	s.events = append(s.events, event)
}

func (s *recordingSink) byType(t events.EventType) []events.Event {
	var out []events.Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (s *recordingSink) last(t *testing.T, et events.EventType) events.Event {
	t.Helper()
	matches := s.byType(et)
	require.NotEmpty(t, matches, "expected at least one %s event", et)
	return matches[len(matches)-1]
}

func decodePayload[T any](t *testing.T, e events.Event) T {
	t.Helper()
	var payload T
	require.NoError(t, json.Unmarshal(e.Data, &payload))
	return payload
}

type engineFixture struct {
	engine  *Engine
	clock   *clockwork.FakeClock
	decks   *fakeDecks
	rounds  *fakeRounds
	matches *fakeMatches
	sink    *recordingSink
	logger  *MatchLogger
}

func revealPtr(s string) *string { return &s }

func newEngineFixture(t *testing.T, decks map[string]*models.Deck) *engineFixture {
	t.Helper()
	clock := clockwork.NewFakeClock()
	fd := &fakeDecks{decks: decks}
	fr := &fakeRounds{}
	fm := &fakeMatches{}
	sink := &recordingSink{}

	logger := NewMatchLogger(fm, fr, clock, DefaultLoggerConfig())
	engine := NewEngine(DefaultConfig(), clock, fd, fr, fm, logger, sink, nil)

	return &engineFixture{
		engine:  engine,
		clock:   clock,
		decks:   fd,
		rounds:  fr,
		matches: fm,
		sink:    sink,
		logger:  logger,
	}
}

func twoCardDeck() map[string]*models.Deck {
	return map[string]*models.Deck{
		"sp500": {
			DatasetName: "sp500",
			Cards: []models.Card{
				{Name: "AAPL", ChartFiles: []string{"aapl.png"}, ExpectedAnswerSequence: []int{1}},
				{Name: "MSFT", ChartFiles: []string{"msft.png"}, ExpectedAnswerSequence: []int{0}},
			},
		},
	}
}

func signInAndStart(t *testing.T, f *engineFixture, dataset string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	userID := uuid.New()
	f.engine.handleCommand(ctx, cmdSignIn{userID: userID})
	f.engine.handleCommand(ctx, cmdSelectDataset{name: dataset})
	require.Equal(t, models.RoundStatusActive, f.engine.status)
	return userID
}

func TestEngineStartDataset(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())

	signInAndStart(t, f, "sp500")

	started := decodePayload[events.RoundStartedPayload](t, f.sink.last(t, events.EventTypeRoundStarted))
	assert.Equal(t, "sp500", started.DatasetName)
	assert.Equal(t, 2, started.DeckSize)

	card := decodePayload[events.CardAdvancedPayload](t, f.sink.last(t, events.EventTypeCardAdvanced))
	assert.Equal(t, "AAPL", card.StockSymbol)
	assert.Equal(t, 0, card.CardIndex)

	synced := decodePayload[events.TimerSyncedPayload](t, f.sink.last(t, events.EventTypeTimerSynced))
	assert.Equal(t, 30, synced.RemainingSec)
}

func TestEngineRequiresSignInBeforeDataset(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()

	f.engine.handleCommand(ctx, cmdSelectDataset{name: "sp500"})

	assert.NotEmpty(t, f.sink.byType(events.EventTypePromptSignIn))
	assert.Empty(t, f.rounds.created)
	assert.Equal(t, models.RoundStatusNone, f.engine.status)
}

func TestEngineDeckLoadFailure(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	f.decks.err = errors.New("connection refused")
	ctx := context.Background()

	f.engine.handleCommand(ctx, cmdSignIn{userID: uuid.New()})
	f.engine.handleCommand(ctx, cmdSelectDataset{name: "sp500"})

	payload := decodePayload[events.SessionErrorPayload](t, f.sink.last(t, events.EventTypeSessionError))
	assert.Equal(t, "deck_load_failed", payload.Code)
	assert.True(t, payload.Retryable)
	assert.Empty(t, f.rounds.created, "no round is created when the deck cannot load")
}

func TestEngineRoundCreateFailureLeavesLifecycleNone(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	f.rounds.createErr = errors.New("insert failed")
	ctx := context.Background()

	f.engine.handleCommand(ctx, cmdSignIn{userID: uuid.New()})
	f.engine.handleCommand(ctx, cmdSelectDataset{name: "sp500"})

	payload := decodePayload[events.SessionErrorPayload](t, f.sink.last(t, events.EventTypeSessionError))
	assert.Equal(t, "round_create_failed", payload.Code)
	assert.True(t, payload.Retryable)
	assert.Equal(t, models.RoundStatusNone, f.engine.status)
	assert.Nil(t, f.engine.activeRound, "round id is never fabricated")
}

func TestEngineCorrectAnswerCycle(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	signInAndStart(t, f, "sp500")

	f.engine.handleCommand(ctx, cmdAnswer{selection: 1})

	scored := decodePayload[events.AnswerScoredPayload](t, f.sink.last(t, events.EventTypeAnswerScored))
	assert.True(t, scored.Correct)
	assert.False(t, scored.Forced)
	assert.Equal(t, 1, scored.MatchCount)
	assert.Equal(t, "100.00", scored.Accuracy)
	assert.True(t, f.engine.awaitingAdvance)

	// Feedback delay elapses, the engine moves to the next card
	f.engine.handleAdvance(ctx)

	card := decodePayload[events.CardAdvancedPayload](t, f.sink.last(t, events.EventTypeCardAdvanced))
	assert.Equal(t, "MSFT", card.StockSymbol)
	assert.False(t, f.engine.awaitingAdvance)
}

func TestEngineIncorrectAnswer(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	signInAndStart(t, f, "sp500")

	f.engine.handleCommand(ctx, cmdAnswer{selection: 0})

	scored := decodePayload[events.AnswerScoredPayload](t, f.sink.last(t, events.EventTypeAnswerScored))
	assert.False(t, scored.Correct)
	assert.Equal(t, 1, scored.Expected)
	assert.Equal(t, "0.00", scored.Accuracy)
}

func TestEngineInputDisabledDuringFeedback(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	signInAndStart(t, f, "sp500")

	f.engine.handleCommand(ctx, cmdAnswer{selection: 1})
	f.engine.handleCommand(ctx, cmdAnswer{selection: 0})

	assert.Len(t, f.sink.byType(events.EventTypeAnswerScored), 1)
	assert.Equal(t, 1, f.engine.metrics.MatchCount)
}

func TestEngineAdvanceIsIdempotent(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	signInAndStart(t, f, "sp500")

	f.engine.handleCommand(ctx, cmdAnswer{selection: 1})
	f.engine.handleAdvance(ctx)
	require.Equal(t, 1, f.engine.cursor.CardIndex())

	// A stray second fire without a new scored answer must not move
	f.engine.handleAdvance(ctx)
	assert.Equal(t, 1, f.engine.cursor.CardIndex())
}

func TestEngineForcedAnswerAfterExpiry(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	signInAndStart(t, f, "sp500")

	f.clock.Advance(31 * time.Second)
	f.engine.handleTick()

	expired := decodePayload[events.TimeExpiredPayload](t, f.sink.last(t, events.EventTypeTimeExpired))
	assert.Equal(t, "AAPL", expired.StockSymbol)

	// Input stays enabled after expiry; the answer is marked forced
	f.engine.handleCommand(ctx, cmdAnswer{selection: 1})

	scored := decodePayload[events.AnswerScoredPayload](t, f.sink.last(t, events.EventTypeAnswerScored))
	assert.True(t, scored.Forced)
	assert.True(t, scored.Correct)
	assert.False(t, f.engine.timeUpOverlay, "overlay clears on the next selection")
}

func TestEngineExpiryFiresOnce(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	signInAndStart(t, f, "sp500")

	f.clock.Advance(31 * time.Second)
	f.engine.handleTick()
	f.engine.handleTick()
	f.engine.handleSyncTimer()

	assert.Len(t, f.sink.byType(events.EventTypeTimeExpired), 1)
}

func TestEngineSyncTimerCorrectsDrift(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	signInAndStart(t, f, "sp500")

	// Client was backgrounded: no ticks delivered for 12s
	f.clock.Advance(12 * time.Second)
	f.engine.handleSyncTimer()

	synced := decodePayload[events.TimerSyncedPayload](t, f.sink.last(t, events.EventTypeTimerSynced))
	assert.Equal(t, 18, synced.RemainingSec)
}

func TestEngineDeckWrapRollsIntoFreshRound(t *testing.T) {
	decks := map[string]*models.Deck{
		"sp500": {
			DatasetName: "sp500",
			Cards: []models.Card{
				{Name: "AAPL", ChartFiles: []string{"aapl.png"}, ExpectedAnswerSequence: []int{1}},
			},
		},
	}
	f := newEngineFixture(t, decks)
	ctx := context.Background()
	signInAndStart(t, f, "sp500")
	firstRound := f.engine.activeRound.ID

	f.engine.handleCommand(ctx, cmdAnswer{selection: 1})
	f.engine.handleAdvance(ctx)

	completed := decodePayload[events.RoundCompletedPayload](t, f.sink.last(t, events.EventTypeRoundCompleted))
	assert.Equal(t, firstRound.String(), completed.RoundID)
	assert.Equal(t, 1, completed.MatchCount)

	require.Len(t, f.rounds.created, 2)
	assert.Equal(t, models.RoundStatusActive, f.engine.status)
	assert.NotEqual(t, firstRound, f.engine.activeRound.ID)
	assert.Equal(t, 0, f.engine.metrics.MatchCount, "metrics reset with the new round")
}

func TestEngineNewRoundCompletesCurrent(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	signInAndStart(t, f, "sp500")
	firstRound := f.engine.activeRound.ID

	f.engine.handleCommand(ctx, cmdNewRound{})

	require.Len(t, f.rounds.completed, 1)
	assert.Equal(t, firstRound, f.rounds.completed[0])
	require.Len(t, f.rounds.created, 2)
	assert.Equal(t, models.RoundStatusActive, f.engine.status)
}

func TestEngineNewRoundSurvivesCompleteFailure(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	signInAndStart(t, f, "sp500")
	f.rounds.completeErr = errors.New("update failed")

	f.engine.handleCommand(ctx, cmdNewRound{})

	// Completion failure never blocks the next round
	require.Len(t, f.rounds.created, 2)
	assert.Equal(t, models.RoundStatusActive, f.engine.status)
}

func TestEngineSkipsContentGapCards(t *testing.T) {
	decks := map[string]*models.Deck{
		"sp500": {
			DatasetName: "sp500",
			Cards: []models.Card{
				{Name: "BROKEN", ChartFiles: []string{"broken.png"}},
				{Name: "MSFT", ChartFiles: []string{"msft.png"}, ExpectedAnswerSequence: []int{0}},
			},
		},
	}
	f := newEngineFixture(t, decks)
	signInAndStart(t, f, "sp500")

	card := decodePayload[events.CardAdvancedPayload](t, f.sink.last(t, events.EventTypeCardAdvanced))
	assert.Equal(t, "MSFT", card.StockSymbol, "cards without answer data are skipped, not surfaced")
}

func TestEngineNoPlayableCards(t *testing.T) {
	decks := map[string]*models.Deck{
		"sp500": {
			DatasetName: "sp500",
			Cards: []models.Card{
				{Name: "BROKEN1"},
				{Name: "BROKEN2"},
			},
		},
	}
	f := newEngineFixture(t, decks)
	ctx := context.Background()

	f.engine.handleCommand(ctx, cmdSignIn{userID: uuid.New()})
	f.engine.handleCommand(ctx, cmdSelectDataset{name: "sp500"})

	payload := decodePayload[events.SessionErrorPayload](t, f.sink.last(t, events.EventTypeSessionError))
	assert.Equal(t, "no_playable_cards", payload.Code)
}

func TestEngineRevealCardUsesLongerDelay(t *testing.T) {
	decks := map[string]*models.Deck{
		"sp500": {
			DatasetName: "sp500",
			Cards: []models.Card{
				{Name: "AAPL", ChartFiles: []string{"aapl.png"}, ExpectedAnswerSequence: []int{1}, RevealFile: revealPtr("aapl_full.png")},
				{Name: "MSFT", ChartFiles: []string{"msft.png"}, ExpectedAnswerSequence: []int{0}},
			},
		},
	}
	f := newEngineFixture(t, decks)
	ctx := context.Background()
	signInAndStart(t, f, "sp500")

	f.engine.handleCommand(ctx, cmdAnswer{selection: 1})

	require.NotNil(t, f.engine.advanceTimer)
	// The reveal delay is 4s: after the 1.5s feedback delay the timer
	// has not fired yet
	f.clock.Advance(2 * time.Second)
	select {
	case <-f.engine.advanceTimer.Chan():
		t.Fatal("advance timer fired before reveal delay elapsed")
	default:
	}
	f.clock.Advance(3 * time.Second)
	select {
	case <-f.engine.advanceTimer.Chan():
	default:
		t.Fatal("advance timer did not fire after reveal delay")
	}
}

func TestEngineAdoptRecoveredRound(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	signInAndStart(t, f, "sp500")

	recovered := &models.Round{ID: uuid.New(), DatasetName: "sp500"}
	f.engine.handleAdoptRound(recovered)

	assert.Equal(t, recovered.ID, f.engine.activeRound.ID)
}

func TestEngineDiscardsRecoveredRoundForStaleDataset(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	signInAndStart(t, f, "sp500")
	current := f.engine.activeRound.ID

	stale := &models.Round{ID: uuid.New(), DatasetName: "nasdaq"}
	f.engine.handleAdoptRound(stale)

	assert.Equal(t, current, f.engine.activeRound.ID)
}

func TestEngineSignOutTearsDownState(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	signInAndStart(t, f, "sp500")

	f.engine.handleCommand(ctx, cmdSignOut{})

	assert.Equal(t, models.RoundStatusNone, f.engine.status)
	assert.Nil(t, f.engine.activeRound)
	assert.Nil(t, f.engine.cursor)
	assert.Equal(t, uuid.Nil, f.engine.userID)
}

func TestEngineAnswerEnqueuesMatchLog(t *testing.T) {
	f := newEngineFixture(t, twoCardDeck())
	ctx := context.Background()
	userID := signInAndStart(t, f, "sp500")
	roundID := f.engine.activeRound.ID

	f.engine.handleCommand(ctx, cmdAnswer{selection: 1})

	require.Len(t, f.logger.queue, 1)
	job := <-f.logger.queue
	assert.Equal(t, roundID, job.req.RoundID)
	assert.Equal(t, "AAPL", job.req.StockSymbol)
	assert.Equal(t, 1, job.req.UserSelection)
	assert.True(t, job.req.Correct)
	assert.Equal(t, userID, job.req.UserID)
	assert.Equal(t, "sp500", job.datasetName)
}
