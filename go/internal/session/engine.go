package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/chartdrill/go/internal/deck"
	"github.com/mcdev12/chartdrill/go/internal/ids"
	"github.com/mcdev12/chartdrill/go/internal/match"
	"github.com/mcdev12/chartdrill/go/internal/models"
	"github.com/mcdev12/chartdrill/go/internal/round"
	"github.com/mcdev12/chartdrill/go/internal/session/events"
	"github.com/mcdev12/chartdrill/go/internal/timer"
	"github.com/rs/zerolog/log"
)

// DeckLoader defines what the engine needs from the deck app
type DeckLoader interface {
	GetDeck(ctx context.Context, datasetName string) (*models.Deck, error)
}

// RoundApp defines what the engine needs from the round app
type RoundApp interface {
	CreateRound(ctx context.Context, datasetName string, userID uuid.UUID) (*models.Round, error)
	CompleteRound(ctx context.Context, id uuid.UUID) (*models.Round, error)
	LatestIncompleteRound(ctx context.Context, userID uuid.UUID) (*models.Round, error)
}

// MatchReader defines what the engine needs from the match app when
// rebuilding session metrics on resume.
type MatchReader interface {
	GetRoundMatches(ctx context.Context, roundID uuid.UUID) ([]models.Match, error)
}

// Sink receives the engine's outbound events. The gateway implements
// it by fanning events out to the session's socket and the bus.
type Sink interface {
	Emit(event events.Event)
}

// SignInPrompter asks the client to open its sign-in flow. Injected
// explicitly so the engine never reaches for global state.
type SignInPrompter interface {
	PromptSignIn(reason string)
}

// Config holds session engine tunables.
type Config struct {
	DurationSec   int           // countdown per card
	FeedbackDelay time.Duration // feedback display before advancing
	RevealDelay   time.Duration // longer delay when the card has a reveal chart
	CommandBuffer int
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		DurationSec:   30,
		FeedbackDelay: 1500 * time.Millisecond,
		RevealDelay:   4 * time.Second,
		CommandBuffer: 32,
	}
}

// Engine coordinates one practice session: it owns the countdown, the
// deck cursor and the session metrics, and drives the round lifecycle
// (NONE -> ACTIVE -> COMPLETED) and the match logger. All state is
// mutated only by the Run goroutine in response to serialized events,
// mirroring the single-threaded cooperative model of the client.
type Engine struct {
	id    string
	cfg   Config
	clock clockwork.Clock

	decks    DeckLoader
	rounds   RoundApp
	matches  MatchReader
	logger   *MatchLogger
	sink     Sink
	prompter SignInPrompter

	cmdCh chan interface{}

	// Session state below is owned exclusively by the Run goroutine.
	userID      uuid.UUID
	status      models.RoundStatus
	activeRound *models.Round
	deck        *models.Deck
	cursor      *deck.Cursor
	metrics     Metrics
	countdown   *timer.Countdown

	awaitingAdvance      bool // feedback showing, input disabled
	answeredSinceAdvance bool // guards against double-advance
	timeUpOverlay        bool
	advanceTimer         clockwork.Timer
}

// NewEngine creates a session engine. prompter may be nil; the
// PromptSignIn event is emitted either way.
func NewEngine(cfg Config, clock clockwork.Clock, decks DeckLoader, rounds RoundApp, matches MatchReader, logger *MatchLogger, sink Sink, prompter SignInPrompter) *Engine {
	e := &Engine{
		id:        uuid.New().String(),
		cfg:       cfg,
		clock:     clock,
		decks:     decks,
		rounds:    rounds,
		matches:   matches,
		logger:    logger,
		sink:      sink,
		prompter:  prompter,
		cmdCh:     make(chan interface{}, cfg.CommandBuffer),
		status:    models.RoundStatusNone,
		countdown: timer.NewCountdown(clock),
	}
	logger.SetRecoveredHandler(func(r *models.Round) {
		e.post(cmdAdoptRound{round: r})
	})
	return e
}

// ID returns the session identifier used in event envelopes.
func (e *Engine) ID() string { return e.id }

// Run processes commands and timer events until ctx is cancelled. The
// countdown tick is bounded to once per second; expiry is detected on
// the tick following the deadline or immediately on SyncTimer.
func (e *Engine) Run(ctx context.Context) {
	log.Info().Str("session_id", e.id).Msg("session engine started")

	ticker := e.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		var advanceCh <-chan time.Time
		if e.advanceTimer != nil {
			advanceCh = e.advanceTimer.Chan()
		}

		select {
		case <-ctx.Done():
			e.teardown()
			log.Info().Str("session_id", e.id).Msg("session engine shutting down")
			return
		case cmd := <-e.cmdCh:
			e.handleCommand(ctx, cmd)
		case <-ticker.Chan():
			e.handleTick()
		case <-advanceCh:
			e.advanceTimer = nil
			e.handleAdvance(ctx)
		}
	}
}

func (e *Engine) handleCommand(ctx context.Context, cmd interface{}) {
	switch c := cmd.(type) {
	case cmdSignIn:
		e.handleSignIn(ctx, c.userID)
	case cmdSignOut:
		e.handleSignOut()
	case cmdSelectDataset:
		e.startDataset(ctx, c.name)
	case cmdAnswer:
		e.handleAnswer(c.selection)
	case cmdNewRound:
		e.handleNewRound(ctx)
	case cmdSyncTimer:
		e.handleSyncTimer()
	case cmdAdoptRound:
		e.handleAdoptRound(c.round)
	default:
		log.Warn().Str("session_id", e.id).Type("command", cmd).Msg("unknown command - ignoring")
	}
}

func (e *Engine) handleSignIn(ctx context.Context, userID uuid.UUID) {
	if !ids.Valid(userID) {
		e.promptSignIn("sign-in required")
		return
	}
	e.userID = userID
	log.Info().Str("session_id", e.id).Str("user_id", userID.String()).Msg("user signed in")

	// Auto-resume runs once per authentication transition, and only
	// when no round is currently active.
	if e.status != models.RoundStatusActive {
		e.autoResume(ctx)
	}
}

func (e *Engine) handleSignOut() {
	log.Info().Str("session_id", e.id).Msg("user signed out")
	e.userID = uuid.Nil
	e.teardown()
}

// startDataset loads the deck for a dataset and opens the first round
// on it. Creation failure surfaces an error event and leaves the
// lifecycle at NONE; a round id is never fabricated.
func (e *Engine) startDataset(ctx context.Context, datasetName string) {
	if !ids.Valid(e.userID) {
		e.promptSignIn("sign in to start practicing")
		return
	}

	d, err := e.decks.GetDeck(ctx, datasetName)
	if err != nil {
		log.Warn().Err(err).Str("dataset", datasetName).Msg("deck load failed")
		e.emitError("deck_load_failed", "could not load dataset", true)
		return
	}

	r, err := e.rounds.CreateRound(ctx, datasetName, e.userID)
	if err != nil {
		e.reportRoundFailure(err)
		return
	}

	e.adoptNewRound(r, d)
	e.emitRoundStarted(r, d)
	e.presentCard()
}

func (e *Engine) handleAnswer(selection int) {
	if e.status != models.RoundStatusActive {
		return
	}
	if e.awaitingAdvance {
		// Input is disabled while feedback is showing.
		return
	}

	card, ok := e.cursor.Current()
	if !ok {
		return
	}

	verdict, ok := e.Evaluate(selection)
	if !ok {
		// Content gap: the card cannot be scored, skip it.
		log.Warn().
			Str("session_id", e.id).
			Str("card", card.Name).
			Msg("card missing answer data, skipping")
		e.cursor.SkipCard()
		e.presentCard()
		return
	}

	forced := e.timeUpOverlay
	e.timeUpOverlay = false // overlay clears on the next selection
	e.countdown.Pause()
	e.metrics.Record(verdict.Correct)

	// Fire-and-forget: gameplay never stalls on a logging failure.
	e.logger.Enqueue(match.LogMatchRequest{
		RoundID:       e.activeRound.ID,
		StockSymbol:   card.Name,
		UserSelection: selection,
		Correct:       verdict.Correct,
		UserID:        e.userID,
	}, e.activeRound.DatasetName)

	e.emit(events.EventTypeAnswerScored, events.AnswerScoredPayload{
		RoundID:       e.activeRound.ID.String(),
		StockSymbol:   card.Name,
		UserSelection: selection,
		Expected:      verdict.Expected,
		Correct:       verdict.Correct,
		Forced:        forced,
		MatchCount:    e.metrics.MatchCount,
		CorrectCount:  e.metrics.CorrectCount,
		Accuracy:      e.metrics.Accuracy(),
		ScoredAt:      e.clock.Now().UTC(),
	})

	e.awaitingAdvance = true
	e.answeredSinceAdvance = true

	delay := e.cfg.FeedbackDelay
	if card.HasReveal() {
		delay = e.cfg.RevealDelay
	}
	e.armAdvanceTimer(delay)
}

// Verdict is the result of evaluating a selection against the current
// card's expected answer.
type Verdict struct {
	Correct  bool
	Expected int
}

// Evaluate compares a selection against the current expected answer.
// Pure: no state changes. ok is false when the current card carries no
// usable answer data.
func (e *Engine) Evaluate(selection int) (Verdict, bool) {
	expected, ok := e.cursor.Expected()
	if !ok {
		return Verdict{}, false
	}
	return Verdict{
		Correct:  selection == expected,
		Expected: expected,
	}, true
}

// handleNewRound completes the current round (best-effort) and opens a
// fresh one on the same dataset.
func (e *Engine) handleNewRound(ctx context.Context) {
	if !ids.Valid(e.userID) {
		e.promptSignIn("sign in to start a round")
		return
	}
	if e.deck == nil {
		e.emitError("no_dataset", "select a dataset first", false)
		return
	}

	e.completeActiveRound(ctx)

	r, err := e.rounds.CreateRound(ctx, e.deck.DatasetName, e.userID)
	if err != nil {
		e.reportRoundFailure(err)
		e.status = models.RoundStatusNone
		e.activeRound = nil
		return
	}

	e.adoptNewRound(r, e.deck)
	e.emitRoundStarted(r, e.deck)
	e.presentCard()
}

// completeActiveRound flips the completion flag on the active round.
// Failure to mark it completed never blocks creating the next round.
func (e *Engine) completeActiveRound(ctx context.Context) {
	if e.activeRound == nil {
		return
	}
	roundID := e.activeRound.ID

	if _, err := e.rounds.CompleteRound(ctx, roundID); err != nil {
		log.Warn().
			Err(err).
			Str("round_id", roundID.String()).
			Msg("failed to mark round completed, continuing")
	}

	e.emit(events.EventTypeRoundCompleted, events.RoundCompletedPayload{
		RoundID:     roundID.String(),
		MatchCount:  e.metrics.MatchCount,
		Accuracy:    e.metrics.Accuracy(),
		CompletedAt: e.clock.Now().UTC(),
	})
	e.status = models.RoundStatusCompleted
	e.activeRound = nil
}

func (e *Engine) handleSyncTimer() {
	if e.status != models.RoundStatusActive || e.awaitingAdvance {
		return
	}
	remaining, fired := e.countdown.Sync()
	e.emitTimerSynced(remaining)
	if fired {
		e.handleExpiry()
	}
}

func (e *Engine) handleTick() {
	if e.status != models.RoundStatusActive || e.awaitingAdvance {
		return
	}
	remaining, fired := e.countdown.Tick()
	e.emitTimerSynced(remaining)
	if fired {
		e.handleExpiry()
	}
}

// handleExpiry runs the terminal path: input stays enabled so the user
// may still answer after the deadline; the overlay clears on the next
// selection rather than on a fixed schedule.
func (e *Engine) handleExpiry() {
	card, _ := e.cursor.Current()
	e.timeUpOverlay = true
	e.emit(events.EventTypeTimeExpired, events.TimeExpiredPayload{
		RoundID:     e.activeRound.ID.String(),
		StockSymbol: card.Name,
		ExpiredAt:   e.clock.Now().UTC(),
	})
}

// handleAdvance fires after the feedback delay. Guarded so repeated
// fires without a new scored answer never skip more than one card.
func (e *Engine) handleAdvance(ctx context.Context) {
	if !e.answeredSinceAdvance {
		return
	}
	e.answeredSinceAdvance = false
	e.awaitingAdvance = false

	wrapped := e.cursor.Advance()
	if wrapped {
		// Full pass over the deck: the round is finished. Roll straight
		// into a fresh round on the same dataset.
		e.completeActiveRound(ctx)
		r, err := e.rounds.CreateRound(ctx, e.deck.DatasetName, e.userID)
		if err != nil {
			e.reportRoundFailure(err)
			e.status = models.RoundStatusNone
			return
		}
		e.adoptNewRound(r, e.deck)
		e.emitRoundStarted(r, e.deck)
	}
	e.presentCard()
}

func (e *Engine) handleAdoptRound(r *models.Round) {
	if r == nil {
		return
	}
	// A recovery round created for a dataset we already navigated away
	// from is discarded.
	if e.status != models.RoundStatusActive || e.deck == nil || e.deck.DatasetName != r.DatasetName {
		log.Debug().
			Str("session_id", e.id).
			Str("round_id", r.ID.String()).
			Msg("discarding recovered round for stale dataset")
		return
	}
	e.activeRound = r
	log.Info().
		Str("session_id", e.id).
		Str("round_id", r.ID.String()).
		Msg("adopted recovered round")
}

// presentCard emits the current card and restarts the countdown,
// skipping cards with missing chart or answer data. Exhausting the
// whole deck without a playable card surfaces an error instead of
// spinning.
func (e *Engine) presentCard() {
	if e.cursor == nil || e.cursor.Len() == 0 {
		e.emitError("empty_deck", "dataset has no cards", false)
		return
	}

	for i := 0; i < e.cursor.Len(); i++ {
		card, ok := e.cursor.Current()
		if !ok {
			break
		}
		if !card.HasAnswers() || len(card.ChartFiles) == 0 {
			log.Warn().
				Str("session_id", e.id).
				Str("card", card.Name).
				Msg("skipping card with missing content")
			e.cursor.SkipCard()
			continue
		}

		e.timeUpOverlay = false
		e.emit(events.EventTypeCardAdvanced, events.CardAdvancedPayload{
			RoundID:     e.activeRound.ID.String(),
			CardIndex:   e.cursor.CardIndex(),
			AnswerIndex: e.cursor.AnswerIndex(),
			StockSymbol: card.Name,
			ChartFiles:  card.ChartFiles,
			RevealFile:  card.RevealFile,
		})
		e.countdown.Reset(e.cfg.DurationSec)
		e.emitTimerSynced(e.countdown.Remaining())
		return
	}

	e.emitError("no_playable_cards", "dataset has no playable cards", false)
}

func (e *Engine) adoptNewRound(r *models.Round, d *models.Deck) {
	e.activeRound = r
	e.deck = d
	e.cursor = deck.NewCursor(d)
	e.metrics = Metrics{}
	e.status = models.RoundStatusActive
	e.awaitingAdvance = false
	e.answeredSinceAdvance = false
	e.timeUpOverlay = false
	e.stopAdvanceTimer()
}

func (e *Engine) armAdvanceTimer(d time.Duration) {
	e.stopAdvanceTimer()
	e.advanceTimer = e.clock.NewTimer(d)
}

func (e *Engine) stopAdvanceTimer() {
	if e.advanceTimer == nil {
		return
	}
	if !e.advanceTimer.Stop() {
		select {
		case <-e.advanceTimer.Chan():
		default:
		}
	}
	e.advanceTimer = nil
}

func (e *Engine) teardown() {
	e.countdown.Pause()
	e.stopAdvanceTimer()
	e.status = models.RoundStatusNone
	e.activeRound = nil
	e.deck = nil
	e.cursor = nil
	e.metrics = Metrics{}
	e.awaitingAdvance = false
	e.answeredSinceAdvance = false
	e.timeUpOverlay = false
}

// reportRoundFailure classifies a round creation failure into the
// user-facing error taxonomy.
func (e *Engine) reportRoundFailure(err error) {
	switch {
	case errors.Is(err, round.ErrUnauthenticated):
		e.promptSignIn("sign in to start a round")
	case errors.Is(err, round.ErrNoDataset):
		e.emitError("no_dataset", "select a dataset first", false)
	default:
		log.Warn().Err(err).Str("session_id", e.id).Msg("round creation failed")
		e.emitError("round_create_failed", "could not start a round, try again", true)
	}
}

func (e *Engine) promptSignIn(reason string) {
	if e.prompter != nil {
		e.prompter.PromptSignIn(reason)
	}
	e.emit(events.EventTypePromptSignIn, events.PromptSignInPayload{Reason: reason})
}

func (e *Engine) emitRoundStarted(r *models.Round, d *models.Deck) {
	e.emit(events.EventTypeRoundStarted, events.RoundStartedPayload{
		RoundID:     r.ID.String(),
		DatasetName: r.DatasetName,
		DeckSize:    len(d.Cards),
		StartedAt:   e.clock.Now().UTC(),
	})
}

func (e *Engine) emitTimerSynced(remaining int) {
	roundID := ""
	if e.activeRound != nil {
		roundID = e.activeRound.ID.String()
	}
	e.emit(events.EventTypeTimerSynced, events.TimerSyncedPayload{
		RoundID:      roundID,
		RemainingSec: remaining,
		DurationSec:  e.countdown.Duration(),
		Paused:       false,
		SyncedAt:     e.clock.Now().UTC(),
	})
}

func (e *Engine) emitError(code, message string, retryable bool) {
	e.emit(events.EventTypeSessionError, events.SessionErrorPayload{
		Code:      code,
		Message:   message,
		Retryable: retryable,
	})
}

func (e *Engine) emit(eventType events.EventType, payload interface{}) {
	evt, err := events.New(e.id, eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("session_id", e.id).Msg("failed to build event")
		return
	}
	e.sink.Emit(evt)
}
