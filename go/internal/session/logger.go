package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/chartdrill/go/internal/match"
	"github.com/mcdev12/chartdrill/go/internal/models"
	"github.com/mcdev12/chartdrill/go/internal/round"
	"github.com/rs/zerolog/log"
)

// RoundCreator defines what the match logger needs from the round app
// to run the round-not-found recovery path.
type RoundCreator interface {
	CreateRound(ctx context.Context, datasetName string, userID uuid.UUID) (*models.Round, error)
}

// MatchWriter defines what the match logger needs from the match app.
type MatchWriter interface {
	LogMatch(ctx context.Context, req match.LogMatchRequest) (*models.Match, error)
}

// LoggerConfig holds match logger tunables.
type LoggerConfig struct {
	QueueSize     int
	SubmitTimeout time.Duration
	Recovery      RetryPolicy
}

// DefaultLoggerConfig returns default match logger configuration.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		QueueSize:     64,
		SubmitTimeout: 10 * time.Second,
		Recovery:      DefaultRecoveryPolicy(),
	}
}

type matchJob struct {
	req         match.LogMatchRequest
	datasetName string
}

// MatchLogger records answer events against the active round without
// ever blocking gameplay. Submissions run on a single worker in
// enqueue order; failures other than round-not-found are logged and
// dropped. Round-not-found triggers exactly one recovery cycle per
// job: create a fresh round, wait a fixed grace period, resubmit with
// the new round id, then drop.
type MatchLogger struct {
	matches MatchWriter
	rounds  RoundCreator
	clock   clockwork.Clock
	cfg     LoggerConfig
	queue   chan matchJob

	// onRecovered is invoked with the replacement round after a
	// successful recovery so the session can adopt its id.
	onRecovered func(*models.Round)
}

// NewMatchLogger creates an async match logger.
func NewMatchLogger(matches MatchWriter, rounds RoundCreator, clock clockwork.Clock, cfg LoggerConfig) *MatchLogger {
	return &MatchLogger{
		matches: matches,
		rounds:  rounds,
		clock:   clock,
		cfg:     cfg,
		queue:   make(chan matchJob, cfg.QueueSize),
	}
}

// SetRecoveredHandler registers the callback fired after a successful
// round-not-found recovery. Must be set before Run.
func (l *MatchLogger) SetRecoveredHandler(fn func(*models.Round)) {
	l.onRecovered = fn
}

// Enqueue submits a match for asynchronous logging. It never blocks:
// when the queue is full the event is dropped with a warning.
func (l *MatchLogger) Enqueue(req match.LogMatchRequest, datasetName string) {
	select {
	case l.queue <- matchJob{req: req, datasetName: datasetName}:
	default:
		log.Warn().
			Str("round_id", req.RoundID.String()).
			Str("stock_symbol", req.StockSymbol).
			Msg("match log queue full, dropping event")
	}
}

// Run processes queued matches until ctx is cancelled.
func (l *MatchLogger) Run(ctx context.Context) {
	log.Info().Int("queue_size", l.cfg.QueueSize).Msg("match logger started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("match logger shutting down")
			return
		case job := <-l.queue:
			l.submit(ctx, job)
		}
	}
}

func (l *MatchLogger) submit(ctx context.Context, job matchJob) {
	submitCtx, cancel := context.WithTimeout(ctx, l.cfg.SubmitTimeout)
	defer cancel()

	_, err := l.matches.LogMatch(submitCtx, job.req)
	if err == nil {
		log.Debug().
			Str("round_id", job.req.RoundID.String()).
			Str("stock_symbol", job.req.StockSymbol).
			Bool("correct", job.req.Correct).
			Msg("match logged")
		return
	}

	if !errors.Is(err, round.ErrRoundNotFound) {
		// Transport or validation failure: log only, gameplay already
		// moved on.
		log.Warn().
			Err(err).
			Str("round_id", job.req.RoundID.String()).
			Msg("match log failed, dropping event")
		return
	}

	l.recover(ctx, job)
}

// recover runs the one-shot round-not-found recovery cycle.
func (l *MatchLogger) recover(ctx context.Context, job matchJob) {
	log.Warn().
		Str("round_id", job.req.RoundID.String()).
		Msg("round missing for match, creating replacement round")

	newRound, err := l.rounds.CreateRound(ctx, job.datasetName, job.req.UserID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("dataset", job.datasetName).
			Msg("recovery round creation failed, dropping match")
		return
	}

	// Grace period for the new id to settle into state.
	for attempt := 1; attempt <= l.cfg.Recovery.Attempts; attempt++ {
		timer := l.clock.NewTimer(l.cfg.Recovery.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}

		job.req.RoundID = newRound.ID
		submitCtx, cancel := context.WithTimeout(ctx, l.cfg.SubmitTimeout)
		_, err = l.matches.LogMatch(submitCtx, job.req)
		cancel()
		if err == nil {
			log.Info().
				Str("round_id", newRound.ID.String()).
				Str("stock_symbol", job.req.StockSymbol).
				Msg("match logged after round recovery")
			if l.onRecovered != nil {
				l.onRecovered(newRound)
			}
			return
		}
	}

	// Retry exhausted: the match is dropped, not queued further.
	log.Warn().
		Err(err).
		Str("round_id", newRound.ID.String()).
		Msg("match retry failed after recovery, dropping event")
}
