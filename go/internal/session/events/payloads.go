package events

import (
	"time"
)

// Event payload types shared between the session engine and the gateway

// RoundStartedPayload is the payload for a RoundStarted event
type RoundStartedPayload struct {
	RoundID     string    `json:"round_id"`
	DatasetName string    `json:"dataset_name"`
	DeckSize    int       `json:"deck_size"`
	StartedAt   time.Time `json:"started_at"`
}

// RoundResumedPayload is the payload for a RoundResumed event
type RoundResumedPayload struct {
	RoundID      string    `json:"round_id"`
	DatasetName  string    `json:"dataset_name"`
	CardIndex    int       `json:"card_index"`
	MatchCount   int       `json:"match_count"`
	CorrectCount int       `json:"correct_count"`
	Accuracy     string    `json:"accuracy"`
	ResumedAt    time.Time `json:"resumed_at"`
}

// RoundCompletedPayload is the payload for a RoundCompleted event
type RoundCompletedPayload struct {
	RoundID     string    `json:"round_id"`
	MatchCount  int       `json:"match_count"`
	Accuracy    string    `json:"accuracy"`
	CompletedAt time.Time `json:"completed_at"`
}

// AnswerScoredPayload is the payload for an AnswerScored event
type AnswerScoredPayload struct {
	RoundID       string    `json:"round_id"`
	StockSymbol   string    `json:"stock_symbol"`
	UserSelection int       `json:"user_selection"`
	Expected      int       `json:"expected"`
	Correct       bool      `json:"correct"`
	Forced        bool      `json:"forced"`
	MatchCount    int       `json:"match_count"`
	CorrectCount  int       `json:"correct_count"`
	Accuracy      string    `json:"accuracy"`
	ScoredAt      time.Time `json:"scored_at"`
}

// TimeExpiredPayload is the payload for a TimeExpired event
type TimeExpiredPayload struct {
	RoundID     string    `json:"round_id"`
	StockSymbol string    `json:"stock_symbol"`
	ExpiredAt   time.Time `json:"expired_at"`
}

// CardAdvancedPayload is the payload for a CardAdvanced event
type CardAdvancedPayload struct {
	RoundID     string   `json:"round_id"`
	CardIndex   int      `json:"card_index"`
	AnswerIndex int      `json:"answer_index"`
	StockSymbol string   `json:"stock_symbol"`
	ChartFiles  []string `json:"chart_files"`
	RevealFile  *string  `json:"reveal_file,omitempty"`
}

// TimerSyncedPayload carries the authoritative countdown state. The
// client countdown is visual feedback only; this value wins.
type TimerSyncedPayload struct {
	RoundID      string    `json:"round_id"`
	RemainingSec int       `json:"remaining_sec"`
	DurationSec  int       `json:"duration_sec"`
	Paused       bool      `json:"paused"`
	SyncedAt     time.Time `json:"synced_at"`
}

// SessionErrorPayload is the payload for a SessionError event
type SessionErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// PromptSignInPayload asks the client to open its sign-in flow
type PromptSignInPayload struct {
	Reason string `json:"reason"`
}
