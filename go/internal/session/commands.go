package session

import (
	"github.com/google/uuid"
	"github.com/mcdev12/chartdrill/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Commands are posted onto the engine's command channel and handled
// serially by the Run loop; there are no other mutation paths into
// session state.

type cmdSignIn struct{ userID uuid.UUID }

type cmdSignOut struct{}

type cmdSelectDataset struct{ name string }

type cmdAnswer struct{ selection int }

type cmdNewRound struct{}

type cmdSyncTimer struct{}

// cmdAdoptRound carries the replacement round created by the match
// logger's recovery path back into the engine loop.
type cmdAdoptRound struct{ round *models.Round }

// SignIn records an authentication transition and triggers auto-resume
// when no round is active.
func (e *Engine) SignIn(userID uuid.UUID) { e.post(cmdSignIn{userID: userID}) }

// SignOut clears the authenticated user and tears down session state.
func (e *Engine) SignOut() { e.post(cmdSignOut{}) }

// SelectDataset loads a deck and starts the first round on it.
func (e *Engine) SelectDataset(name string) { e.post(cmdSelectDataset{name: name}) }

// Answer scores the user's selection against the current card.
func (e *Engine) Answer(selection int) { e.post(cmdAnswer{selection: selection}) }

// NewRound completes the current round (best-effort) and starts a
// fresh one on the same dataset.
func (e *Engine) NewRound() { e.post(cmdNewRound{}) }

// SyncTimer recomputes the countdown immediately, correcting drift
// accumulated while the client was backgrounded.
func (e *Engine) SyncTimer() { e.post(cmdSyncTimer{}) }

func (e *Engine) post(cmd interface{}) {
	select {
	case e.cmdCh <- cmd:
	default:
		log.Warn().
			Str("session_id", e.id).
			Type("command", cmd).
			Msg("command channel full, dropping command")
	}
}
