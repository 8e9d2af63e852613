package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// DeckLister defines what the HTTP handler needs from the deck app
type DeckLister interface {
	ListDatasets(ctx context.Context) ([]string, error)
}

// Handler exposes the WebSocket session endpoint plus small JSON
// helpers around it.
type Handler struct {
	connectionManager *ConnectionManager
	decks             DeckLister
	ctx               context.Context
}

// NewHandler creates a gateway HTTP handler. ctx bounds the lifetime
// of every session spawned through it.
func NewHandler(ctx context.Context, cm *ConnectionManager, decks DeckLister) *Handler {
	return &Handler{
		connectionManager: cm,
		decks:             decks,
		ctx:               ctx,
	}
}

// HandleSessionConnection upgrades the request into a practice session
func (h *Handler) HandleSessionConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.connectionManager.UpgradeConnection(h.ctx, w, r); err != nil {
		log.Error().Err(err).Msg("failed to open session connection")
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
	}
}

// HandleDatasets lists the datasets available for practice
func (h *Handler) HandleDatasets(w http.ResponseWriter, r *http.Request) {
	names, err := h.decks.ListDatasets(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list datasets")
		http.Error(w, "failed to list datasets", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"datasets": names})
}

// HandleConnectionStats returns statistics about active connections
func (h *Handler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"total_connections": h.connectionManager.ConnectionCount(),
	})
}

// RegisterRoutes registers gateway routes with an HTTP mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/session", h.HandleSessionConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
	mux.HandleFunc("/datasets", h.HandleDatasets)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}
