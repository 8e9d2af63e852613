package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// ClientCommand is the envelope for messages arriving from a client
type ClientCommand struct {
	Type CommandType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// CommandType represents the type of client command
type CommandType string

const (
	CommandSignIn        CommandType = "SignIn"
	CommandSignOut       CommandType = "SignOut"
	CommandSelectDataset CommandType = "SelectDataset"
	CommandAnswer        CommandType = "Answer"
	CommandNewRound      CommandType = "NewRound"
	// CommandSyncTimer is sent when the client tab is foregrounded so
	// the authoritative countdown is corrected immediately.
	CommandSyncTimer CommandType = "SyncTimer"
)

// SignInData carries the authenticated user id
type SignInData struct {
	UserID string `json:"user_id"`
}

// SelectDatasetData names the dataset to practice on
type SelectDatasetData struct {
	DatasetName string `json:"dataset_name"`
}

// AnswerData carries the user's prediction for the current card
type AnswerData struct {
	Selection int `json:"selection"`
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      64,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}
