package session

import (
	"github.com/jonboulle/clockwork"
)

// Factory builds per-client session engines over shared app-layer
// collaborators.
type Factory struct {
	cfg       Config
	loggerCfg LoggerConfig
	clock     clockwork.Clock
	decks     DeckLoader
	rounds    RoundApp
	matches   MatchReader
	writer    MatchWriter
	creator   RoundCreator
}

// NewFactory creates a session factory.
func NewFactory(cfg Config, loggerCfg LoggerConfig, clock clockwork.Clock, decks DeckLoader, rounds RoundApp, matches MatchReader, writer MatchWriter, creator RoundCreator) *Factory {
	return &Factory{
		cfg:       cfg,
		loggerCfg: loggerCfg,
		clock:     clock,
		decks:     decks,
		rounds:    rounds,
		matches:   matches,
		writer:    writer,
		creator:   creator,
	}
}

// NewSession creates an engine and its match logger for one client.
// Both need their Run loops started by the caller.
func (f *Factory) NewSession(sink Sink, prompter SignInPrompter) (*Engine, *MatchLogger) {
	logger := NewMatchLogger(f.writer, f.creator, f.clock, f.loggerCfg)
	engine := NewEngine(f.cfg, f.clock, f.decks, f.rounds, f.matches, logger, sink, prompter)
	return engine, logger
}
