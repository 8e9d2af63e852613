package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/chartdrill/go/internal/deck"
	deckdb "github.com/mcdev12/chartdrill/go/internal/deck/db"
	"github.com/mcdev12/chartdrill/go/internal/match"
	matchdb "github.com/mcdev12/chartdrill/go/internal/match/db"
	"github.com/mcdev12/chartdrill/go/internal/round"
	rounddb "github.com/mcdev12/chartdrill/go/internal/round/db"
	"github.com/mcdev12/chartdrill/go/internal/session"
)

type Apps struct {
	Rounds  *round.App
	Matches *match.App
	Decks   *deck.App
	Factory *session.Factory
}

func setupApps(database *sql.DB, config *Config) *Apps {
	// Wire up dependency injection chain
	// Database layer -> Repository layer -> App layer -> Session factory

	// Rounds
	roundQueries := rounddb.New(database)
	roundRepo := round.NewRepository(roundQueries)
	roundApp := round.NewApp(roundRepo)

	// Matches
	matchQueries := matchdb.New(database)
	matchRepo := match.NewRepository(matchQueries)
	matchApp := match.NewApp(matchRepo)

	// Decks
	deckQueries := deckdb.New(database)
	deckRepo := deck.NewRepository(deckQueries)
	deckApp := deck.NewApp(deckRepo, config.deckFetchTimeout())

	factory := session.NewFactory(
		config.sessionConfig(),
		session.DefaultLoggerConfig(),
		clockwork.NewRealClock(),
		deckApp,
		roundApp,
		matchApp,
		matchApp,
		roundApp,
	)

	return &Apps{
		Rounds:  roundApp,
		Matches: matchApp,
		Decks:   deckApp,
		Factory: factory,
	}
}
