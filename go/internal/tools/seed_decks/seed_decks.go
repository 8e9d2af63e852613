package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/chartdrill/go/internal/dbconfig"
)

// SeedCard mirrors one card entry in decks.json
type SeedCard struct {
	Name            string   `json:"name"`
	ChartFiles      []string `json:"chart_files"`
	ExpectedAnswers []int    `json:"expected_answer_sequence"`
	RevealFile      *string  `json:"reveal_file"`
}

// SeedDeck groups the cards of one dataset
type SeedDeck struct {
	DatasetName string     `json:"dataset_name"`
	Cards       []SeedCard `json:"cards"`
}

func main() {
	ctx := context.Background()

	// 1) Load decks.json
	data, err := os.ReadFile("go/internal/assets/decks.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read decks.json: %v\n", err)
		os.Exit(1)
	}
	var decks []SeedDeck
	if err := json.Unmarshal(data, &decks); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal decks: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect to DB
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Seed cards per dataset
	for _, deck := range decks {
		total, inserted, skipped, errs := len(deck.Cards), 0, 0, 0
		for pos, card := range deck.Cards {
			chartFiles, err := json.Marshal(card.ChartFiles)
			if err != nil {
				errs++
				continue
			}
			answers, err := json.Marshal(card.ExpectedAnswers)
			if err != nil {
				errs++
				continue
			}
			tag, err := pool.Exec(ctx, `
            INSERT INTO cards (
              id, dataset_name, position, name, chart_files, expected_answers, reveal_file
            ) VALUES ($1,$2,$3,$4,$5,$6,$7)
            ON CONFLICT (dataset_name, position) DO NOTHING
        `, uuid.New(), deck.DatasetName, pos, card.Name, chartFiles, answers, card.RevealFile)
			if err != nil {
				errs++
				continue
			}
			if tag.RowsAffected() == 1 {
				inserted++
			} else {
				skipped++
			}
		}
		fmt.Printf(
			"Deck %s seed: total=%d inserted=%d skipped=%d errors=%d\n",
			deck.DatasetName, total, inserted, skipped, errs,
		)
	}
}
