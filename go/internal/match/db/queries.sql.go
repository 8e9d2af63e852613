package db

import (
	"context"

	"github.com/google/uuid"
)

const createMatch = `-- name: CreateMatch :one
INSERT INTO matches (id, round_id, stock_symbol, user_selection, correct, user_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, round_id, stock_symbol, user_selection, correct, user_id, logged_at
`

type CreateMatchParams struct {
	ID            uuid.UUID
	RoundID       uuid.UUID
	StockSymbol   string
	UserSelection int32
	Correct       bool
	UserID        uuid.UUID
}

func (q *Queries) CreateMatch(ctx context.Context, arg CreateMatchParams) (Match, error) {
	row := q.db.QueryRowContext(ctx, createMatch,
		arg.ID,
		arg.RoundID,
		arg.StockSymbol,
		arg.UserSelection,
		arg.Correct,
		arg.UserID,
	)
	var i Match
	err := row.Scan(
		&i.ID,
		&i.RoundID,
		&i.StockSymbol,
		&i.UserSelection,
		&i.Correct,
		&i.UserID,
		&i.LoggedAt,
	)
	return i, err
}

const listMatchesByRound = `-- name: ListMatchesByRound :many
SELECT id, round_id, stock_symbol, user_selection, correct, user_id, logged_at
FROM matches
WHERE round_id = $1
ORDER BY logged_at ASC
`

func (q *Queries) ListMatchesByRound(ctx context.Context, roundID uuid.UUID) ([]Match, error) {
	rows, err := q.db.QueryContext(ctx, listMatchesByRound, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Match
	for rows.Next() {
		var i Match
		if err := rows.Scan(
			&i.ID,
			&i.RoundID,
			&i.StockSymbol,
			&i.UserSelection,
			&i.Correct,
			&i.UserID,
			&i.LoggedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
