package db

import (
	"context"

	"github.com/google/uuid"
)

const createRound = `-- name: CreateRound :one
INSERT INTO rounds (id, dataset_name, user_id, completed)
VALUES ($1, $2, $3, false)
RETURNING id, dataset_name, user_id, completed, created_at
`

type CreateRoundParams struct {
	ID          uuid.UUID
	DatasetName string
	UserID      uuid.UUID
}

func (q *Queries) CreateRound(ctx context.Context, arg CreateRoundParams) (Round, error) {
	row := q.db.QueryRowContext(ctx, createRound, arg.ID, arg.DatasetName, arg.UserID)
	var i Round
	err := row.Scan(
		&i.ID,
		&i.DatasetName,
		&i.UserID,
		&i.Completed,
		&i.CreatedAt,
	)
	return i, err
}

const getRound = `-- name: GetRound :one
SELECT id, dataset_name, user_id, completed, created_at
FROM rounds
WHERE id = $1
`

func (q *Queries) GetRound(ctx context.Context, id uuid.UUID) (Round, error) {
	row := q.db.QueryRowContext(ctx, getRound, id)
	var i Round
	err := row.Scan(
		&i.ID,
		&i.DatasetName,
		&i.UserID,
		&i.Completed,
		&i.CreatedAt,
	)
	return i, err
}

const updateRoundCompleted = `-- name: UpdateRoundCompleted :one
UPDATE rounds
SET completed = $2
WHERE id = $1
RETURNING id, dataset_name, user_id, completed, created_at
`

type UpdateRoundCompletedParams struct {
	ID        uuid.UUID
	Completed bool
}

func (q *Queries) UpdateRoundCompleted(ctx context.Context, arg UpdateRoundCompletedParams) (Round, error) {
	row := q.db.QueryRowContext(ctx, updateRoundCompleted, arg.ID, arg.Completed)
	var i Round
	err := row.Scan(
		&i.ID,
		&i.DatasetName,
		&i.UserID,
		&i.Completed,
		&i.CreatedAt,
	)
	return i, err
}

const listRoundsByUser = `-- name: ListRoundsByUser :many
SELECT id, dataset_name, user_id, completed, created_at
FROM rounds
WHERE user_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListRoundsByUser(ctx context.Context, userID uuid.UUID) ([]Round, error) {
	rows, err := q.db.QueryContext(ctx, listRoundsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Round
	for rows.Next() {
		var i Round
		if err := rows.Scan(
			&i.ID,
			&i.DatasetName,
			&i.UserID,
			&i.Completed,
			&i.CreatedAt,
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
