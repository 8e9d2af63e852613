package db

import (
	"context"
)

const listCardsByDataset = `-- name: ListCardsByDataset :many
SELECT id, dataset_name, position, name, chart_files, expected_answers, reveal_file
FROM cards
WHERE dataset_name = $1
ORDER BY position ASC
`

func (q *Queries) ListCardsByDataset(ctx context.Context, datasetName string) ([]Card, error) {
	rows, err := q.db.QueryContext(ctx, listCardsByDataset, datasetName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Card
	for rows.Next() {
		var i Card
		if err := rows.Scan(
			&i.ID,
			&i.DatasetName,
			&i.Position,
			&i.Name,
			&i.ChartFiles,
			&i.ExpectedAnswers,
			&i.RevealFile,
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

const listDatasets = `-- name: ListDatasets :many
SELECT DISTINCT dataset_name
FROM cards
ORDER BY dataset_name ASC
`

func (q *Queries) ListDatasets(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listDatasets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var datasetName string
		if err := rows.Scan(&datasetName); err != nil {
			return nil, err
		}
		items = append(items, datasetName)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
