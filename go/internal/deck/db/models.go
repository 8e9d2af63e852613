package db

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type Card struct {
	ID              uuid.UUID
	DatasetName     string
	Position        int32
	Name            string
	ChartFiles      pqtype.NullRawMessage
	ExpectedAnswers pqtype.NullRawMessage
	RevealFile      sql.NullString
}
