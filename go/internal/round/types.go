package round

import (
	"github.com/google/uuid"
)

// CreateRoundRequest carries the fields needed to persist a new round.
type CreateRoundRequest struct {
	ID          uuid.UUID `json:"id"`
	DatasetName string    `json:"dataset_name"`
	UserID      uuid.UUID `json:"user_id"`
}

// UpdateRoundRequest flips the completion flag on an existing round.
type UpdateRoundRequest struct {
	Completed bool `json:"completed"`
}
