package models

import "time"

// Change feed operations.
const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// ChangeEvent notifies subscribers that a table's contents changed. Consumers
// refetch and recompute from scratch; the event carries no row diff.
type ChangeEvent struct {
	Table      string    `json:"table"`
	Op         string    `json:"op"`
	RowID      int64     `json:"row_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
