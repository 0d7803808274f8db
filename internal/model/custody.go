package model

import "time"

type SubjectType string

const (
	SubjectBatch SubjectType = "batch"
	SubjectUnit  SubjectType = "unit"
)

// SubjectRef identifies the batch or unit a custody event belongs to.
type SubjectRef struct {
	Type        SubjectType `json:"type"`
	ID          string      `json:"id"`
	BatchID     string      `json:"batch_id"`
	BatchNumber string      `json:"batch_number"`
}

// CustodyEvent rows are append-only. Seq is assigned by the database and
// breaks ties between events with the same CreatedAt.
type CustodyEvent struct {
	Seq         int64       `db:"seq" json:"seq"`
	EventID     string      `db:"event_id" json:"event_id"`
	SubjectType SubjectType `db:"subject_type" json:"subject_type"`
	SubjectID   string      `db:"subject_id" json:"subject_id"`
	Action      string      `db:"action" json:"action"`
	ActorName   string      `db:"actor_name" json:"actor_name"`
	Location    *string     `db:"location" json:"location"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// StatusTransition is applied together with the event that caused it.
type StatusTransition struct {
	Status     BatchStatus
	RetailerID *string
}
