package dto

import "time"

type RecordEventInput struct {
	EventID    string
	Code       string
	Action     string
	ActorName  string
	Location   string
	OccurredAt time.Time
	Status     string // optional new status of the subject
	RetailerID string // optional, units only
}

// CustodyEventMessage is the wire format on the custody topic.
type CustodyEventMessage struct {
	EventID    string    `json:"event_id"`
	Code       string    `json:"code"`
	BatchCode  string    `json:"batch_code"`
	Action     string    `json:"action"`
	ActorName  string    `json:"actor_name"`
	Location   string    `json:"location,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Status     string    `json:"status,omitempty"`
	RetailerID string    `json:"retailer_id,omitempty"`
}

func (m *CustodyEventMessage) ToInput() *RecordEventInput {
	return &RecordEventInput{
		EventID:    m.EventID,
		Code:       m.Code,
		Action:     m.Action,
		ActorName:  m.ActorName,
		Location:   m.Location,
		OccurredAt: m.OccurredAt,
		Status:     m.Status,
		RetailerID: m.RetailerID,
	}
}
