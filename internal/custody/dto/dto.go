package dto

import "github.com/fekuna/omnipos-trace-service/internal/model"

type RecordEventResult struct {
	Applied bool
	Subject model.SubjectRef
	Event   model.CustodyEvent
}
