package custody

import (
	"context"

	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/fekuna/omnipos-trace-service/internal/tracecode"
)

type Repository interface {
	// ListBySubjects returns the events of all given subjects ordered by
	// created_at, then by insertion order.
	ListBySubjects(ctx context.Context, subjects []model.SubjectRef) ([]model.CustodyEvent, error)

	// ResolveSubject returns (nil, nil) for unknown codes.
	ResolveSubject(ctx context.Context, code tracecode.Code) (*model.SubjectRef, error)

	// Append writes the event and the optional transition in one transaction.
	// It reports false without error when the event id was already stored.
	Append(ctx context.Context, ev *model.CustodyEvent, transition *model.StatusTransition) (bool, error)
}
