package custody

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-trace-service/internal/custody/dto"
	"github.com/fekuna/omnipos-trace-service/internal/model"
)

type UseCase interface {
	History(ctx context.Context, subject model.SubjectRef) ([]model.CustodyEvent, error)
	RecordEvent(ctx context.Context, input *dto.RecordEventInput) (*dto.RecordEventResult, error)
	Submit(ctx context.Context, input *dto.RecordEventInput) (*dto.CustodyEventMessage, error)
}

// Locker serialises writers of one subject.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type Publisher interface {
	Publish(ctx context.Context, msg *dto.CustodyEventMessage) error
}

// CacheInvalidator drops or refreshes every derived copy of a batch after an
// applied event.
type CacheInvalidator interface {
	InvalidateBatch(ctx context.Context, batchCode string) error
}

// InvalidatorFunc adapts a plain function to CacheInvalidator.
type InvalidatorFunc func(ctx context.Context, batchCode string) error

func (f InvalidatorFunc) InvalidateBatch(ctx context.Context, batchCode string) error {
	return f(ctx, batchCode)
}

// Invalidators runs each invalidator in order. Nil entries are skipped and
// every entry runs even when an earlier one fails.
type Invalidators []CacheInvalidator

func (inv Invalidators) InvalidateBatch(ctx context.Context, batchCode string) error {
	var errs []error
	for _, i := range inv {
		if i == nil {
			continue
		}
		if err := i.InvalidateBatch(ctx, batchCode); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
