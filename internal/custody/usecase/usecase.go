package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/cache"
	"github.com/fekuna/omnipos-trace-service/internal/custody"
	"github.com/fekuna/omnipos-trace-service/internal/custody/dto"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/fekuna/omnipos-trace-service/internal/tracecode"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type custodyUseCase struct {
	repo        custody.Repository
	locker      custody.Locker
	publisher   custody.Publisher
	invalidator custody.CacheInvalidator
	logger      logger.ZapLogger
	now         func() time.Time
}

// NewCustodyUseCase wires the history reader and the write path. publisher
// and invalidator may be nil.
func NewCustodyUseCase(repo custody.Repository, locker custody.Locker, publisher custody.Publisher, invalidator custody.CacheInvalidator, log logger.ZapLogger) custody.UseCase {
	if locker == nil {
		locker = cache.NewLocalLocker()
	}
	return &custodyUseCase{
		repo:        repo,
		locker:      locker,
		publisher:   publisher,
		invalidator: invalidator,
		logger:      log,
		now:         time.Now,
	}
}

// History returns the audit trail of a subject. A unit's trail includes the
// events recorded against its batch.
func (uc *custodyUseCase) History(ctx context.Context, subject model.SubjectRef) ([]model.CustodyEvent, error) {
	subjects := []model.SubjectRef{subject}
	if subject.Type == model.SubjectUnit && subject.BatchID != "" {
		subjects = append(subjects, model.SubjectRef{Type: model.SubjectBatch, ID: subject.BatchID})
	}

	events, err := uc.repo.ListBySubjects(ctx, subjects)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].Seq < events[j].Seq
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	return events, nil
}

func (uc *custodyUseCase) RecordEvent(ctx context.Context, input *dto.RecordEventInput) (*dto.RecordEventResult, error) {
	code, transition, err := validate(input)
	if err != nil {
		return nil, err
	}

	subject, err := uc.repo.ResolveSubject(ctx, code)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, fmt.Errorf("%w: %s", custody.ErrSubjectNotFound, code.Value)
	}

	occurred := input.OccurredAt
	if occurred.IsZero() {
		occurred = uc.now()
	}
	eventID := input.EventID
	if eventID == "" {
		eventID = uuid.New().String()
	}

	ev := &model.CustodyEvent{
		EventID:     eventID,
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		Action:      strings.TrimSpace(input.Action),
		ActorName:   strings.TrimSpace(input.ActorName),
		Location:    optional(input.Location),
		CreatedAt:   occurred.UTC(),
	}

	lockKey := fmt.Sprintf("lock:custody:%s:%s", subject.Type, subject.ID)
	unlock, err := uc.locker.Lock(ctx, lockKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	applied, err := uc.repo.Append(ctx, ev, transition)
	if err != nil {
		return nil, err
	}

	if applied && uc.invalidator != nil {
		if err := uc.invalidator.InvalidateBatch(ctx, subject.BatchNumber); err != nil {
			uc.logger.Warn("failed to invalidate batch caches",
				zap.String("batch", subject.BatchNumber), zap.Error(err))
		}
	}

	return &dto.RecordEventResult{Applied: applied, Subject: *subject, Event: *ev}, nil
}

// Submit validates the event and hands it to the broker. The message key is the
// batch code so a batch and its units share one ordered partition.
func (uc *custodyUseCase) Submit(ctx context.Context, input *dto.RecordEventInput) (*dto.CustodyEventMessage, error) {
	if uc.publisher == nil {
		return nil, custody.ErrNoPublisher
	}
	code, _, err := validate(input)
	if err != nil {
		return nil, err
	}

	msg := &dto.CustodyEventMessage{
		EventID:    input.EventID,
		Code:       code.Value,
		BatchCode:  code.BatchCode,
		Action:     strings.TrimSpace(input.Action),
		ActorName:  strings.TrimSpace(input.ActorName),
		Location:   strings.TrimSpace(input.Location),
		OccurredAt: input.OccurredAt,
		Status:     input.Status,
		RetailerID: input.RetailerID,
	}
	if msg.EventID == "" {
		msg.EventID = uuid.New().String()
	}
	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = uc.now().UTC()
	}

	if err := uc.publisher.Publish(ctx, msg); err != nil {
		return nil, err
	}
	uc.logger.Info("custody event submitted", zap.String("event_id", msg.EventID), zap.String("code", msg.Code))
	return msg, nil
}

func validate(input *dto.RecordEventInput) (tracecode.Code, *model.StatusTransition, error) {
	code, err := tracecode.Parse(input.Code)
	if err != nil {
		return tracecode.Code{}, nil, err
	}
	if strings.TrimSpace(input.Action) == "" {
		return tracecode.Code{}, nil, fmt.Errorf("%w: action is required", custody.ErrInvalidEvent)
	}
	if strings.TrimSpace(input.ActorName) == "" {
		return tracecode.Code{}, nil, fmt.Errorf("%w: actor name is required", custody.ErrInvalidEvent)
	}

	if input.Status == "" {
		if input.RetailerID != "" {
			return tracecode.Code{}, nil, fmt.Errorf("%w: retailer requires a status", custody.ErrInvalidEvent)
		}
		return code, nil, nil
	}

	status := model.BatchStatus(input.Status)
	if !status.Valid() {
		return tracecode.Code{}, nil, fmt.Errorf("%w: unknown status %q", custody.ErrInvalidEvent, input.Status)
	}
	// recalls carry a reason and go through the catalog
	if status == model.BatchStatusRecalled {
		return tracecode.Code{}, nil, fmt.Errorf("%w: use the recall endpoint to recall a batch", custody.ErrInvalidEvent)
	}
	if input.RetailerID != "" && code.Kind != tracecode.KindSerial {
		return tracecode.Code{}, nil, fmt.Errorf("%w: retailer can only be set on a unit", custody.ErrInvalidEvent)
	}
	return code, &model.StatusTransition{Status: status, RetailerID: optional(input.RetailerID)}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
