package listener

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/custody"
	"github.com/fekuna/omnipos-trace-service/internal/custody/dto"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/tracecode"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type CustodyListener struct {
	reader     MessageReader
	uc         custody.UseCase
	logger     logger.ZapLogger
	retryDelay time.Duration
	maxDelay   time.Duration
}

func NewCustodyListener(reader MessageReader, uc custody.UseCase, logger logger.ZapLogger) *CustodyListener {
	return &CustodyListener{
		reader:     reader,
		uc:         uc,
		logger:     logger,
		retryDelay: 500 * time.Millisecond,
		maxDelay:   30 * time.Second,
	}
}

// Start blocks until ctx is cancelled. Messages are committed only after they
// were stored or found permanently unusable, so delivery is at least once;
// event ids make redelivery harmless.
func (l *CustodyListener) Start(ctx context.Context) {
	l.logger.Info("Starting custody event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping custody event listener")
			return
		default:
			msg, err := l.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to fetch kafka message", zap.Error(err))
				if !sleep(ctx, time.Second) {
					return
				}
				continue
			}

			if !l.handle(ctx, msg) {
				return
			}
			if err := l.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				l.logger.Error("Failed to commit kafka message", zap.Int64("offset", msg.Offset), zap.Error(err))
			}
		}
	}
}

// handle retries transient failures until they succeed. It returns false only
// when ctx was cancelled while retrying.
func (l *CustodyListener) handle(ctx context.Context, msg kafka.Message) bool {
	var event dto.CustodyEventMessage
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		l.logger.Error("Dropping unreadable custody event", zap.Int64("offset", msg.Offset), zap.Error(err))
		return true
	}

	delay := l.retryDelay
	for {
		res, err := l.uc.RecordEvent(ctx, event.ToInput())
		if err == nil {
			if res.Applied {
				l.logger.Info("Recorded custody event",
					zap.String("event_id", event.EventID), zap.String("code", event.Code), zap.String("action", event.Action))
			} else {
				l.logger.Debug("Skipped duplicate custody event", zap.String("event_id", event.EventID))
			}
			return true
		}

		if permanent(err) {
			l.logger.Warn("Rejected custody event",
				zap.String("event_id", event.EventID), zap.String("code", event.Code), zap.Error(err))
			return true
		}

		l.logger.Error("Failed to record custody event, retrying",
			zap.String("event_id", event.EventID), zap.Duration("delay", delay), zap.Error(err))
		if !sleep(ctx, delay) {
			return false
		}
		delay *= 2
		if delay > l.maxDelay {
			delay = l.maxDelay
		}
	}
}

func permanent(err error) bool {
	return errors.Is(err, tracecode.ErrInvalidCodeFormat) ||
		errors.Is(err, custody.ErrInvalidEvent) ||
		errors.Is(err, custody.ErrSubjectNotFound) ||
		errors.Is(err, custody.ErrOutOfOrder)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
