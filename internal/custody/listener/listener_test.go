package listener

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/custody"
	"github.com/fekuna/omnipos-trace-service/internal/custody/dto"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeReader struct {
	msgs      chan kafka.Message
	mu        sync.Mutex
	committed []int64
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{msgs: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-r.msgs:
		return m, nil
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

// fakeUseCase fails each event id with the queued errors before accepting it.
type fakeUseCase struct {
	custody.UseCase

	mu       sync.Mutex
	failures map[string][]error
	recorded []string
}

func (u *fakeUseCase) RecordEvent(_ context.Context, input *dto.RecordEventInput) (*dto.RecordEventResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if errs := u.failures[input.EventID]; len(errs) > 0 {
		u.failures[input.EventID] = errs[1:]
		return nil, errs[0]
	}
	u.recorded = append(u.recorded, input.EventID)
	return &dto.RecordEventResult{Applied: true, Event: model.CustodyEvent{EventID: input.EventID}}, nil
}

func (u *fakeUseCase) events() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.recorded...)
}

func message(t *testing.T, offset int64, eventID string) kafka.Message {
	t.Helper()
	data, err := json.Marshal(dto.CustodyEventMessage{
		EventID:   eventID,
		Code:      "BATCH-20260112-1234",
		BatchCode: "BATCH-20260112-1234",
		Action:    "Shipped",
		ActorName: "Golden Farms Co.",
	})
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Key: []byte("BATCH-20260112-1234"), Value: data}
}

func TestCustodyListener(t *testing.T) {
	defer goleak.VerifyNone(t)

	reader := newFakeReader(
		message(t, 1, "ev-1"),
		kafka.Message{Offset: 2, Value: []byte("{not json")},
		message(t, 3, "ev-3"),
		message(t, 4, "ev-4"),
	)
	uc := &fakeUseCase{failures: map[string][]error{
		"ev-3": {errors.New("connection reset"), errors.New("connection reset")},
		"ev-4": {custody.ErrOutOfOrder},
	}}

	l := NewCustodyListener(reader, uc, logger.NewNop())
	l.retryDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(reader.commits()) == 4
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, []int64{1, 2, 3, 4}, reader.commits())
	assert.Equal(t, []string{"ev-1", "ev-3"}, uc.events())
}

func TestCustodyListener_StopsWhileRetrying(t *testing.T) {
	defer goleak.VerifyNone(t)

	reader := newFakeReader(message(t, 1, "ev-1"))
	uc := &fakeUseCase{failures: map[string][]error{
		"ev-1": {errors.New("down"), errors.New("down"), errors.New("down"), errors.New("down")},
	}}

	l := NewCustodyListener(reader, uc, logger.NewNop())
	l.retryDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	assert.Empty(t, reader.commits(), "an unprocessed message must not be committed")
}
