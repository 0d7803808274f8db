package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/custody"
	"github.com/fekuna/omnipos-trace-service/internal/custody/dto"
	"github.com/fekuna/omnipos-trace-service/internal/custody/repository"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/fekuna/omnipos-trace-service/internal/testutil"
	"github.com/fekuna/omnipos-trace-service/internal/tracecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	mu      sync.Mutex
	batches []string
}

func (r *recordingInvalidator) InvalidateBatch(_ context.Context, batchCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batchCode)
	return nil
}

type recordingPublisher struct {
	msgs []*dto.CustodyEventMessage
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msg *dto.CustodyEventMessage) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func newUseCase(t *testing.T, pub custody.Publisher, inv custody.CacheInvalidator) *custodyUseCase {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.SeedWorld(t, db)

	uc := NewCustodyUseCase(repository.NewPGRepository(db), nil, pub, inv, logger.NewNop()).(*custodyUseCase)
	uc.now = func() time.Time { return testutil.At(2026, 3, 1, 9, 0) }
	return uc
}

func TestHistory_UnitIncludesBatchEvents(t *testing.T) {
	uc := newUseCase(t, nil, nil)

	events, err := uc.History(context.Background(), model.SubjectRef{
		Type:    model.SubjectUnit,
		ID:      "unit-n1",
		BatchID: testutil.ActiveBatchID,
	})
	require.NoError(t, err)

	var got []string
	for _, e := range events {
		got = append(got, e.Action)
	}
	assert.Equal(t, []string{"Manufactured", "Shipped", "Received", "Stocked"}, got)
}

func TestHistory_UnitWithoutOwnEvents(t *testing.T) {
	uc := newUseCase(t, nil, nil)

	events, err := uc.History(context.Background(), model.SubjectRef{
		Type:    model.SubjectUnit,
		ID:      "unit-s1",
		BatchID: testutil.ActiveBatchID,
	})
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestRecordEvent(t *testing.T) {
	inv := &recordingInvalidator{}
	uc := newUseCase(t, nil, inv)
	ctx := context.Background()

	res, err := uc.RecordEvent(ctx, &dto.RecordEventInput{
		EventID:   "ev-100",
		Code:      testutil.SerialSouth,
		Action:    " Sold ",
		ActorName: "South Grocers",
		Location:  "Bergen",
		Status:    string(model.BatchStatusSold),
	})
	require.NoError(t, err)

	assert.True(t, res.Applied)
	assert.Equal(t, model.SubjectUnit, res.Subject.Type)
	assert.Equal(t, "unit-s1", res.Subject.ID)
	assert.Equal(t, "Sold", res.Event.Action)
	assert.Equal(t, testutil.At(2026, 3, 1, 9, 0), res.Event.CreatedAt)
	require.NotNil(t, res.Event.Location)
	assert.Equal(t, "Bergen", *res.Event.Location)
	assert.Equal(t, []string{testutil.ActiveBatch}, inv.batches)

	again, err := uc.RecordEvent(ctx, &dto.RecordEventInput{
		EventID:   "ev-100",
		Code:      testutil.SerialSouth,
		Action:    "Sold",
		ActorName: "South Grocers",
	})
	require.NoError(t, err)
	assert.False(t, again.Applied)
	assert.Len(t, inv.batches, 1, "duplicates must not invalidate")
}

func TestRecordEvent_GeneratesEventID(t *testing.T) {
	uc := newUseCase(t, nil, nil)

	res, err := uc.RecordEvent(context.Background(), &dto.RecordEventInput{
		Code:      testutil.EmptyBatch,
		Action:    "Manufactured",
		ActorName: testutil.ManufacturerName,
	})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.NotEmpty(t, res.Event.EventID)
	assert.Nil(t, res.Event.Location)
}

func TestRecordEvent_Rejections(t *testing.T) {
	uc := newUseCase(t, nil, nil)

	tests := []struct {
		name  string
		input dto.RecordEventInput
		want  error
	}{
		{
			name:  "malformed code",
			input: dto.RecordEventInput{Code: "nope", Action: "Shipped", ActorName: "x"},
			want:  tracecode.ErrInvalidCodeFormat,
		},
		{
			name:  "missing action",
			input: dto.RecordEventInput{Code: testutil.ActiveBatch, Action: "  ", ActorName: "x"},
			want:  custody.ErrInvalidEvent,
		},
		{
			name:  "missing actor",
			input: dto.RecordEventInput{Code: testutil.ActiveBatch, Action: "Shipped"},
			want:  custody.ErrInvalidEvent,
		},
		{
			name:  "unknown status",
			input: dto.RecordEventInput{Code: testutil.ActiveBatch, Action: "Shipped", ActorName: "x", Status: "Lost"},
			want:  custody.ErrInvalidEvent,
		},
		{
			name:  "recall through custody",
			input: dto.RecordEventInput{Code: testutil.ActiveBatch, Action: "Recalled", ActorName: "x", Status: "Recalled"},
			want:  custody.ErrInvalidEvent,
		},
		{
			name:  "retailer on a batch",
			input: dto.RecordEventInput{Code: testutil.ActiveBatch, Action: "Stocked", ActorName: "x", Status: "In_Inventory", RetailerID: testutil.RetailerNorthID},
			want:  custody.ErrInvalidEvent,
		},
		{
			name:  "retailer without status",
			input: dto.RecordEventInput{Code: testutil.SerialSouth, Action: "Stocked", ActorName: "x", RetailerID: testutil.RetailerNorthID},
			want:  custody.ErrInvalidEvent,
		},
		{
			name:  "unknown subject",
			input: dto.RecordEventInput{Code: testutil.UnknownBatch, Action: "Shipped", ActorName: "x"},
			want:  custody.ErrSubjectNotFound,
		},
		{
			name:  "older than the trail",
			input: dto.RecordEventInput{Code: testutil.ActiveBatch, Action: "Shipped", ActorName: "x", OccurredAt: testutil.At(2026, 1, 1, 0, 0)},
			want:  custody.ErrOutOfOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			res, err := uc.RecordEvent(context.Background(), &input)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRecordEvent_ConcurrentWritersKeepTrailOrdered(t *testing.T) {
	uc := newUseCase(t, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.RecordEvent(ctx, &dto.RecordEventInput{
				Code:       testutil.SerialNorth2,
				Action:     "Inspected",
				ActorName:  "North Market",
				OccurredAt: testutil.At(2026, 2, 1, 9, 0),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	events, err := uc.History(ctx, model.SubjectRef{Type: model.SubjectUnit, ID: "unit-n2"})
	require.NoError(t, err)
	assert.Len(t, events, 10)
	for i := 1; i < len(events); i++ {
		assert.Less(t, events[i-1].Seq, events[i].Seq)
	}
}

func TestSubmit(t *testing.T) {
	t.Run("without publisher", func(t *testing.T) {
		uc := newUseCase(t, nil, nil)
		_, err := uc.Submit(context.Background(), &dto.RecordEventInput{Code: testutil.ActiveBatch, Action: "Shipped", ActorName: "x"})
		assert.ErrorIs(t, err, custody.ErrNoPublisher)
	})

	t.Run("keys by batch code", func(t *testing.T) {
		pub := &recordingPublisher{}
		uc := newUseCase(t, pub, nil)

		msg, err := uc.Submit(context.Background(), &dto.RecordEventInput{
			Code:      testutil.SerialNorth1,
			Action:    "Shipped",
			ActorName: "Golden Farms Co.",
		})
		require.NoError(t, err)
		require.Len(t, pub.msgs, 1)
		assert.Same(t, msg, pub.msgs[0])
		assert.Equal(t, testutil.ActiveBatch, msg.BatchCode)
		assert.NotEmpty(t, msg.EventID)
		assert.Equal(t, testutil.At(2026, 3, 1, 9, 0), msg.OccurredAt)
	})

	t.Run("invalid input is not published", func(t *testing.T) {
		pub := &recordingPublisher{}
		uc := newUseCase(t, pub, nil)

		_, err := uc.Submit(context.Background(), &dto.RecordEventInput{Code: testutil.ActiveBatch})
		assert.ErrorIs(t, err, custody.ErrInvalidEvent)
		assert.Empty(t, pub.msgs)
	})

	t.Run("broker failure", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("leader not available")}
		uc := newUseCase(t, pub, nil)

		_, err := uc.Submit(context.Background(), &dto.RecordEventInput{Code: testutil.ActiveBatch, Action: "Shipped", ActorName: "x"})
		assert.Error(t, err)
	})
}
