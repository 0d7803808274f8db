package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-trace-service/internal/auth"
	"github.com/fekuna/omnipos-trace-service/internal/custody"
	"github.com/fekuna/omnipos-trace-service/internal/custody/dto"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/fekuna/omnipos-trace-service/internal/role"
	"github.com/fekuna/omnipos-trace-service/internal/tracecode"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	custody.UseCase

	submitErr error
	recordErr error
	applied   bool
	got       *dto.RecordEventInput
}

func (s *stubUseCase) Submit(_ context.Context, input *dto.RecordEventInput) (*dto.CustodyEventMessage, error) {
	s.got = input
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &dto.CustodyEventMessage{EventID: "ev-q", Code: input.Code}, nil
}

func (s *stubUseCase) RecordEvent(_ context.Context, input *dto.RecordEventInput) (*dto.RecordEventResult, error) {
	s.got = input
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	return &dto.RecordEventResult{Applied: s.applied, Event: model.CustodyEvent{EventID: "ev-s"}}, nil
}

func newRouter(uc custody.UseCase, withClaims bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if withClaims {
		r.Use(func(c *gin.Context) {
			c.Set(auth.ClaimsKey, &auth.Claims{UserID: "u-1", Name: "North Market", Role: role.Retailer})
			c.Next()
		})
	}
	r.POST("/api/v1/custody-events", NewCustodyHandler(uc, logger.NewNop()).RecordEvent)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/custody-events", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

const validBody = `{"code":"BATCH-20260112-1234-0001","action":"Stocked","location":"Oslo","status":"In_Inventory","retailer_id":"retailer-north","occurred_at":"2026-02-01T10:00:00Z"}`

func TestRecordEvent_Queued(t *testing.T) {
	uc := &stubUseCase{}
	w := post(newRouter(uc, true), validBody)

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.NotNil(t, uc.got)
	assert.Equal(t, "North Market", uc.got.ActorName)
	assert.Equal(t, "retailer-north", uc.got.RetailerID)
	assert.Equal(t, 2026, uc.got.OccurredAt.Year())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ev-q", body["event_id"])
}

func TestRecordEvent_SyncFallback(t *testing.T) {
	w := post(newRouter(&stubUseCase{submitErr: custody.ErrNoPublisher, applied: true}, true), validBody)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = post(newRouter(&stubUseCase{submitErr: custody.ErrNoPublisher, applied: false}, true), validBody)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecordEvent_Errors(t *testing.T) {
	tests := []struct {
		name string
		uc   *stubUseCase
		body string
		want int
	}{
		{name: "missing fields", uc: &stubUseCase{}, body: `{"code":""}`, want: http.StatusBadRequest},
		{name: "malformed code", uc: &stubUseCase{submitErr: &tracecode.FormatError{Input: "x"}}, body: validBody, want: http.StatusBadRequest},
		{name: "invalid event", uc: &stubUseCase{submitErr: fmt.Errorf("%w: bad", custody.ErrInvalidEvent)}, body: validBody, want: http.StatusBadRequest},
		{name: "unknown subject", uc: &stubUseCase{submitErr: custody.ErrNoPublisher, recordErr: custody.ErrSubjectNotFound}, body: validBody, want: http.StatusNotFound},
		{name: "out of order", uc: &stubUseCase{submitErr: custody.ErrNoPublisher, recordErr: custody.ErrOutOfOrder}, body: validBody, want: http.StatusConflict},
		{name: "busy", uc: &stubUseCase{submitErr: custody.ErrNoPublisher, recordErr: custody.ErrLockTimeout}, body: validBody, want: http.StatusServiceUnavailable},
		{name: "broker down", uc: &stubUseCase{submitErr: fmt.Errorf("dial tcp: refused")}, body: validBody, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(newRouter(tt.uc, true), tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRecordEvent_RequiresClaims(t *testing.T) {
	w := post(newRouter(&stubUseCase{}, false), validBody)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
