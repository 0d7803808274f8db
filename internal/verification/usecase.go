package verification

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/verification/dto"
)

type UseCase interface {
	Verify(ctx context.Context, rawInput string, now time.Time) (*dto.VerificationResult, error)
}
