package custody

import (
	"errors"

	"github.com/fekuna/omnipos-trace-service/internal/cache"
)

var (
	ErrSubjectNotFound = errors.New("no batch or unit with this code")
	ErrOutOfOrder      = errors.New("event is older than the latest recorded event")
	ErrInvalidEvent    = errors.New("invalid custody event")
	ErrLockTimeout     = cache.ErrLockTimeout
	ErrNoPublisher     = errors.New("event publishing is not configured")
)
