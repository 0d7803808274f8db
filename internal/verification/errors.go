package verification

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/fekuna/omnipos-trace-service/internal/tracecode"
)

var (
	ErrInvalidCodeFormat = tracecode.ErrInvalidCodeFormat
	ErrBatchNotFound     = errors.New("batch not found")
	ErrSerialNotFound    = errors.New("serial code not found")
	ErrStoreUnavailable  = errors.New("verification store unavailable")
	ErrInternalFault     = errors.New("internal fault")
)

// IsTransient reports whether a store error is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// StoreError wraps a repository failure in the verification taxonomy while
// keeping the cause for logging.
type StoreError struct {
	Kind  error
	Cause error
}

func (e *StoreError) Error() string {
	return e.Kind.Error() + ": " + e.Cause.Error()
}

func (e *StoreError) Is(target error) bool {
	return target == e.Kind
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Classify maps a raw store error onto ErrStoreUnavailable or ErrInternalFault.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	if IsTransient(err) {
		return &StoreError{Kind: ErrStoreUnavailable, Cause: err}
	}
	return &StoreError{Kind: ErrInternalFault, Cause: err}
}
