package catalog

import "errors"

var (
	ErrBatchNotFound  = errors.New("batch not found")
	ErrReasonRequired = errors.New("a recall reason is required")
)
