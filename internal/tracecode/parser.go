// Package tracecode classifies the codes printed on packaging as either a
// batch code or a unit serial code.
package tracecode

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Kind int

const (
	KindBatch Kind = iota + 1
	KindSerial
)

func (k Kind) String() string {
	switch k {
	case KindBatch:
		return "batch"
	case KindSerial:
		return "serial"
	}
	return "unknown"
}

const FormatHint = "expected a batch code like BATCH-YYYYMMDD-NNNN or a unit serial like BATCH-YYYYMMDD-NNNN-NNNN"

var ErrInvalidCodeFormat = errors.New("invalid code format")

// FormatError reports an input that is neither shape.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidCodeFormat, e.Input)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidCodeFormat
}

func (e *FormatError) Hint() string {
	return FormatHint
}

var (
	batchPattern  = regexp.MustCompile(`^BATCH-\d{8}-\d{4}$`)
	serialPattern = regexp.MustCompile(`^(BATCH-\d{8}-\d{4})-\d{4}$`)
)

// Code is a parsed code. BatchCode equals Value for batch codes and is the
// implied batch for serial codes.
type Code struct {
	Value     string
	Kind      Kind
	BatchCode string
}

func (c Code) IsBatch() bool { return c.Kind == KindBatch }

// Parse trims surrounding whitespace and classifies the input.
func Parse(raw string) (Code, error) {
	s := strings.TrimSpace(raw)

	if batchPattern.MatchString(s) {
		return Code{Value: s, Kind: KindBatch, BatchCode: s}, nil
	}
	if m := serialPattern.FindStringSubmatch(s); m != nil {
		return Code{Value: s, Kind: KindSerial, BatchCode: m[1]}, nil
	}
	return Code{}, &FormatError{Input: s}
}
