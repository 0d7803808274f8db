package tracecode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		kind      Kind
		batchCode string
		wantErr   bool
	}{
		{name: "batch", input: "BATCH-20260112-1234", kind: KindBatch, batchCode: "BATCH-20260112-1234"},
		{name: "serial", input: "BATCH-20260112-1234-0001", kind: KindSerial, batchCode: "BATCH-20260112-1234"},
		{name: "surrounding whitespace", input: "  BATCH-20260112-1234\n", kind: KindBatch, batchCode: "BATCH-20260112-1234"},
		{name: "garbage", input: "not-a-code", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "short date", input: "BATCH-2026011-1234", wantErr: true},
		{name: "short unit", input: "BATCH-20260112-1234-001", wantErr: true},
		{name: "lowercase prefix", input: "batch-20260112-1234", wantErr: true},
		{name: "extra segment", input: "BATCH-20260112-1234-0001-0002", wantErr: true},
		{name: "letters in seq", input: "BATCH-20260112-12A4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidCodeFormat))

				var fe *FormatError
				require.True(t, errors.As(err, &fe))
				assert.Contains(t, fe.Hint(), "BATCH-YYYYMMDD-NNNN")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, code.Kind)
			assert.Equal(t, tt.batchCode, code.BatchCode)
		})
	}
}

func TestParse_SerialImpliesBatch(t *testing.T) {
	for i := 0; i < 50; i++ {
		batch := fmt.Sprintf("BATCH-2026%02d%02d-%04d", i%12+1, i%28+1, i*37%10000)

		b, err := Parse(batch)
		require.NoError(t, err)
		assert.Equal(t, KindBatch, b.Kind)

		serial := fmt.Sprintf("%s-%04d", batch, i*113%10000)
		s, err := Parse(serial)
		require.NoError(t, err)
		assert.Equal(t, KindSerial, s.Kind)
		assert.Equal(t, batch, s.BatchCode)
	}
}
