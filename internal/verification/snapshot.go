package verification

import (
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/fekuna/omnipos-trace-service/internal/tracecode"
)

// Snapshot is everything read from the store for one code. Flags that depend
// on the current time are derived from it on every request and never cached.
type Snapshot struct {
	Kind     tracecode.Kind       `json:"kind"`
	Batch    *model.BatchDetail   `json:"batch"`
	Unit     *model.UnitDetail    `json:"unit,omitempty"`
	History  []model.CustodyEvent `json:"history"`
	TopStock *model.RetailerStock `json:"top_stock,omitempty"`
}
