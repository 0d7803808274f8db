package verification

import (
	"context"

	"github.com/fekuna/omnipos-trace-service/internal/model"
)

// Repository is the read-only lookup side of verification. Find methods
// return (nil, nil) when nothing matches.
type Repository interface {
	FindBatchByNumber(ctx context.Context, batchNumber string) (*model.BatchDetail, error)
	FindUnitBySerial(ctx context.Context, serialCode string) (*model.UnitDetail, error)
	BatchExists(ctx context.Context, batchNumber string) (bool, error)
	RetailerStock(ctx context.Context, batchID string) ([]model.RetailerStock, error)
}

// HistoryReader returns the ordered custody trail of a resolved subject.
type HistoryReader interface {
	History(ctx context.Context, subject model.SubjectRef) ([]model.CustodyEvent, error)
}

// SnapshotCache stores resolved subjects between lookups. Implementations must
// treat every error as a miss.
//
// Every batch carries a generation that InvalidateBatch bumps before dropping
// snapshots. A lookup reads the generation before touching the store and Set
// stores the snapshot only while the generation is still the one it read, so a
// lookup that overlaps a write never caches what it saw before the write.
type SnapshotCache interface {
	Get(ctx context.Context, code string) (*Snapshot, bool)
	Generation(ctx context.Context, batchCode string) (int64, error)
	Set(ctx context.Context, code, batchCode string, gen int64, snap *Snapshot)
	InvalidateBatch(ctx context.Context, batchCode string) error
}
