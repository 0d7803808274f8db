package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/fekuna/omnipos-trace-service/internal/tracecode"
	"github.com/fekuna/omnipos-trace-service/internal/verification"
	"github.com/fekuna/omnipos-trace-service/internal/verification/dto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const dateLayout = "2006-01-02"

type verificationUseCase struct {
	repo    verification.Repository
	history verification.HistoryReader
	cache   verification.SnapshotCache
	timeout time.Duration
	logger  logger.ZapLogger
}

// NewVerificationUseCase builds the responder. cache may be nil; timeout <= 0
// leaves the caller's deadline in charge.
func NewVerificationUseCase(repo verification.Repository, history verification.HistoryReader, cache verification.SnapshotCache, timeout time.Duration, log logger.ZapLogger) verification.UseCase {
	return &verificationUseCase{
		repo:    repo,
		history: history,
		cache:   cache,
		timeout: timeout,
		logger:  log,
	}
}

func (uc *verificationUseCase) Verify(ctx context.Context, rawInput string, now time.Time) (*dto.VerificationResult, error) {
	code, err := tracecode.Parse(rawInput)
	if err != nil {
		return nil, err
	}

	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	snap, notFound, err := uc.load(ctx, code)
	if err != nil {
		err = verification.Classify(err)
		if errors.Is(err, verification.ErrInternalFault) {
			uc.logger.Error("verification lookup failed", zap.String("code", code.Value), zap.Error(err))
		} else {
			uc.logger.Warn("verification store unavailable", zap.String("code", code.Value), zap.Error(err))
		}
		return nil, err
	}
	if notFound != nil {
		notFound.VerificationTimestamp = timestamp(now)
		return notFound, nil
	}

	return buildResult(code, snap, now), nil
}

// load returns either a snapshot or a not-found result.
func (uc *verificationUseCase) load(ctx context.Context, code tracecode.Code) (*verification.Snapshot, *dto.VerificationResult, error) {
	cacheable := false
	var gen int64
	if uc.cache != nil {
		if snap, ok := uc.cache.Get(ctx, code.Value); ok {
			return snap, nil, nil
		}
		// read before the store so a concurrent invalidation is visible to Set
		var err error
		if gen, err = uc.cache.Generation(ctx, code.BatchCode); err != nil {
			uc.logger.Warn("snapshot generation unavailable", zap.String("code", code.Value), zap.Error(err))
		} else {
			cacheable = true
		}
	}

	snap := &verification.Snapshot{Kind: code.Kind}
	var subject model.SubjectRef

	switch code.Kind {
	case tracecode.KindBatch:
		batch, err := uc.repo.FindBatchByNumber(ctx, code.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("find batch: %w", err)
		}
		if batch == nil {
			return nil, batchNotFound(code), nil
		}
		snap.Batch = batch
		subject = model.SubjectRef{Type: model.SubjectBatch, ID: batch.ID, BatchID: batch.ID, BatchNumber: batch.BatchNumber}

	case tracecode.KindSerial:
		unit, err := uc.repo.FindUnitBySerial(ctx, code.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("find unit: %w", err)
		}
		if unit == nil {
			exists, err := uc.repo.BatchExists(ctx, code.BatchCode)
			if err != nil {
				return nil, nil, fmt.Errorf("check batch: %w", err)
			}
			return nil, serialNotFound(code, exists), nil
		}
		snap.Unit = unit
		snap.Batch = unit.Batch
		subject = model.SubjectRef{Type: model.SubjectUnit, ID: unit.ID, BatchID: unit.BatchID, BatchNumber: unit.Batch.BatchNumber}

	default:
		return nil, nil, fmt.Errorf("unsupported code kind %s", code.Kind)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, err := uc.history.History(gctx, subject)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		snap.History = events
		return nil
	})
	if code.Kind == tracecode.KindBatch {
		g.Go(func() error {
			stock, err := uc.repo.RetailerStock(gctx, snap.Batch.ID)
			if err != nil {
				return fmt.Errorf("load retailer stock: %w", err)
			}
			if len(stock) > 0 {
				top := stock[0]
				snap.TopStock = &top
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if cacheable {
		uc.cache.Set(ctx, code.Value, code.BatchCode, gen, snap)
	}
	return snap, nil, nil
}

func batchNotFound(code tracecode.Code) *dto.VerificationResult {
	return &dto.VerificationResult{
		Verified:          false,
		IsBatch:           true,
		Error:             "Batch not found",
		Hint:              "No batch is registered under " + code.Value + ". Check the code printed on the package; an unregistered code may indicate a counterfeit.",
		BlockchainHistory: []dto.HistoryEntry{},
		Outcome:           verification.ErrBatchNotFound,
	}
}

func serialNotFound(code tracecode.Code, batchExists bool) *dto.VerificationResult {
	res := &dto.VerificationResult{
		Verified:          false,
		IsBatch:           false,
		Error:             "Serial code not found",
		BlockchainHistory: []dto.HistoryEntry{},
		Outcome:           verification.ErrSerialNotFound,
	}
	if batchExists {
		res.Hint = "Batch " + code.BatchCode + " exists but has no unit with this serial number. This item is likely counterfeit; please report it."
	} else {
		res.Hint = "Neither this serial number nor its batch is registered. Check the code printed on the package."
	}
	return res
}

func buildResult(code tracecode.Code, snap *verification.Snapshot, now time.Time) *dto.VerificationResult {
	batch := snap.Batch
	expired := isExpired(now, batch.ExpiryDate)

	product := &dto.ProductInfo{
		Name:              batch.ProductName,
		Description:       deref(batch.ProductDescription),
		Category:          batch.Category,
		BatchNumber:       batch.BatchNumber,
		ManufacturingDate: batch.ManufacturingDate.UTC().Format(dateLayout),
		ExpiryDate:        batch.ExpiryDate.UTC().Format(dateLayout),
		IsExpired:         expired,
		ImageURL:          deref(batch.ImageURL),
	}

	res := &dto.VerificationResult{
		IsBatch: code.Kind == tracecode.KindBatch,
		Product: product,
		Manufacturer: &dto.ManufacturerInfo{
			Name:          batch.ManufacturerName,
			LicenseNumber: batch.LicenseNumber,
		},
		BlockchainHistory:     historyEntries(snap.History),
		VerificationTimestamp: timestamp(now),
	}

	flagged := false
	if res.IsBatch {
		total := batch.TotalItems
		inStock := batch.InInventoryCount
		product.Status = string(batch.Status)
		product.TotalItems = &total
		product.InInventoryCount = &inStock
		product.SampleSerial = batch.SampleSerial

		if snap.TopStock != nil {
			qty := snap.TopStock.Quantity
			res.CurrentRetailer = &dto.RetailerInfo{
				Name:     snap.TopStock.Name,
				Location: snap.TopStock.Location,
				Quantity: &qty,
			}
		}
		// a batch certifies provenance; recall and expiry are reported on top
		res.Verified = true
	} else {
		unit := snap.Unit
		product.SerialCode = unit.SerialCode
		product.Status = string(unit.CurrentStatus)
		product.BatchStatus = string(batch.Status)

		if unit.RetailerName != nil {
			res.CurrentRetailer = &dto.RetailerInfo{
				Name:     *unit.RetailerName,
				Location: deref(unit.RetailerLocation),
			}
		}
		flagged = unit.IsFlagged
		res.Verified = !batch.IsRecalled && !flagged
	}

	if batch.IsRecalled {
		res.Recall = &dto.RecallInfo{Reason: deref(batch.RecallReason)}
	}

	switch {
	case batch.IsRecalled:
		res.Warning = "This batch has been recalled by the manufacturer. Do not use this product."
	case flagged:
		res.Warning = "This unit has been reported as counterfeit or invalid."
		if snap.Unit.FlagReason != nil {
			res.Warning += " Reason: " + *snap.Unit.FlagReason
		}
	case expired:
		res.Warning = "This product expired on " + product.ExpiryDate + "."
	}

	switch {
	case res.Verified && res.IsBatch:
		res.Message = "Authentic batch registered by " + batch.ManufacturerName
	case res.Verified:
		res.Message = "Authentic product registered by " + batch.ManufacturerName
	default:
		res.Message = "This product could not be verified as safe to use"
	}

	return res
}

// isExpired compares calendar days in UTC: a product is still good on its
// expiry date.
func isExpired(now, expiry time.Time) bool {
	ny, nm, nd := now.UTC().Date()
	ey, em, ed := expiry.UTC().Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	last := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return today.After(last)
}

func historyEntries(events []model.CustodyEvent) []dto.HistoryEntry {
	out := make([]dto.HistoryEntry, 0, len(events))
	for _, e := range events {
		out = append(out, dto.HistoryEntry{
			Action:    e.Action,
			ActorName: e.ActorName,
			Location:  deref(e.Location),
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func timestamp(now time.Time) string {
	return now.UTC().Format(time.RFC3339Nano)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
