package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/testnet-portfolio-panel/internal/apperrors"
	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
)

// AccountSource is the exchange capability the snapshot capture depends on.
type AccountSource interface {
	GetBalances(ctx context.Context) (map[string]model.Balance, error)
	GetPrices(ctx context.Context) (map[string]decimal.Decimal, error)
}

// SnapshotService captures the current account state from the exchange and
// hands it to the ValuationService. Network I/O happens here, before the
// recorder takes its write lock.
type SnapshotService struct {
	source   AccountSource
	recorder *ValuationService
	now      func() time.Time
}

// NewSnapshotService creates a new SnapshotService using the wall clock.
func NewSnapshotService(source AccountSource, recorder *ValuationService) *SnapshotService {
	return &SnapshotService{
		source:   source,
		recorder: recorder,
		now:      time.Now,
	}
}

// WithClock replaces the clock used to timestamp snapshots.
func (s *SnapshotService) WithClock(now func() time.Time) *SnapshotService {
	s.now = now
	return s
}

// Capture fetches balances and prices concurrently and records a snapshot.
// Fetch failures are reported as apperrors.ErrUpstreamUnavailable and leave
// the history store untouched.
func (s *SnapshotService) Capture(ctx context.Context) (model.ValuationRecord, error) {
	var (
		balances map[string]model.Balance
		prices   map[string]decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balances, err = s.source.GetBalances(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		prices, err = s.source.GetPrices(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, apperrors.ErrUpstreamUnavailable) {
			return model.ValuationRecord{}, err
		}
		return model.ValuationRecord{}, fmt.Errorf("%w: %w", apperrors.ErrUpstreamUnavailable, err)
	}

	return s.recorder.Record(ctx, s.now(), balances, prices)
}

// CaptureFrom records a snapshot from caller supplied balances and prices.
func (s *SnapshotService) CaptureFrom(
	ctx context.Context,
	balances map[string]model.Balance,
	prices map[string]decimal.Decimal,
) (model.ValuationRecord, error) {
	return s.recorder.Record(ctx, s.now(), balances, prices)
}
