package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/testnet-portfolio-panel/internal/apperrors"
	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
	"github.com/ndewijer/testnet-portfolio-panel/internal/repository"
)

// ValuationService turns account balances into portfolio value snapshots and
// appends them to the history store. It performs no network I/O; balances and
// prices are supplied by the caller.
type ValuationService struct {
	historyRepo       *repository.HistoryRepository
	broadcaster       *Broadcaster
	referenceCurrency string
	minInterval       time.Duration
	log               zerolog.Logger

	// mu makes the too-recent check and the append one step.
	mu sync.Mutex
}

// NewValuationService creates a new ValuationService. broadcaster may be nil.
func NewValuationService(
	historyRepo *repository.HistoryRepository,
	broadcaster *Broadcaster,
	referenceCurrency string,
	minInterval time.Duration,
	log zerolog.Logger,
) *ValuationService {
	return &ValuationService{
		historyRepo:       historyRepo,
		broadcaster:       broadcaster,
		referenceCurrency: strings.ToUpper(referenceCurrency),
		minInterval:       minInterval,
		log:               log.With().Str("component", "valuation").Logger(),
	}
}

// ComputeValuation sums (free + locked) * price over every held asset.
//
// The reference currency counts at face value. Other assets are priced through
// the ASSET+REF trading pair (e.g. BTCUSDT) and fall back to a price keyed by the
// bare asset. Assets without a positive price contribute zero and are listed in
// Valuation.Unpriced. Every held asset gets an entry in Valuation.Assets.
func ComputeValuation(
	balances map[string]model.Balance,
	prices map[string]decimal.Decimal,
	referenceCurrency string,
) model.Valuation {
	referenceCurrency = strings.ToUpper(referenceCurrency)

	assets := make([]string, 0, len(balances))
	for asset := range balances {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	valuation := model.Valuation{
		Total:            decimal.Zero,
		ReferenceBalance: decimal.Zero,
	}

	for _, asset := range assets {
		balance := balances[asset]
		quantity := balance.Total()
		if !quantity.IsPositive() {
			continue
		}
		valuation.AssetCount++

		symbol := strings.ToUpper(asset)
		entry := model.AssetValuation{
			Asset:  symbol,
			Free:   balance.Free,
			Locked: balance.Locked,
			Total:  quantity,
			Value:  decimal.Zero,
		}

		if symbol == referenceCurrency {
			valuation.ReferenceBalance = valuation.ReferenceBalance.Add(quantity)
			entry.Value = quantity
			entry.Priced = true
		} else if price, ok := resolvePrice(symbol, referenceCurrency, prices); ok {
			entry.Value = quantity.Mul(price)
			entry.Priced = true
		} else {
			valuation.Unpriced = append(valuation.Unpriced, symbol)
		}

		valuation.Total = valuation.Total.Add(entry.Value)
		valuation.Assets = append(valuation.Assets, entry)
	}

	return valuation
}

func resolvePrice(asset, referenceCurrency string, prices map[string]decimal.Decimal) (decimal.Decimal, bool) {
	for _, key := range []string{asset + referenceCurrency, asset} {
		if price, ok := prices[key]; ok && price.IsPositive() {
			return price, true
		}
	}
	return decimal.Zero, false
}

// Record values the balances at time at and appends the snapshot.
//
// Unpriceable assets degrade the valuation but do not fail it. A snapshot whose
// timestamp falls before the latest stored timestamp plus the minimum interval
// is refused with apperrors.ErrSnapshotTooRecent, which also keeps stored
// timestamps non-decreasing.
func (s *ValuationService) Record(
	ctx context.Context,
	at time.Time,
	balances map[string]model.Balance,
	prices map[string]decimal.Decimal,
) (model.ValuationRecord, error) {
	valuation := ComputeValuation(balances, prices, s.referenceCurrency)
	if len(valuation.Unpriced) > 0 {
		s.log.Warn().
			Err(apperrors.ErrNoPriceData).
			Strs("assets", valuation.Unpriced).
			Str("reference", s.referenceCurrency).
			Msg("Degraded valuation, unpriced assets counted as zero")
	}

	timestamp := at.UTC().Unix()

	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.historyRepo.Latest(ctx)
	switch {
	case err == nil:
		if timestamp < latest.Timestamp+int64(s.minInterval/time.Second) {
			return model.ValuationRecord{}, fmt.Errorf("%w: last snapshot at %d", apperrors.ErrSnapshotTooRecent, latest.Timestamp)
		}
	case errors.Is(err, apperrors.ErrSnapshotNotFound):
	default:
		return model.ValuationRecord{}, fmt.Errorf("failed to read latest snapshot: %w", err)
	}

	record, err := s.historyRepo.Append(ctx, model.ValuationRecord{
		Timestamp:        timestamp,
		Value:            valuation.Total.Round(2).InexactFloat64(),
		ReferenceBalance: valuation.ReferenceBalance.Round(2).InexactFloat64(),
		AssetCount:       valuation.AssetCount,
		Assets:           assetValues(valuation.Assets),
	})
	if err != nil {
		return model.ValuationRecord{}, err
	}

	s.log.Debug().
		Int64("timestamp", record.Timestamp).
		Float64("value", record.Value).
		Int("assets", record.AssetCount).
		Msg("Snapshot recorded")

	if s.broadcaster != nil {
		s.broadcaster.Publish(record)
	}

	return record, nil
}

// assetValues converts the breakdown to its stored form. Values are rounded to
// cents like the snapshot total; quantities are kept as reported.
func assetValues(assets []model.AssetValuation) []model.AssetValue {
	if len(assets) == 0 {
		return nil
	}
	out := make([]model.AssetValue, len(assets))
	for i, a := range assets {
		out[i] = model.AssetValue{
			Asset:  a.Asset,
			Free:   a.Free.InexactFloat64(),
			Locked: a.Locked.InexactFloat64(),
			Total:  a.Total.InexactFloat64(),
			Value:  a.Value.Round(2).InexactFloat64(),
			Priced: a.Priced,
		}
	}
	return out
}

// Latest returns the most recent snapshot.
func (s *ValuationService) Latest(ctx context.Context) (model.ValuationRecord, error) {
	return s.historyRepo.Latest(ctx)
}
