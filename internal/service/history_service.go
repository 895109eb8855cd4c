package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ndewijer/testnet-portfolio-panel/internal/apperrors"
	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
	"github.com/ndewijer/testnet-portfolio-panel/internal/repository"
)

// HistoryService answers range-filtered history queries for charting.
type HistoryService struct {
	historyRepo *repository.HistoryRepository
	now         func() time.Time
}

// NewHistoryService creates a new HistoryService using the wall clock.
func NewHistoryService(historyRepo *repository.HistoryRepository) *HistoryService {
	return &HistoryService{
		historyRepo: historyRepo,
		now:         time.Now,
	}
}

// WithClock replaces the clock used to resolve range windows.
func (s *HistoryService) WithClock(now func() time.Time) *HistoryService {
	s.now = now
	return s
}

// GetHistory resolves token to a window ending now, loads the recorded series,
// optionally backfills the window start and computes summary statistics.
//
// An empty series is a normal result with zero stats. Only an unknown token fails,
// with apperrors.ErrInvalidRangeToken.
func (s *HistoryService) GetHistory(ctx context.Context, token string, backfill bool) (model.HistoryResult, error) {
	rangeToken, err := model.ParseRangeToken(token)
	if err != nil {
		return model.HistoryResult{}, err
	}

	start, end := rangeToken.Window(s.now())

	series := []model.HistoryPoint{}
	err = s.historyRepo.Query(ctx, start, end, func(record model.ValuationRecord) error {
		series = append(series, model.HistoryPoint{Timestamp: record.Timestamp, Value: record.Value})
		return nil
	})
	if err != nil {
		return model.HistoryResult{}, err
	}
	series = normalizeSeries(series)

	var carryBack *model.ValuationRecord
	record, err := s.historyRepo.LatestAtOrBefore(ctx, start)
	switch {
	case err == nil:
		carryBack = &record
	case !errors.Is(err, apperrors.ErrSnapshotNotFound):
		return model.HistoryResult{}, err
	}

	if backfill {
		series = Backfill(series, start, carryBack)
	}

	result := model.HistoryResult{
		Range:  rangeToken,
		Start:  start,
		End:    end,
		Series: series,
		Stats:  CalculateStats(series),
	}

	if carryBack == nil && rangeToken != model.RangeAll {
		result.InsufficientHistory = true
		result.Message, err = s.insufficientHistoryMessage(ctx)
		if err != nil {
			return model.HistoryResult{}, err
		}
	}

	return result, nil
}

func (s *HistoryService) insufficientHistoryMessage(ctx context.Context) (string, error) {
	earliest, err := s.historyRepo.Earliest(ctx)
	if errors.Is(err, apperrors.ErrSnapshotNotFound) {
		return "No portfolio history recorded yet", nil
	}
	if err != nil {
		return "", err
	}
	first := time.Unix(earliest.Timestamp, 0).UTC().Format(time.RFC3339)
	return fmt.Sprintf("Portfolio history begins at %s, after the start of the requested range", first), nil
}

// Metadata reports the stored snapshot count and the first and last recorded
// timestamps.
func (s *HistoryService) Metadata(ctx context.Context) (model.HistoryMetadata, error) {
	count, err := s.historyRepo.Count(ctx)
	if err != nil {
		return model.HistoryMetadata{}, err
	}
	if count == 0 {
		return model.HistoryMetadata{}, nil
	}

	// A prune between the count and these reads can empty the store.
	earliest, err := s.historyRepo.Earliest(ctx)
	if errors.Is(err, apperrors.ErrSnapshotNotFound) {
		return model.HistoryMetadata{}, nil
	}
	if err != nil {
		return model.HistoryMetadata{}, fmt.Errorf("failed to read first snapshot: %w", err)
	}
	latest, err := s.historyRepo.Latest(ctx)
	if err != nil {
		return model.HistoryMetadata{}, fmt.Errorf("failed to read last snapshot: %w", err)
	}

	return model.HistoryMetadata{
		FirstSnapshot:  &earliest.Timestamp,
		LastSnapshot:   &latest.Timestamp,
		TotalSnapshots: count,
	}, nil
}

// Prune applies the retention policy, removing snapshots older than retentionDays.
// A non-positive retentionDays keeps everything.
func (s *HistoryService) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays).Unix()
	return s.historyRepo.Prune(ctx, cutoff)
}

// normalizeSeries sorts ascending by timestamp and collapses duplicate
// timestamps, keeping the last written value.
func normalizeSeries(series []model.HistoryPoint) []model.HistoryPoint {
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Timestamp < series[j].Timestamp
	})

	out := series[:0]
	for _, point := range series {
		if n := len(out); n > 0 && out[n-1].Timestamp == point.Timestamp {
			out[n-1] = point
			continue
		}
		out = append(out, point)
	}
	return out
}
