package scheduler

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ndewijer/testnet-portfolio-panel/internal/apperrors"
	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
)

// SnapshotCapturer captures and records one portfolio snapshot.
type SnapshotCapturer interface {
	Capture(ctx context.Context) (model.ValuationRecord, error)
}

// SnapshotJob samples the portfolio value on every tick.
// A tick is not cancellable once started.
type SnapshotJob struct {
	capturer SnapshotCapturer
	log      zerolog.Logger
}

// NewSnapshotJob creates a new SnapshotJob
func NewSnapshotJob(capturer SnapshotCapturer, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		capturer: capturer,
		log:      log.With().Str("job", "portfolio_snapshot").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "portfolio_snapshot"
}

// Run captures one snapshot. A refusal because the previous snapshot is too
// recent is not a failure.
func (j *SnapshotJob) Run() error {
	record, err := j.capturer.Capture(context.Background())
	if errors.Is(err, apperrors.ErrSnapshotTooRecent) {
		j.log.Debug().Err(err).Msg("Skipping snapshot")
		return nil
	}
	if err != nil {
		return err
	}

	j.log.Info().
		Int64("timestamp", record.Timestamp).
		Float64("value", record.Value).
		Msg("Portfolio snapshot recorded")
	return nil
}

// HistoryPruner applies the history retention policy.
type HistoryPruner interface {
	Prune(ctx context.Context, retentionDays int) (int64, error)
}

// PruneJob removes snapshots older than the retention window.
type PruneJob struct {
	pruner        HistoryPruner
	retentionDays int
	log           zerolog.Logger
}

// NewPruneJob creates a new PruneJob
func NewPruneJob(pruner HistoryPruner, retentionDays int, log zerolog.Logger) *PruneJob {
	return &PruneJob{
		pruner:        pruner,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "history_prune").Logger(),
	}
}

// Name returns the job name
func (j *PruneJob) Name() string {
	return "history_prune"
}

// Run prunes expired snapshots
func (j *PruneJob) Run() error {
	removed, err := j.pruner.Prune(context.Background(), j.retentionDays)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.log.Info().
			Int64("removed", removed).
			Int("retention_days", j.retentionDays).
			Msg("Pruned portfolio history")
	}
	return nil
}
