package apperrors

import "errors"

// Request errors are caused by caller input and never affect stored history.
var (
	// ErrInvalidRangeToken indicates that a history range symbol is not one of
	// 1d, 1w, 1m, 6m, 1y, ytd or all.
	ErrInvalidRangeToken = errors.New("invalid range token")

	// ErrInvalidSnapshotInput indicates that manually supplied balances or prices failed validation.
	ErrInvalidSnapshotInput = errors.New("invalid snapshot input")
)

// Valuation errors describe problems while turning balances into a portfolio value.
var (
	// ErrNoPriceData indicates that a held asset could not be priced against the
	// reference currency. The asset contributes zero and the snapshot still succeeds.
	ErrNoPriceData = errors.New("no price data")

	// ErrSnapshotTooRecent indicates that a snapshot was refused because the previous
	// snapshot is closer than the configured minimum interval.
	ErrSnapshotTooRecent = errors.New("snapshot too recent")

	// ErrSnapshotNotFound indicates that the history store holds no snapshot.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Infrastructure errors are transient; a failed sample is skipped and the next tick retries.
var (
	// ErrUpstreamUnavailable indicates that the exchange could not be reached or
	// returned an unusable response.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrStoreWriteFailure indicates that a durable append or prune failed.
	ErrStoreWriteFailure = errors.New("history store write failed")
)

// Operation failure errors are returned to HTTP callers as stable messages.
var (
	ErrFailedToGetPortfolioHistory = errors.New("failed to get portfolio history")
	ErrFailedToRecordSnapshot      = errors.New("failed to record snapshot")
	ErrFailedToGetHistoryMetadata  = errors.New("failed to get history metadata")
	ErrFailedToGetVersionInfo      = errors.New("failed to get version information")
)
