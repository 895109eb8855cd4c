package model

// HistoryPoint is one point of a charted series.
type HistoryPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
	// Estimated marks a synthesized boundary point. It is never serialized.
	Estimated bool `json:"-"`
}

// HistoryStats summarizes a series. All fields are zero for an empty series.
// ChangePercent is zero whenever StartValue is zero, so callers must check
// StartValue before reading a zero change as "unchanged".
type HistoryStats struct {
	StartValue    float64 `json:"start_value"`
	EndValue      float64 `json:"end_value"`
	MinValue      float64 `json:"min_value"`
	MaxValue      float64 `json:"max_value"`
	ChangePercent float64 `json:"change_percent"`
}

// HistoryResult is the answer to a range query.
type HistoryResult struct {
	Range  RangeToken
	Start  int64
	End    int64
	Series []HistoryPoint
	Stats  HistoryStats
	// InsufficientHistory is set when the store holds nothing at or before Start,
	// i.e. recorded history begins inside the requested window.
	InsufficientHistory bool
	Message             string
}

// HistoryMetadata summarizes what the history store holds. First and last
// snapshot timestamps are nil while the store is empty.
type HistoryMetadata struct {
	FirstSnapshot  *int64 `json:"first_snapshot"`
	LastSnapshot   *int64 `json:"last_snapshot"`
	TotalSnapshots int    `json:"total_snapshots"`
}
