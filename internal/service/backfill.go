package service

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
)

// Backfill prepends an estimated point at rangeStart carrying the value of
// carryBack, the latest record at or before rangeStart, so a chart starts at the
// window edge instead of ramping up from nothing.
//
// Nothing is added when there is no carry-back record (history genuinely starts
// inside the window) or when a point already sits at or before rangeStart.
// Points are never synthesized after the last real record.
func Backfill(series []model.HistoryPoint, rangeStart int64, carryBack *model.ValuationRecord) []model.HistoryPoint {
	if carryBack == nil || carryBack.Timestamp > rangeStart {
		return series
	}
	if len(series) > 0 && series[0].Timestamp <= rangeStart {
		return series
	}

	out := make([]model.HistoryPoint, 0, len(series)+1)
	out = append(out, model.HistoryPoint{
		Timestamp: rangeStart,
		Value:     carryBack.Value,
		Estimated: true,
	})
	return append(out, series...)
}

// CalculateStats derives start/end/min/max and percent change from an ascending
// series, rounded to two decimals. An empty series yields all zeros.
func CalculateStats(series []model.HistoryPoint) model.HistoryStats {
	if len(series) == 0 {
		return model.HistoryStats{}
	}

	values := make([]float64, len(series))
	for i, point := range series {
		values[i] = point.Value
	}

	startValue := values[0]
	endValue := values[len(values)-1]

	var changePercent float64
	if startValue > 0 {
		changePercent = (endValue - startValue) / startValue * 100
	}

	return model.HistoryStats{
		StartValue:    round(startValue),
		EndValue:      round(endValue),
		MinValue:      round(floats.Min(values)),
		MaxValue:      round(floats.Max(values)),
		ChangePercent: round(changePercent),
	}
}
