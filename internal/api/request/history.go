package request

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
)

// HistoryQuery is the validated form of the history endpoint's query string.
type HistoryQuery struct {
	Range    model.RangeToken
	Backfill bool
}

// ParseHistoryQuery extracts and validates the range and backfill parameters.
//
// Validation rules:
//   - range: one of 1d, 1w, 1m, 6m, 1y, ytd, all (case-insensitive, defaults to 1w)
//   - backfill: any value accepted by strconv.ParseBool (defaults to false)
//
// An unknown range wraps apperrors.ErrInvalidRangeToken.
func ParseHistoryQuery(rangeParam, backfillParam string) (HistoryQuery, error) {
	query := HistoryQuery{Range: model.DefaultRange}

	if strings.TrimSpace(rangeParam) != "" {
		token, err := model.ParseRangeToken(rangeParam)
		if err != nil {
			return HistoryQuery{}, err
		}
		query.Range = token
	}

	if backfillParam != "" {
		backfill, err := strconv.ParseBool(backfillParam)
		if err != nil {
			return HistoryQuery{}, fmt.Errorf("invalid backfill: must be true or false")
		}
		query.Backfill = backfill
	}

	return query, nil
}
