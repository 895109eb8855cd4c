package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/testnet-portfolio-panel/internal/apperrors"
)

// RangeToken is the symbolic window a history chart covers, always ending now.
type RangeToken string

const (
	RangeDay        RangeToken = "1d"
	RangeWeek       RangeToken = "1w"
	RangeMonth      RangeToken = "1m"
	RangeSixMonths  RangeToken = "6m"
	RangeYear       RangeToken = "1y"
	RangeYearToDate RangeToken = "ytd"
	RangeAll        RangeToken = "all"

	// DefaultRange is used when a request omits the range parameter.
	DefaultRange = RangeWeek
)

const secondsPerDay int64 = 86400

// RangeTokens lists every supported token in display order.
var RangeTokens = []RangeToken{
	RangeDay, RangeWeek, RangeMonth, RangeSixMonths, RangeYear, RangeYearToDate, RangeAll,
}

// rangeSeconds holds the fixed lookback of every duration-based token.
// ytd and all are calendar/epoch anchored and resolved separately.
var rangeSeconds = map[RangeToken]int64{
	RangeDay:       secondsPerDay,
	RangeWeek:      7 * secondsPerDay,
	RangeMonth:     30 * secondsPerDay,
	RangeSixMonths: 180 * secondsPerDay,
	RangeYear:      365 * secondsPerDay,
}

func init() {
	for _, token := range RangeTokens {
		if _, ok := rangeSeconds[token]; !ok && token != RangeYearToDate && token != RangeAll {
			panic(fmt.Sprintf("range token %q has no window", token))
		}
	}
}

// ParseRangeToken validates a user supplied token. Matching is case-insensitive.
func ParseRangeToken(s string) (RangeToken, error) {
	token := RangeToken(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range RangeTokens {
		if token == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidRangeToken, s)
}

// Window resolves the token to an inclusive [start, end] window in unix seconds.
func (r RangeToken) Window(now time.Time) (start, end int64) {
	now = now.UTC()
	end = now.Unix()

	switch r {
	case RangeYearToDate:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC).Unix(), end
	case RangeAll:
		return 0, end
	}

	start = end - rangeSeconds[r]
	if start < 0 {
		start = 0
	}
	return start, end
}

func (r RangeToken) String() string {
	return string(r)
}
