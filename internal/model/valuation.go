package model

import "github.com/shopspring/decimal"

// Balance is the holding of a single asset on the exchange account.
type Balance struct {
	Free   decimal.Decimal `json:"free"`
	Locked decimal.Decimal `json:"locked"`
}

// Total returns the free plus locked quantity.
func (b Balance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

// Valuation is the result of pricing a set of balances in the reference currency.
type Valuation struct {
	Total            decimal.Decimal
	ReferenceBalance decimal.Decimal
	AssetCount       int
	// Assets holds one entry per held asset, sorted by symbol.
	Assets []AssetValuation
	// Unpriced lists held assets that had no resolvable price and contributed zero.
	Unpriced []string
}

// AssetValuation is the worth of one held asset in the reference currency.
type AssetValuation struct {
	Asset  string
	Free   decimal.Decimal
	Locked decimal.Decimal
	Total  decimal.Decimal
	Value  decimal.Decimal
	Priced bool
}

// AssetValue is the stored per-asset breakdown of a snapshot.
type AssetValue struct {
	Asset  string  `json:"asset"`
	Free   float64 `json:"free"`
	Locked float64 `json:"locked"`
	Total  float64 `json:"total"`
	Value  float64 `json:"value"`
	Priced bool    `json:"priced"`
}

// ValuationRecord is one persisted snapshot of total portfolio worth.
// Records are immutable once written.
type ValuationRecord struct {
	ID               string  `json:"id"`
	Timestamp        int64   `json:"timestamp"`
	Value            float64 `json:"value"`
	ReferenceBalance float64 `json:"reference_balance"`
	AssetCount       int     `json:"asset_count"`
	// Assets is empty for snapshots recorded without a breakdown.
	Assets []AssetValue `json:"assets,omitempty"`
}
