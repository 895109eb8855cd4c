package request

import (
	"github.com/shopspring/decimal"

	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
)

// SnapshotRequest is the optional body of POST /api/portfolio/snapshot.
// An empty request means the balances and prices are fetched from the exchange.
type SnapshotRequest struct {
	Balances map[string]model.Balance   `json:"balances"`
	Prices   map[string]decimal.Decimal `json:"prices"`
}

// IsEmpty reports whether the caller supplied no account state.
func (r SnapshotRequest) IsEmpty() bool {
	return len(r.Balances) == 0 && len(r.Prices) == 0
}
