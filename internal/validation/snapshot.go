package validation

import (
	"strings"

	"github.com/ndewijer/testnet-portfolio-panel/internal/api/request"
)

// ValidateSnapshotRequest checks manually supplied account state before it is valued.
// Balances are required, asset and symbol names must be non-blank and no amount or
// price may be negative. A zero price is allowed and leaves the asset unpriced.
func ValidateSnapshotRequest(req request.SnapshotRequest) error {
	errors := make(map[string]string)

	if len(req.Balances) == 0 {
		errors["balances"] = "balances are required"
	}

	for asset, balance := range req.Balances {
		if strings.TrimSpace(asset) == "" {
			errors["balances"] = "asset name is required"
			continue
		}
		if balance.Free.IsNegative() {
			errors["balances."+asset+".free"] = "free amount must not be negative"
		}
		if balance.Locked.IsNegative() {
			errors["balances."+asset+".locked"] = "locked amount must not be negative"
		}
	}

	for symbol, price := range req.Prices {
		if strings.TrimSpace(symbol) == "" {
			errors["prices"] = "symbol is required"
			continue
		}
		if price.IsNegative() {
			errors["prices."+symbol] = "price must not be negative"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
