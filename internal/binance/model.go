package binance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// accountResponse maps the subset of GET /api/v3/account used for valuation.
type accountResponse struct {
	Balances []struct {
		Asset  string          `json:"asset"`
		Free   decimal.Decimal `json:"free"`
		Locked decimal.Decimal `json:"locked"`
	} `json:"balances"`
}

// tickerPrice is one element of GET /api/v3/ticker/price.
type tickerPrice struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// APIError is the error payload Binance returns with non-2xx responses.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance error %d (http %d): %s", e.Code, e.StatusCode, e.Message)
}
