package testutil

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
)

// MockExchange is a mock implementation of service.AccountSource for testing.
// It returns predefined balances and prices instead of calling the exchange.
type MockExchange struct {
	mu sync.Mutex

	// Balances is returned from GetBalances
	Balances map[string]model.Balance
	// Prices is returned from GetPrices
	Prices map[string]decimal.Decimal
	// BalancesError is returned from GetBalances when set
	BalancesError error
	// PricesError is returned from GetPrices when set
	PricesError error
	// QueryCount tracks how many times a query method was called
	QueryCount int
}

// NewMockExchange creates a mock exchange holding 1 BTC and 1000 USDT with BTC at 50000.
func NewMockExchange() *MockExchange {
	return &MockExchange{
		Balances: Balances(map[string]string{"BTC": "1", "USDT": "1000"}),
		Prices:   Prices(map[string]string{"BTCUSDT": "50000"}),
	}
}

// GetBalances returns the configured balances or BalancesError.
func (m *MockExchange) GetBalances(_ context.Context) (map[string]model.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueryCount++
	if m.BalancesError != nil {
		return nil, m.BalancesError
	}
	return m.Balances, nil
}

// GetPrices returns the configured prices or PricesError.
func (m *MockExchange) GetPrices(_ context.Context) (map[string]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueryCount++
	if m.PricesError != nil {
		return nil, m.PricesError
	}
	return m.Prices, nil
}

// WithBalancesError configures the mock to fail balance queries.
func (m *MockExchange) WithBalancesError(err error) *MockExchange {
	m.BalancesError = err
	return m
}

// WithPricesError configures the mock to fail price queries.
func (m *MockExchange) WithPricesError(err error) *MockExchange {
	m.PricesError = err
	return m
}
