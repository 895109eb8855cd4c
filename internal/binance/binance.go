package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/testnet-portfolio-panel/internal/apperrors"
	"github.com/ndewijer/testnet-portfolio-panel/internal/config"
	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
)

const recvWindowMillis = 5000

// Client reads account balances and ticker prices from the Binance Spot REST API.
// Every failure is wrapped with apperrors.ErrUpstreamUnavailable.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string
	now        func() time.Time
}

// NewClient creates a client for the configured endpoint (testnet by default).
func NewClient(cfg config.ExchangeConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		now:        time.Now,
	}
}

// GetBalances returns every asset with a non-zero free or locked amount.
// The account endpoint is signed, so API key and secret are required.
func (c *Client) GetBalances(ctx context.Context) (map[string]model.Balance, error) {
	if c.apiKey == "" || c.apiSecret == "" {
		return nil, fmt.Errorf("%w: exchange API credentials are not configured", apperrors.ErrUpstreamUnavailable)
	}

	var account accountResponse
	if err := c.query(ctx, "/api/v3/account", url.Values{"omitZeroBalances": {"true"}}, true, &account); err != nil {
		return nil, err
	}

	balances := make(map[string]model.Balance, len(account.Balances))
	for _, b := range account.Balances {
		if b.Free.IsZero() && b.Locked.IsZero() {
			continue
		}
		balances[b.Asset] = model.Balance{Free: b.Free, Locked: b.Locked}
	}
	return balances, nil
}

// GetPrices returns the latest price of every trading symbol, keyed by symbol (e.g. BTCUSDT).
func (c *Client) GetPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	var tickers []tickerPrice
	if err := c.query(ctx, "/api/v3/ticker/price", nil, false, &tickers); err != nil {
		return nil, err
	}

	prices := make(map[string]decimal.Decimal, len(tickers))
	for _, t := range tickers {
		prices[t.Symbol] = t.Price
	}
	return prices, nil
}

// sign appends timestamp, recvWindow and the HMAC-SHA256 signature of the encoded query.
func (c *Client) sign(params url.Values) string {
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	params.Set("recvWindow", strconv.Itoa(recvWindowMillis))
	payload := params.Encode()

	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(payload))
	return payload + "&signature=" + hex.EncodeToString(mac.Sum(nil))
}

// query executes a GET request and decodes the JSON response into out.
func (c *Client) query(ctx context.Context, path string, params url.Values, signed bool, out any) error {
	if params == nil {
		params = url.Values{}
	}

	rawQuery := params.Encode()
	if signed {
		rawQuery = c.sign(params)
	}

	endpoint := c.baseURL + path
	if rawQuery != "" {
		endpoint += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s response: %w", apperrors.ErrUpstreamUnavailable, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return fmt.Errorf("%w: %w", apperrors.ErrUpstreamUnavailable, apiErr)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %w", apperrors.ErrUpstreamUnavailable, path, err)
	}
	return nil
}

// IsAPIError reports whether err carries a Binance error payload and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
