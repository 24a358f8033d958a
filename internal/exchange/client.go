// Package exchange converts monetary amounts between currencies using an
// external pair-conversion HTTP API.
//
// The client satisfies netting.Converter. Conversion results are rounded
// half-even to two decimal places so that repeated conversions of the same
// amount are reproducible. Pair rates are cached briefly to keep a netting
// run from hammering the rate provider, which does not change results
// within a run.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"

	"github.com/nurlan/debtnet/internal/models"
)

var (
	// ErrUnknownCurrency means one of the requested currencies does not
	// exist, either locally or at the rate provider.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrUnavailable means the rate provider could not be reached or
	// returned an unexpected response.
	ErrUnavailable = errors.New("exchange rate service unavailable")
)

const (
	cacheSize = 256
	cacheTTL  = 5 * time.Minute
)

// CurrencyDirectory resolves currency IDs to their ISO codes. Implemented
// by storage.Store.
type CurrencyDirectory interface {
	GetCurrencyByID(ctx context.Context, id string) (*models.Currency, error)
}

// Client talks to a pair-conversion API of the form
// {host}/{key}/pair/{FROM}/{TO}/{amount}.
type Client struct {
	httpClient *http.Client
	host       string
	apiKey     string
	currencies CurrencyDirectory
	rates      *expirable.LRU[string, decimal.Decimal]
}

// NewClient creates a rate client against the given API host and key.
func NewClient(host, apiKey string, currencies CurrencyDirectory) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		host:       host,
		apiKey:     apiKey,
		currencies: currencies,
		rates:      expirable.NewLRU[string, decimal.Decimal](cacheSize, nil, cacheTTL),
	}
}

type pairResponse struct {
	Result           string          `json:"result"`
	ErrorType        string          `json:"error-type"`
	BaseCode         string          `json:"base_code"`
	TargetCode       string          `json:"target_code"`
	ConversionRate   decimal.Decimal `json:"conversion_rate"`
	ConversionResult decimal.Decimal `json:"conversion_result"`
}

// Convert converts amount from one currency to another, rounding half-even
// to two decimal places. Same-currency conversions are identity and never
// hit the provider.
func (c *Client) Convert(ctx context.Context, amount decimal.Decimal, fromCurrencyID, toCurrencyID string) (decimal.Decimal, error) {
	if fromCurrencyID == toCurrencyID {
		return amount, nil
	}

	from, err := c.currencies.GetCurrencyByID(ctx, fromCurrencyID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, fromCurrencyID)
	}
	to, err := c.currencies.GetCurrencyByID(ctx, toCurrencyID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, toCurrencyID)
	}

	rate, err := c.pairRate(ctx, from.Code, to.Code, amount)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).RoundBank(2), nil
}

func (c *Client) pairRate(ctx context.Context, fromCode, toCode string, amount decimal.Decimal) (decimal.Decimal, error) {
	cacheKey := fromCode + ":" + toCode
	if rate, ok := c.rates.Get(cacheKey); ok {
		return rate, nil
	}

	url := fmt.Sprintf("%s/%s/pair/%s/%s/%s", c.host, c.apiKey, fromCode, toCode, amount.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	var pair pairResponse
	if err := json.Unmarshal(body, &pair); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK || pair.Result != "success" {
		switch pair.ErrorType {
		case "unsupported-code", "unknown-code":
			return decimal.Zero, fmt.Errorf("%w: %s/%s", ErrUnknownCurrency, fromCode, toCode)
		default:
			return decimal.Zero, fmt.Errorf("%w: provider error %q", ErrUnavailable, pair.ErrorType)
		}
	}

	c.rates.Add(cacheKey, pair.ConversionRate)
	return pair.ConversionRate, nil
}
