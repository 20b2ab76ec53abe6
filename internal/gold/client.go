// Package gold fetches the daily gold price used to display the Nisaab
// value (the wealth threshold above which Zakat is due, conventionally
// priced as 85 grams of gold).
package gold

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://www.goldapi.io/api"

// NisaabGrams is the weight of gold that defines the Nisaab threshold.
const NisaabGrams = 85

// gramsPerTroyOunce converts the feed's per-ounce quote to grams.
var gramsPerTroyOunce = decimal.RequireFromString("31.1035")

// Client communicates with a GoldAPI-compatible price feed.
type Client struct {
	httpClient *http.Client
	apiKey     string

	// BaseURL is the feed base URL. Defaults to GoldAPI.
	// Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a new price feed client with sensible defaults.
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiKey:  apiKey,
		BaseURL: defaultBaseURL,
	}
}

// priceResponse is the subset of the feed response we care about.
type priceResponse struct {
	// Price of one troy ounce (31.1035 g) of gold in USD
	Price decimal.Decimal `json:"price"`
}

// FetchOuncePrice fetches the current XAU/USD price per troy ounce.
func (c *Client) FetchOuncePrice(ctx context.Context) (decimal.Decimal, error) {
	reqURL := fmt.Sprintf("%s/XAU/USD", c.BaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("create price request: %w", err)
	}
	req.Header.Set("x-access-token", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return decimal.Zero, fmt.Errorf("price feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var pr priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode price response: %w", err)
	}

	if pr.Price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("price feed returned non-positive price %s", pr.Price)
	}

	return pr.Price, nil
}

// NisaabFromOunce converts a per-ounce quote to the Nisaab value
// (85 grams of gold), rounded to 2 decimal places.
func NisaabFromOunce(perOunce decimal.Decimal) decimal.Decimal {
	grams := decimal.NewFromInt(NisaabGrams)
	return perOunce.Mul(grams).Div(gramsPerTroyOunce).Round(2)
}
