package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	coingeckoAPI = "https://api.coingecko.com/api/v3"
)

// CoinGeckoClient client for CoinGecko API
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
}

// NewCoinGeckoClient creates a new CoinGecko client
func NewCoinGeckoClient() *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: coingeckoAPI,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// WithBaseURL points the client at another CoinGecko-compatible endpoint
func (c *CoinGeckoClient) WithBaseURL(baseURL string) *CoinGeckoClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// PriceResponse response from CoinGecko API: coin id -> currency -> price
type PriceResponse map[string]map[string]float64

// GetPrices gets the price of every coin id in vsCurrency.
// Coins CoinGecko does not know are absent from the result.
func (c *CoinGeckoClient) GetPrices(ctx context.Context, coinIDs []string, vsCurrency string) (map[string]float64, error) {
	if len(coinIDs) == 0 {
		return map[string]float64{}, nil
	}
	vsCurrency = strings.ToLower(vsCurrency)

	query := url.Values{}
	query.Set("ids", strings.Join(coinIDs, ","))
	query.Set("vs_currencies", vsCurrency)
	u := fmt.Sprintf("%s/simple/price?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get rate: status %d", resp.StatusCode)
	}

	var priceResp PriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return nil, fmt.Errorf("failed to decode rate: %w", err)
	}

	prices := make(map[string]float64, len(coinIDs))
	for _, id := range coinIDs {
		if price, ok := priceResp[id][vsCurrency]; ok {
			prices[id] = price
		}
	}
	return prices, nil
}
