package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/solcard/card-order-service/internal/domain"
)

const defaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider resolves the SOL/USD pair from CoinGecko's simple-price
// endpoint. The rate is fetched once per order at creation time; there is no
// cached fallback value, an unreachable feed is a transient error.
type CoinGeckoProvider struct {
	baseURL string
	client  *http.Client
}

type simplePriceResponse struct {
	Solana struct {
		Usd float64 `json:"usd"`
	} `json:"solana"`
}

func NewCoinGeckoProvider() *CoinGeckoProvider {
	return &CoinGeckoProvider{
		baseURL: defaultCoinGeckoURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// NewCoinGeckoProviderWithURL is used by tests to point at a stub server.
func NewCoinGeckoProviderWithURL(baseURL string) *CoinGeckoProvider {
	p := NewCoinGeckoProvider()
	p.baseURL = baseURL
	return p
}

func (p *CoinGeckoProvider) GetName() string {
	return "coingecko"
}

func (p *CoinGeckoProvider) GetRate(ctx context.Context, pair string) (float64, error) {
	if pair != "SOL/USD" {
		return 0, fmt.Errorf("unsupported pair: %s", pair)
	}

	url := fmt.Sprintf("%s/simple/price?ids=solana&vs_currencies=usd", p.baseURL)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, domain.Transient("coingecko", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, domain.Transient("coingecko", fmt.Errorf("API returned status: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, domain.Transient("coingecko", err)
	}

	var priceResponse simplePriceResponse
	if err := json.Unmarshal(body, &priceResponse); err != nil {
		return 0, domain.Transient("coingecko", fmt.Errorf("failed to parse response: %w", err))
	}

	if priceResponse.Solana.Usd <= 0 {
		return 0, domain.Transient("coingecko", fmt.Errorf("no usable SOL/USD price in response"))
	}

	return priceResponse.Solana.Usd, nil
}

func (p *CoinGeckoProvider) IsHealthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := p.GetRate(ctx, "SOL/USD")
	return err == nil
}
