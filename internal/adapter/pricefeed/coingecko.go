// Package pricefeed fetches market prices from the CoinGecko simple price API.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"custodial-wallet/config"
	"custodial-wallet/internal/core/domain"
)

type coin struct {
	id     string
	symbol string
	name   string
}

// coins is the quoted set, in display order.
var coins = []coin{
	{"bitcoin", "BTC", "Bitcoin"},
	{"tether", "USDT", "Tether"},
	{"ethereum", "ETH", "Ethereum"},
	{"binancecoin", "BNB", "BNB"},
	{"cardano", "ADA", "Cardano"},
	{"solana", "SOL", "Solana"},
	{"polkadot", "DOT", "Polkadot"},
	{"dogecoin", "DOGE", "Dogecoin"},
}

type quote struct {
	USD       float64 `json:"usd"`
	Change24h float64 `json:"usd_24h_change"`
	MarketCap float64 `json:"usd_market_cap"`
	Volume24h float64 `json:"usd_24h_vol"`
}

// CoinGecko implements ports.PriceSource.
type CoinGecko struct {
	baseURL string
	client  *http.Client
}

func NewCoinGecko(cfg config.PriceFeedConfig) *CoinGecko {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CoinGecko{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch returns one price per quoted coin. Coins missing from the response
// are an error so the caller can fall back to a complete table.
func (c *CoinGecko) Fetch(ctx context.Context) ([]domain.CryptoPrice, error) {
	ids := make([]string, len(coins))
	for i, cn := range coins {
		ids[i] = cn.id
	}
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true&include_market_cap=true&include_24hr_vol=true",
		c.baseURL, strings.Join(ids, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch prices: unexpected status %d", resp.StatusCode)
	}

	var body map[string]quote
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode prices: %w", err)
	}

	prices := make([]domain.CryptoPrice, 0, len(coins))
	for _, cn := range coins {
		q, ok := body[cn.id]
		if !ok {
			return nil, fmt.Errorf("price feed missing %s", cn.id)
		}
		prices = append(prices, domain.CryptoPrice{
			Symbol:    cn.symbol,
			Name:      cn.name,
			PriceUSD:  q.USD,
			Change24h: q.Change24h,
			MarketCap: q.MarketCap,
			Volume24h: q.Volume24h,
		})
	}
	return prices, nil
}
