package domain

// PriceSource tells whether a quote came from the live feed.
type PriceSource string

const (
	PriceSourceLive     PriceSource = "live"
	PriceSourceFallback PriceSource = "fallback"
)

// CryptoPrice is a market quote in USD.
type CryptoPrice struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	PriceUSD  float64 `json:"price_usd"`
	Change24h float64 `json:"change_24h"`
	MarketCap float64 `json:"market_cap"`
	Volume24h float64 `json:"volume_24h"`
}
