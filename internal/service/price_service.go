package service

import (
	"context"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/rs/zerolog"
)

// fallbackPrices is served whenever the live feed is unavailable.
var fallbackPrices = []domain.CryptoPrice{
	{Symbol: "BTC", Name: "Bitcoin", PriceUSD: 43250.50, Change24h: 2.45, MarketCap: 847e9, Volume24h: 15e9},
	{Symbol: "USDT", Name: "Tether", PriceUSD: 1.00, Change24h: 0.01, MarketCap: 95e9, Volume24h: 25e9},
	{Symbol: "ETH", Name: "Ethereum", PriceUSD: 2650.75, Change24h: 1.85, MarketCap: 318e9, Volume24h: 8e9},
	{Symbol: "BNB", Name: "BNB", PriceUSD: 315.20, Change24h: -0.75, MarketCap: 47e9, Volume24h: 1.2e9},
	{Symbol: "ADA", Name: "Cardano", PriceUSD: 0.485, Change24h: 3.25, MarketCap: 17e9, Volume24h: 450e6},
	{Symbol: "SOL", Name: "Solana", PriceUSD: 98.45, Change24h: 4.15, MarketCap: 42e9, Volume24h: 1.8e9},
	{Symbol: "DOT", Name: "Polkadot", PriceUSD: 7.25, Change24h: -1.25, MarketCap: 9.5e9, Volume24h: 180e6},
	{Symbol: "DOGE", Name: "Dogecoin", PriceUSD: 0.085, Change24h: 5.85, MarketCap: 12e9, Volume24h: 650e6},
}

// FallbackPrices returns a copy of the built-in table.
func FallbackPrices() []domain.CryptoPrice {
	out := make([]domain.CryptoPrice, len(fallbackPrices))
	copy(out, fallbackPrices)
	return out
}

// PriceObserver counts served quotes by source.
type PriceObserver interface {
	ObservePriceQuote(source domain.PriceSource)
}

// PriceServiceImpl implements ports.PriceService: cache, then feed, then the
// fallback table.
type PriceServiceImpl struct {
	source   ports.PriceSource
	cache    ports.PriceCache
	ttl      time.Duration
	observer PriceObserver
	log      zerolog.Logger
	now      func() time.Time
}

// NewPriceService creates a new PriceServiceImpl. cache and observer may be nil.
func NewPriceService(source ports.PriceSource, cache ports.PriceCache, ttl time.Duration, observer PriceObserver, log zerolog.Logger) *PriceServiceImpl {
	return &PriceServiceImpl{
		source:   source,
		cache:    cache,
		ttl:      ttl,
		observer: observer,
		log:      log,
		now:      time.Now,
	}
}

// Prices never fails: feed and cache errors are logged and the fallback
// table is returned.
func (s *PriceServiceImpl) Prices(ctx context.Context) (*ports.PriceQuote, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("price cache read failed")
		}
		if len(cached) > 0 {
			return s.quote(cached, domain.PriceSourceLive), nil
		}
	}

	live, err := s.source.Fetch(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("price feed unavailable, serving fallback table")
		return s.quote(FallbackPrices(), domain.PriceSourceFallback), nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, live, s.ttl); err != nil {
			s.log.Warn().Err(err).Msg("price cache write failed")
		}
	}
	return s.quote(live, domain.PriceSourceLive), nil
}

func (s *PriceServiceImpl) quote(prices []domain.CryptoPrice, source domain.PriceSource) *ports.PriceQuote {
	if s.observer != nil {
		s.observer.ObservePriceQuote(source)
	}
	return &ports.PriceQuote{Prices: prices, Source: source, FetchedAt: s.now().UTC()}
}
