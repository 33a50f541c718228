package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type countingObserver map[domain.PriceSource]int

func (c countingObserver) ObservePriceQuote(s domain.PriceSource) { c[s]++ }

func TestPriceService(t *testing.T) {
	live := []domain.CryptoPrice{{Symbol: "BTC", Name: "Bitcoin", PriceUSD: 60000}}
	boom := errors.New("boom")

	tests := []struct {
		name       string
		setup      func(src *mocks.MockPriceSource, cache *mocks.MockPriceCache)
		wantSource domain.PriceSource
		wantLen    int
	}{
		{
			name: "cache hit skips the feed",
			setup: func(src *mocks.MockPriceSource, cache *mocks.MockPriceCache) {
				cache.EXPECT().Get(gomock.Any()).Return(live, nil)
			},
			wantSource: domain.PriceSourceLive,
			wantLen:    1,
		},
		{
			name: "miss fetches and caches",
			setup: func(src *mocks.MockPriceSource, cache *mocks.MockPriceCache) {
				cache.EXPECT().Get(gomock.Any()).Return(nil, nil)
				src.EXPECT().Fetch(gomock.Any()).Return(live, nil)
				cache.EXPECT().Set(gomock.Any(), live, time.Minute).Return(nil)
			},
			wantSource: domain.PriceSourceLive,
			wantLen:    1,
		},
		{
			name: "cache errors are ignored",
			setup: func(src *mocks.MockPriceSource, cache *mocks.MockPriceCache) {
				cache.EXPECT().Get(gomock.Any()).Return(nil, boom)
				src.EXPECT().Fetch(gomock.Any()).Return(live, nil)
				cache.EXPECT().Set(gomock.Any(), live, time.Minute).Return(boom)
			},
			wantSource: domain.PriceSourceLive,
			wantLen:    1,
		},
		{
			name: "feed failure serves the fallback table",
			setup: func(src *mocks.MockPriceSource, cache *mocks.MockPriceCache) {
				cache.EXPECT().Get(gomock.Any()).Return(nil, nil)
				src.EXPECT().Fetch(gomock.Any()).Return(nil, boom)
			},
			wantSource: domain.PriceSourceFallback,
			wantLen:    8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			src := mocks.NewMockPriceSource(ctrl)
			cache := mocks.NewMockPriceCache(ctrl)
			tt.setup(src, cache)
			obs := countingObserver{}

			svc := NewPriceService(src, cache, time.Minute, obs, zerolog.Nop())
			q, err := svc.Prices(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, q.Source)
			assert.Len(t, q.Prices, tt.wantLen)
			assert.Equal(t, 1, obs[tt.wantSource])
		})
	}
}

func TestPriceService_NoCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	src := mocks.NewMockPriceSource(ctrl)
	src.EXPECT().Fetch(gomock.Any()).Return(nil, context.DeadlineExceeded)

	q, err := NewPriceService(src, nil, time.Minute, nil, zerolog.Nop()).Prices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PriceSourceFallback, q.Source)
	assert.Equal(t, "BTC", q.Prices[0].Symbol)
	assert.Equal(t, 43250.50, q.Prices[0].PriceUSD)
}

func TestFallbackPrices_IsACopy(t *testing.T) {
	p := FallbackPrices()
	p[0].PriceUSD = 1
	assert.Equal(t, 43250.50, FallbackPrices()[0].PriceUSD)
}
