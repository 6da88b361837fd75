package connectors

import (
	"context"
	"encoding/json"
	"time"

	logger "github.com/sirupsen/logrus"

	"trustengine/src/cache"
)

// CachedGateway wraps a MarketDataGateway with an expiring cache shadow.
// Cache failures are logged and fall through to the inner gateway; the cache
// never becomes a correctness dependency.
type CachedGateway struct {
	inner MarketDataGateway
	cache cache.Cache
	cfg   Config
}

func NewCachedGateway(inner MarketDataGateway, store cache.Cache, cfg Config) *CachedGateway {
	return &CachedGateway{inner: inner, cache: store, cfg: cfg}
}

func (g *CachedGateway) FetchOverview(ctx context.Context, chain, address string) (*TokenOverview, error) {
	key := cache.TokenOverviewKey(chain, address)

	var cached TokenOverview
	if g.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	overview, err := g.inner.FetchOverview(ctx, chain, address)
	if err != nil {
		return nil, err
	}
	g.store(ctx, key, overview, g.cfg.OverviewTTL)
	return overview, nil
}

func (g *CachedGateway) FetchSecurity(ctx context.Context, chain, address string) (*TokenSecurity, error) {
	key := cache.TokenSecurityKey(chain, address)

	var cached TokenSecurity
	if g.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	security, err := g.inner.FetchSecurity(ctx, chain, address)
	if err != nil {
		return nil, err
	}
	g.store(ctx, key, security, g.cfg.SecurityTTL)
	return security, nil
}

func (g *CachedGateway) FetchTradeData(ctx context.Context, chain, address string) (*TokenTradeData, error) {
	key := cache.TokenTradeDataKey(chain, address)

	var cached TokenTradeData
	if g.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	tradeData, err := g.inner.FetchTradeData(ctx, chain, address)
	if err != nil {
		return nil, err
	}
	g.store(ctx, key, tradeData, g.cfg.TradeDataTTL)
	return tradeData, nil
}

func (g *CachedGateway) ResolveTicker(ctx context.Context, chain, ticker string) (string, error) {
	key := cache.TickerKey(chain, ticker)

	var cached string
	if g.lookup(ctx, key, &cached) {
		return cached, nil
	}

	address, err := g.inner.ResolveTicker(ctx, chain, ticker)
	if err != nil {
		return "", err
	}
	// Unresolved tickers are not cached so a later listing shows up promptly.
	if address != "" {
		g.store(ctx, key, address, g.cfg.TickerTTL)
	}
	return address, nil
}

func (g *CachedGateway) lookup(ctx context.Context, key string, out any) bool {
	raw, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		logger.WithError(err).WithField("key", key).Debug("cache read failed, falling through")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logger.WithError(err).WithField("key", key).Warn("corrupt cache entry, falling through")
		return false
	}
	return true
}

func (g *CachedGateway) store(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		logger.WithError(err).WithField("key", key).Warn("failed to encode cache entry")
		return
	}
	if err := g.cache.Set(ctx, key, string(raw), ttl); err != nil {
		logger.WithError(err).WithField("key", key).Debug("cache write failed")
	}
}
