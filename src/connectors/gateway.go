package connectors

import "context"

// TokenOverview is the gateway's price/liquidity snapshot for a token.
type TokenOverview struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Decimals       int     `json:"decimals"`
	Price          float64 `json:"price"`
	LiquidityUSD   float64 `json:"liquidity_usd"`
	MarketCap      float64 `json:"market_cap"`
	Volume24hUSD   float64 `json:"volume_24h_usd"`
	PriceChange24h float64 `json:"price_change_24h"`
	Holders        int     `json:"holders"`
}

// TokenSecurity carries holder-concentration and supply-control signals.
type TokenSecurity struct {
	Top10HolderPercent float64 `json:"top10_holder_percent"`
	CreatorPercent     float64 `json:"creator_percent"`
	FreezeAuthority    bool    `json:"freeze_authority"`
	MutableMetadata    bool    `json:"mutable_metadata"`
}

// TokenTradeData carries 24h trade-flow statistics.
type TokenTradeData struct {
	Volume24hUSD                  float64 `json:"volume_24h_usd"`
	VolumeChange24hPercent        float64 `json:"volume_change_24h_percent"`
	UniqueWallets24h              int     `json:"unique_wallets_24h"`
	UniqueWallets24hChangePercent float64 `json:"unique_wallets_24h_change_percent"`
}

// MarketDataGateway is the read-only market data dependency of the trading
// engine. All calls are side-effect-free; failures surface as errors that the
// engine catches at its public boundaries.
type MarketDataGateway interface {
	FetchOverview(ctx context.Context, chain, address string) (*TokenOverview, error)
	// ResolveTicker maps a ticker symbol to a token address. Returns "" with a
	// nil error when the ticker is unknown.
	ResolveTicker(ctx context.Context, chain, ticker string) (string, error)
	FetchSecurity(ctx context.Context, chain, address string) (*TokenSecurity, error)
	FetchTradeData(ctx context.Context, chain, address string) (*TokenTradeData, error)
}
