package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

// BirdeyeClient is a MarketDataGateway backed by the Birdeye public API.
// Responses are plain reads; transient failures are retried with backoff
// inside the client so callers see at most one terminal error.
type BirdeyeClient struct {
	http *resty.Client
}

type birdeyeResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}

	code := r.StatusCode()
	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 || code == 408 {
		return true
	}
	return false
}

func NewBirdeyeClient(cfg Config) *BirdeyeClient {
	httpClient := resty.New().
		SetBaseURL(cfg.BirdeyeBaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWaitTime).
		SetRetryMaxWaitTime(cfg.RetryMaxWaitTime).
		AddRetryCondition(isRetryableResp).
		SetHeader("accept", "application/json")

	if cfg.BirdeyeAPIKey != "" {
		httpClient.SetHeader("X-API-KEY", cfg.BirdeyeAPIKey)
	}

	return &BirdeyeClient{http: httpClient}
}

func (c *BirdeyeClient) get(ctx context.Context, chain, path string, query map[string]string) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-chain", chain).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("birdeye %s: %w", path, err)
	}
	if resp.StatusCode()/100 != 2 {
		return nil, fmt.Errorf("birdeye %s: unexpected status %d", path, resp.StatusCode())
	}

	var decoded birdeyeResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("birdeye %s: decode response: %w", path, err)
	}
	if !decoded.Success {
		return nil, fmt.Errorf("birdeye %s: request not successful: %s", path, decoded.Message)
	}
	return decoded.Data, nil
}

func (c *BirdeyeClient) FetchOverview(ctx context.Context, chain, address string) (*TokenOverview, error) {
	data, err := c.get(ctx, chain, "/defi/token_overview", map[string]string{"address": address})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Symbol                string  `json:"symbol"`
		Name                  string  `json:"name"`
		Decimals              int     `json:"decimals"`
		Price                 float64 `json:"price"`
		Liquidity             float64 `json:"liquidity"`
		MarketCap             float64 `json:"mc"`
		Volume24hUSD          float64 `json:"v24hUSD"`
		PriceChange24hPercent float64 `json:"priceChange24hPercent"`
		Holder                int     `json:"holder"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("birdeye overview: decode data: %w", err)
	}

	return &TokenOverview{
		Symbol:         raw.Symbol,
		Name:           raw.Name,
		Decimals:       raw.Decimals,
		Price:          raw.Price,
		LiquidityUSD:   raw.Liquidity,
		MarketCap:      raw.MarketCap,
		Volume24hUSD:   raw.Volume24hUSD,
		PriceChange24h: raw.PriceChange24hPercent,
		Holders:        raw.Holder,
	}, nil
}

func (c *BirdeyeClient) FetchSecurity(ctx context.Context, chain, address string) (*TokenSecurity, error) {
	data, err := c.get(ctx, chain, "/defi/token_security", map[string]string{"address": address})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Top10HolderPercent float64 `json:"top10HolderPercent"`
		CreatorPercentage  float64 `json:"creatorPercentage"`
		Freezeable         bool    `json:"freezeable"`
		MutableMetadata    bool    `json:"mutableMetadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("birdeye security: decode data: %w", err)
	}

	// Birdeye reports fractions; the engine works in percent.
	return &TokenSecurity{
		Top10HolderPercent: raw.Top10HolderPercent * 100,
		CreatorPercent:     raw.CreatorPercentage * 100,
		FreezeAuthority:    raw.Freezeable,
		MutableMetadata:    raw.MutableMetadata,
	}, nil
}

func (c *BirdeyeClient) FetchTradeData(ctx context.Context, chain, address string) (*TokenTradeData, error) {
	data, err := c.get(ctx, chain, "/defi/v3/token/trade-data/single", map[string]string{"address": address})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Volume24hUSD                 float64 `json:"volume_24h_usd"`
		Volume24hChangePercent       float64 `json:"volume_24h_change_percent"`
		UniqueWallet24h              int     `json:"unique_wallet_24h"`
		UniqueWallet24hChangePercent float64 `json:"unique_wallet_24h_change_percent"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("birdeye trade data: decode data: %w", err)
	}

	return &TokenTradeData{
		Volume24hUSD:                  raw.Volume24hUSD,
		VolumeChange24hPercent:        raw.Volume24hChangePercent,
		UniqueWallets24h:              raw.UniqueWallet24h,
		UniqueWallets24hChangePercent: raw.UniqueWallet24hChangePercent,
	}, nil
}

func (c *BirdeyeClient) ResolveTicker(ctx context.Context, chain, ticker string) (string, error) {
	keyword := strings.TrimPrefix(ticker, "$")
	data, err := c.get(ctx, chain, "/defi/v3/search", map[string]string{
		"keyword":   keyword,
		"target":    "token",
		"sort_by":   "liquidity",
		"sort_type": "desc",
	})
	if err != nil {
		return "", err
	}

	var raw struct {
		Items []struct {
			Type   string `json:"type"`
			Result []struct {
				Address string `json:"address"`
				Symbol  string `json:"symbol"`
			} `json:"result"`
		} `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", fmt.Errorf("birdeye search: decode data: %w", err)
	}

	for _, item := range raw.Items {
		if item.Type != "token" {
			continue
		}
		for _, result := range item.Result {
			if strings.EqualFold(result.Symbol, keyword) {
				return result.Address, nil
			}
		}
	}

	logger.WithFields(logger.Fields{
		"chain":  chain,
		"ticker": ticker,
	}).Info("ticker did not resolve to a token address")

	return "", nil
}
