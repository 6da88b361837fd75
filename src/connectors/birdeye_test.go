package connectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) (*BirdeyeClient, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)

	cfg := Config{
		BirdeyeBaseURL:   srv.URL,
		BirdeyeAPIKey:    "test-key",
		RequestTimeout:   2 * time.Second,
		RetryCount:       1,
		RetryWaitTime:    time.Millisecond,
		RetryMaxWaitTime: 10 * time.Millisecond,
	}
	return NewBirdeyeClient(cfg), srv.Close
}

func TestBirdeyeFetchOverview(t *testing.T) {
	var gotChain, gotAddress string

	client, closeFn := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/defi/token_overview" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotChain = r.Header.Get("x-chain")
		gotAddress = r.URL.Query().Get("address")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"symbol": "WIF",
				"name": "dogwifhat",
				"decimals": 6,
				"price": 2.5,
				"liquidity": 1500000,
				"mc": 2500000000,
				"v24hUSD": 120000000,
				"priceChange24hPercent": -3.2,
				"holder": 150000
			}
		}`))
	}))
	defer closeFn()

	overview, err := client.FetchOverview(context.Background(), "solana", "wif-address")
	require.NoError(t, err)

	assert.Equal(t, "solana", gotChain)
	assert.Equal(t, "wif-address", gotAddress)
	assert.Equal(t, "WIF", overview.Symbol)
	assert.Equal(t, 6, overview.Decimals)
	assert.Equal(t, 2.5, overview.Price)
	assert.Equal(t, float64(1500000), overview.LiquidityUSD)
}

func TestBirdeyeFetchSecurityConvertsToPercent(t *testing.T) {
	client, closeFn := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {"top10HolderPercent": 0.42, "creatorPercentage": 0.05}}`))
	}))
	defer closeFn()

	security, err := client.FetchSecurity(context.Background(), "solana", "addr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if security.Top10HolderPercent != 42 {
		t.Fatalf("expected percent conversion, got %f", security.Top10HolderPercent)
	}
}

func TestBirdeyeUnsuccessfulResponse(t *testing.T) {
	client, closeFn := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "message": "token not found"}`))
	}))
	defer closeFn()

	if _, err := client.FetchOverview(context.Background(), "solana", "missing"); err == nil {
		t.Fatal("expected error for unsuccessful response")
	}
}

func TestBirdeyeResolveTicker(t *testing.T) {
	client, closeFn := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("keyword") != "WIF" {
			t.Fatalf("expected $ prefix stripped, got %q", r.URL.Query().Get("keyword"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {"items": [{"type": "token", "result": [
				{"address": "other", "symbol": "WIFF"},
				{"address": "wif-address", "symbol": "wif"}
			]}]}
		}`))
	}))
	defer closeFn()

	address, err := client.ResolveTicker(context.Background(), "solana", "$WIF")
	require.NoError(t, err)
	assert.Equal(t, "wif-address", address, "expected case-insensitive symbol match")
}

func TestBirdeyeResolveTickerUnknown(t *testing.T) {
	client, closeFn := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {"items": []}}`))
	}))
	defer closeFn()

	address, err := client.ResolveTicker(context.Background(), "solana", "$NOPE")
	require.NoError(t, err)
	assert.Empty(t, address, "unknown ticker resolves to empty address")
}
