package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	logger "github.com/sirupsen/logrus"

	"trustengine/src/model"
	"trustengine/src/trading"
)

// signalProcessor is the slice of the trading service the signal handlers
// need. The service's nil/false contract maps onto HTTP status codes here:
// nil position / false close is 422, never 500.
type signalProcessor interface {
	ProcessBuySignal(ctx context.Context, recommenderID string, signal trading.BuySignal) *model.Position
	ProcessSellSignal(ctx context.Context, positionID string) bool
}

type buySignalRequest struct {
	RecommenderID string `json:"recommender_id"`
	Chain         string `json:"chain"`
	TokenAddress  string `json:"token_address"`
	Ticker        string `json:"ticker"`
	Platform      string `json:"platform"`
	Conviction    string `json:"conviction"`
	Timestamp     string `json:"timestamp"`
}

type sellSignalRequest struct {
	PositionID string `json:"position_id"`
}

// BuySignalHandler accepts a buy signal and returns the opened position, or
// 422 when the engine rejects the signal.
func BuySignalHandler(service signalProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req buySignalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.RecommenderID == "" {
			http.Error(w, "recommender_id is required", http.StatusBadRequest)
			return
		}
		if req.Chain == "" {
			http.Error(w, "chain is required", http.StatusBadRequest)
			return
		}
		if req.TokenAddress == "" && req.Ticker == "" {
			http.Error(w, "token_address or ticker is required", http.StatusBadRequest)
			return
		}

		var timestamp time.Time
		if req.Timestamp != "" {
			parsed, err := time.Parse(time.RFC3339, req.Timestamp)
			if err != nil {
				http.Error(w, "invalid timestamp", http.StatusBadRequest)
				return
			}
			timestamp = parsed
		}

		position := service.ProcessBuySignal(r.Context(), req.RecommenderID, trading.BuySignal{
			Chain:        req.Chain,
			TokenAddress: req.TokenAddress,
			Ticker:       req.Ticker,
			Platform:     req.Platform,
			Conviction:   model.Conviction(req.Conviction),
			Timestamp:    timestamp,
		})
		if position == nil {
			http.Error(w, "signal rejected", http.StatusUnprocessableEntity)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(position); err != nil {
			logger.WithError(err).Error("failed to encode buy signal response")
		}
	}
}

// SellSignalHandler accepts a sell signal for an open position. A replayed or
// unknown position returns 422; the close happens at most once.
func SellSignalHandler(service signalProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sellSignalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.PositionID == "" {
			http.Error(w, "position_id is required", http.StatusBadRequest)
			return
		}

		if !service.ProcessSellSignal(r.Context(), req.PositionID) {
			http.Error(w, "position not closed", http.StatusUnprocessableEntity)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]bool{"closed": true}); err != nil {
			logger.WithError(err).Error("failed to encode sell signal response")
		}
	}
}
