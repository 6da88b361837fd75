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

type recommendationHandler interface {
	HandleRecommendation(ctx context.Context, recommenderID string, rec trading.Recommendation) *model.Position
}

type recommendationRequest struct {
	RecommenderID string `json:"recommender_id"`
	Chain         string `json:"chain"`
	TokenAddress  string `json:"token_address"`
	Ticker        string `json:"ticker"`
	Platform      string `json:"platform"`
	Type          string `json:"type"`
	Conviction    string `json:"conviction"`
	Timestamp     string `json:"timestamp"`
}

// RecommendationHandler records a raw recommendation. A BUY that passes
// validation returns the opened position; advisory types return 204.
func RecommendationHandler(service recommendationHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recommendationRequest
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
		if req.Type == "" {
			http.Error(w, "type is required", http.StatusBadRequest)
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

		position := service.HandleRecommendation(r.Context(), req.RecommenderID, trading.Recommendation{
			Chain:        req.Chain,
			TokenAddress: req.TokenAddress,
			Ticker:       req.Ticker,
			Platform:     req.Platform,
			Type:         model.RecommendationType(req.Type),
			Conviction:   model.Conviction(req.Conviction),
			Timestamp:    timestamp,
		})
		if position == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(position); err != nil {
			logger.WithError(err).Error("failed to encode recommendation response")
		}
	}
}
