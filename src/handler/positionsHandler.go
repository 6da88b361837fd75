package handler

import (
	"context"
	"encoding/json"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"trustengine/src/model"
	"trustengine/src/repository"
)

type openPositionLister interface {
	FindOpen(ctx context.Context, recommenderID string) ([]model.Position, error)
}

// ListOpenPositionsHandler lists open positions, optionally filtered by the
// recommenderId query parameter.
func ListOpenPositionsHandler(repo openPositionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positions, err := repo.FindOpen(r.Context(), r.URL.Query().Get("recommenderId"))
		if err != nil {
			logger.WithError(err).Error("failed to list open positions")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if positions == nil {
			positions = []model.Position{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(positions); err != nil {
			logger.WithError(err).Error("failed to encode positions response")
		}
	}
}

// DefaultListOpenPositionsHandler wires the handler to the production repository.
func DefaultListOpenPositionsHandler() http.HandlerFunc {
	return ListOpenPositionsHandler(repository.NewPositionRepository())
}
