package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"trustengine/src/model"
)

func TestMetricsRepositorySaveSupersedes(t *testing.T) {
	repo := (&MetricsRepository{}).WithDB(newTestDB(t))
	ctx := context.Background()

	recommenderID := uuid.NewString()
	metrics := &model.RecommenderMetrics{
		RecommenderID: recommenderID,
		Platform:      "discord",
		TrustScore:    50,
	}
	if err := repo.Save(ctx, metrics); err != nil {
		t.Fatalf("failed to save metrics: %v", err)
	}

	metrics.TrustScore = 62.5
	metrics.TotalRecommendations = 3
	if err := repo.Save(ctx, metrics); err != nil {
		t.Fatalf("failed to resave metrics: %v", err)
	}

	found, err := repo.Find(ctx, recommenderID)
	if err != nil || found == nil {
		t.Fatalf("failed to reload metrics: %+v err=%v", found, err)
	}
	if found.TrustScore != 62.5 || found.TotalRecommendations != 3 {
		t.Fatalf("expected superseded values, got %+v", found)
	}
}

func TestMetricsRepositoryFindMissing(t *testing.T) {
	repo := (&MetricsRepository{}).WithDB(newTestDB(t))

	found, err := repo.Find(context.Background(), uuid.NewString())
	if err != nil {
		t.Fatalf("expected (nil, nil) for missing metrics, got err=%v", err)
	}
	if found != nil {
		t.Fatalf("expected nil metrics, got %+v", found)
	}
}

func TestMetricsRepositoryTrimHistory(t *testing.T) {
	repo := (&MetricsRepository{}).WithDB(newTestDB(t))
	ctx := context.Background()

	recommenderID := uuid.NewString()
	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		snapshot := &model.RecommenderMetricsHistory{
			ID:            uuid.NewString(),
			RecommenderID: recommenderID,
			TrustScore:    float64(i),
			RecordedAt:    base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.AppendHistory(ctx, snapshot); err != nil {
			t.Fatalf("failed to append snapshot %d: %v", i, err)
		}
	}

	if err := repo.TrimHistory(ctx, recommenderID, 10); err != nil {
		t.Fatalf("failed to trim history: %v", err)
	}

	history, err := repo.FindHistory(ctx, recommenderID)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if len(history) != 10 {
		t.Fatalf("expected 10 snapshots retained, got %d", len(history))
	}

	// Newest first; the two oldest snapshots (trust 0 and 1) must be gone.
	if history[0].TrustScore != 11 {
		t.Fatalf("expected newest snapshot first, got trust=%f", history[0].TrustScore)
	}
	if history[len(history)-1].TrustScore != 2 {
		t.Fatalf("expected oldest retained snapshot trust=2, got %f", history[len(history)-1].TrustScore)
	}
}

func TestMetricsRepositoryTrimNoop(t *testing.T) {
	repo := (&MetricsRepository{}).WithDB(newTestDB(t))
	ctx := context.Background()

	recommenderID := uuid.NewString()
	if err := repo.TrimHistory(ctx, recommenderID, 10); err != nil {
		t.Fatalf("trim on empty history must be a no-op, got %v", err)
	}
}
