package reputation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"trustengine/src/model"
	"trustengine/src/scoring"
)

const (
	// Neutral starting point for a recommender with no track record.
	initialTrustScore       = 50.0
	initialConsistencyScore = 50.0

	// Snapshots retained per recommender, newest first.
	historyLimit = 10
)

type metricsStore interface {
	Find(ctx context.Context, recommenderID string) (*model.RecommenderMetrics, error)
	Save(ctx context.Context, metrics *model.RecommenderMetrics) error
	AppendHistory(ctx context.Context, snapshot *model.RecommenderMetricsHistory) error
	FindHistory(ctx context.Context, recommenderID string) ([]model.RecommenderMetricsHistory, error)
	TrimHistory(ctx context.Context, recommenderID string, keep int) error
}

// Tracker maintains per-recommender reputation metrics. Metrics are updated
// exactly once per resolved position; every update also appends a bounded
// history snapshot.
type Tracker struct {
	store      metricsStore
	scoringCfg scoring.Config
	now        func() time.Time
}

func NewTracker(store metricsStore, scoringCfg scoring.Config) *Tracker {
	return &Tracker{
		store:      store,
		scoringCfg: scoringCfg,
		now:        time.Now,
	}
}

// Initialize creates metrics with neutral defaults for a new recommender.
// Existing metrics are returned untouched.
func (t *Tracker) Initialize(ctx context.Context, recommenderID, platform string) (*model.RecommenderMetrics, error) {
	existing, err := t.store.Find(ctx, recommenderID)
	if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	metrics := &model.RecommenderMetrics{
		RecommenderID:    recommenderID,
		Platform:         platform,
		TrustScore:       initialTrustScore,
		ConsistencyScore: initialConsistencyScore,
	}
	if err := t.store.Save(ctx, metrics); err != nil {
		return nil, fmt.Errorf("save initial metrics: %w", err)
	}

	logger.WithFields(logger.Fields{
		"recommender_id": recommenderID,
		"platform":       platform,
	}).Info("Initialized recommender metrics")

	return metrics, nil
}

// Update folds a realized performance percentage into the recommender's
// metrics. When no metrics exist yet they are initialized with neutral
// defaults and the performance is not counted, matching the behavior of the
// first-touch path.
func (t *Tracker) Update(ctx context.Context, recommenderID string, performancePercent float64) error {
	metrics, err := t.store.Find(ctx, recommenderID)
	if err != nil {
		return fmt.Errorf("load metrics: %w", err)
	}
	if metrics == nil {
		_, err := t.Initialize(ctx, recommenderID, "")
		return err
	}

	n := metrics.TotalRecommendations
	metrics.AvgTokenPerformance = (metrics.AvgTokenPerformance*float64(n) + performancePercent) / float64(n+1)
	metrics.TotalRecommendations = n + 1
	if performancePercent > 0 {
		metrics.SuccessfulRecs++
	}

	// TrustScore still holds the prior value here; the scoring engine blends
	// it with the updated counters.
	metrics.TrustScore = scoring.CalculateTrustScore(t.scoringCfg, *metrics, performancePercent)

	if err := t.store.Save(ctx, metrics); err != nil {
		return fmt.Errorf("save metrics: %w", err)
	}

	snapshot := &model.RecommenderMetricsHistory{
		ID:                   uuid.NewString(),
		RecommenderID:        recommenderID,
		TotalRecommendations: metrics.TotalRecommendations,
		SuccessfulRecs:       metrics.SuccessfulRecs,
		AvgTokenPerformance:  metrics.AvgTokenPerformance,
		ConsistencyScore:     metrics.ConsistencyScore,
		TrustScore:           metrics.TrustScore,
		RecordedAt:           t.now(),
	}
	if err := t.store.AppendHistory(ctx, snapshot); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if err := t.store.TrimHistory(ctx, recommenderID, historyLimit); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	logger.WithFields(logger.Fields{
		"recommender_id": recommenderID,
		"performance":    performancePercent,
		"trust_score":    metrics.TrustScore,
		"total_recs":     metrics.TotalRecommendations,
	}).Info("Updated recommender metrics")

	return nil
}

// Metrics returns the current metrics, or (nil, nil) when none exist.
func (t *Tracker) Metrics(ctx context.Context, recommenderID string) (*model.RecommenderMetrics, error) {
	return t.store.Find(ctx, recommenderID)
}

// History returns metric snapshots newest first.
func (t *Tracker) History(ctx context.Context, recommenderID string) ([]model.RecommenderMetricsHistory, error) {
	return t.store.FindHistory(ctx, recommenderID)
}
