package model

import "time"

// RecommenderMetrics is the rolling reputation state for one recommender.
// Updated exactly once per resolved position; the previous value is captured
// in RecommenderMetricsHistory before being superseded.
type RecommenderMetrics struct {
	RecommenderID string `gorm:"primaryKey;size:36" json:"recommender_id"`
	Platform      string `gorm:"size:50" json:"platform"`

	TotalRecommendations int     `json:"total_recommendations"`
	SuccessfulRecs       int     `json:"successful_recs"`
	AvgTokenPerformance  float64 `json:"avg_token_performance"`
	ConsistencyScore     float64 `json:"consistency_score"`
	TrustScore           float64 `json:"trust_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RecommenderMetrics) TableName() string {
	return "recommender_metrics"
}

// RecommenderMetricsHistory is a point-in-time snapshot of a recommender's
// metrics. Only the newest entries are retained (see reputation.Tracker).
type RecommenderMetricsHistory struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	RecommenderID string `gorm:"size:36;not null;index" json:"recommender_id"`

	TotalRecommendations int     `json:"total_recommendations"`
	SuccessfulRecs       int     `json:"successful_recs"`
	AvgTokenPerformance  float64 `json:"avg_token_performance"`
	ConsistencyScore     float64 `json:"consistency_score"`
	TrustScore           float64 `json:"trust_score"`

	RecordedAt time.Time `gorm:"index" json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (RecommenderMetricsHistory) TableName() string {
	return "recommender_metrics_history"
}
