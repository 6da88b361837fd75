package model

import "time"

type Conviction string

const (
	ConvictionLow    Conviction = "LOW"
	ConvictionMedium Conviction = "MEDIUM"
	ConvictionHigh   Conviction = "HIGH"
)

type RecommendationType string

const (
	RecommendationTypeBuy  RecommendationType = "BUY"
	RecommendationTypeSell RecommendationType = "SELL"
	RecommendationTypeHold RecommendationType = "HOLD"
)

const (
	RecommendationStatusActive = "ACTIVE"
)

// TokenRecommendation is a single buy/sell call made by a recommender at a
// point in time. Immutable after creation except for status and the current
// market snapshot, which is refreshed alongside the token.
type TokenRecommendation struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	RecommenderID string `gorm:"size:36;not null;index" json:"recommender_id"`
	Chain         string `gorm:"size:50;not null" json:"chain"`
	Address       string `gorm:"size:100;not null;index" json:"address"`

	Type       RecommendationType `gorm:"size:20;not null" json:"type"`
	Conviction Conviction         `gorm:"size:20;not null" json:"conviction"`
	RiskScore  int                `json:"risk_score"`

	InitialPrice     float64 `json:"initial_price"`
	InitialMarketCap float64 `json:"initial_market_cap"`
	InitialLiquidity float64 `json:"initial_liquidity"`
	CurrentPrice     float64 `json:"current_price"`
	CurrentMarketCap float64 `json:"current_market_cap"`
	CurrentLiquidity float64 `json:"current_liquidity"`

	Status string `gorm:"size:20;not null;default:ACTIVE" json:"status"`

	RecommendedAt time.Time `json:"recommended_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (TokenRecommendation) TableName() string {
	return "token_recommendations"
}
