package model

import "time"

const (
	PositionStatusOpen   = "open"
	PositionStatusClosed = "closed"
)

// Position is a simulated or real holding spawned by exactly one
// recommendation. ClosedAt is set if and only if Status is closed; a closed
// position never reopens.
type Position struct {
	ID               string `gorm:"primaryKey;size:36" json:"id"`
	RecommendationID string `gorm:"size:36;not null;uniqueIndex" json:"recommendation_id"`
	RecommenderID    string `gorm:"size:36;not null;index" json:"recommender_id"`
	Chain            string `gorm:"size:50;not null" json:"chain"`
	Address          string `gorm:"size:100;not null;index" json:"address"`

	// Amount is held in the token's smallest denomination.
	Amount       float64 `json:"amount"`
	InitialPrice float64 `json:"initial_price"`
	CurrentPrice float64 `json:"current_price"`

	IsSimulation bool `json:"is_simulation"`

	Status   string     `gorm:"size:50;not null;default:open" json:"status"`
	OpenedAt time.Time  `json:"opened_at"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

func (p *Position) IsOpen() bool {
	return p.Status == PositionStatusOpen
}
