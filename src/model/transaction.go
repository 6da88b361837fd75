package model

import "time"

const (
	TransactionTypeBuy  = "BUY"
	TransactionTypeSell = "SELL"
)

// Transaction is an append-only ledger entry for a position. Rows are never
// updated or deleted once recorded.
type Transaction struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	PositionID string `gorm:"size:36;not null;index" json:"position_id"`

	Type   string  `gorm:"size:10;not null" json:"type"`
	Amount float64 `json:"amount"`
	Price  float64 `json:"price"`

	Timestamp time.Time `gorm:"index" json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
