package model

import "time"

// TokenPerformance is the latest known market snapshot for a (chain, address)
// pair. It is refreshed from the market data gateway on demand and overwritten
// in place; rows are never deleted, only superseded.
type TokenPerformance struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	Chain   string `gorm:"size:50;not null;uniqueIndex:idx_token_chain_address" json:"chain"`
	Address string `gorm:"size:100;not null;uniqueIndex:idx_token_chain_address" json:"address"`

	Symbol   string `gorm:"size:50" json:"symbol"`
	Name     string `gorm:"size:255" json:"name"`
	Decimals int    `json:"decimals"`

	Price           float64 `json:"price"`
	Liquidity       float64 `json:"liquidity"`
	MarketCap       float64 `json:"market_cap"`
	Volume24h       float64 `json:"volume_24h"`
	PriceChange24h  float64 `json:"price_change_24h"`
	VolumeChange24h float64 `json:"volume_change_24h"`
	Holders         int     `json:"holders"`

	IsScam           bool `json:"is_scam"`
	RugPull          bool `json:"rug_pull"`
	RapidDump        bool `json:"rapid_dump"`
	SuspiciousVolume bool `json:"suspicious_volume"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TokenPerformance) TableName() string {
	return "token_performances"
}

// Flagged reports whether any fraud flag is set on the token.
func (t *TokenPerformance) Flagged() bool {
	return t.IsScam || t.RugPull || t.RapidDump || t.SuspiciousVolume
}
