package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trustengine/src/database"
	"trustengine/src/model"
)

// TokenRepository persists token performance snapshots. Rows are upserted on
// (chain, address); history is not kept, the latest snapshot supersedes.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance, for tests or a
// specific session/transaction.
func (r *TokenRepository) WithDB(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Upsert(ctx context.Context, token *model.TokenPerformance) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chain"}, {Name: "address"}},
			UpdateAll: true,
		}).
		Create(token).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":    "TokenRepository",
			"op":      "Upsert",
			"chain":   token.Chain,
			"address": token.Address,
		}).WithError(err).Error("Failed to upsert token performance")
		return err
	}
	return nil
}

// FindByChainAddress returns (nil, nil) when the token has never been seen.
func (r *TokenRepository) FindByChainAddress(ctx context.Context, chain, address string) (*model.TokenPerformance, error) {
	var token model.TokenPerformance

	err := r.db.WithContext(ctx).
		Where("chain = ? AND address = ?", chain, address).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(logger.Fields{
			"repo":    "TokenRepository",
			"op":      "FindByChainAddress",
			"chain":   chain,
			"address": address,
		}).WithError(err).Error("Failed to fetch token performance")
		return nil, err
	}
	return &token, nil
}

// FindByChainAddresses fetches snapshots for a batch of (chain, address)
// pairs on the same chain. Missing tokens are simply absent from the result.
func (r *TokenRepository) FindByChainAddresses(ctx context.Context, chain string, addresses []string) ([]model.TokenPerformance, error) {
	if len(addresses) == 0 {
		return nil, nil
	}

	var tokens []model.TokenPerformance
	err := r.db.WithContext(ctx).
		Where("chain = ? AND address IN ?", chain, addresses).
		Find(&tokens).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":  "TokenRepository",
			"op":    "FindByChainAddresses",
			"chain": chain,
		}).WithError(err).Error("Failed to fetch token performances")
		return nil, err
	}
	return tokens, nil
}
