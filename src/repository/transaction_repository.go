package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"trustengine/src/database"
	"trustengine/src/model"
)

// TransactionRepository is an append-only ledger. There are deliberately no
// update or delete methods.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{db: database.MainDB}
}

func (r *TransactionRepository) WithDB(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	logger.WithFields(logger.Fields{
		"repo":        "TransactionRepository",
		"op":          "Create",
		"position_id": tx.PositionID,
		"type":        tx.Type,
		"amount":      tx.Amount,
		"price":       tx.Price,
	}).Debug("Recording transaction")

	err := r.db.WithContext(ctx).Create(tx).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "TransactionRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to record transaction")
		return err
	}
	return nil
}

func (r *TransactionRepository) FindByPosition(ctx context.Context, positionID string) ([]model.Transaction, error) {
	var txs []model.Transaction

	err := r.db.WithContext(ctx).
		Where("position_id = ?", positionID).
		Order("timestamp ASC").
		Find(&txs).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":        "TransactionRepository",
			"op":          "FindByPosition",
			"position_id": positionID,
		}).WithError(err).Error("Failed to list transactions")
		return nil, err
	}
	return txs, nil
}

func (r *TransactionRepository) FindByPositions(ctx context.Context, positionIDs []string) ([]model.Transaction, error) {
	if len(positionIDs) == 0 {
		return nil, nil
	}

	var txs []model.Transaction
	err := r.db.WithContext(ctx).
		Where("position_id IN ?", positionIDs).
		Order("timestamp ASC").
		Find(&txs).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "TransactionRepository",
			"op":   "FindByPositions",
		}).WithError(err).Error("Failed to list transactions")
		return nil, err
	}
	return txs, nil
}
