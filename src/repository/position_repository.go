package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"trustengine/src/database"
	"trustengine/src/model"
)

// PositionRepository handles the position lifecycle. Closing is a conditional
// update keyed on the open status, so two concurrent close attempts cannot
// both succeed.
type PositionRepository struct {
	db *gorm.DB
}

func NewPositionRepository() *PositionRepository {
	return &PositionRepository{db: database.MainDB}
}

func (r *PositionRepository) WithDB(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

func (r *PositionRepository) Create(ctx context.Context, position *model.Position) error {
	logger.WithFields(logger.Fields{
		"repo":        "PositionRepository",
		"op":          "Create",
		"position_id": position.ID,
		"chain":       position.Chain,
		"address":     position.Address,
		"amount":      position.Amount,
	}).Debug("Creating position")

	err := r.db.WithContext(ctx).Create(position).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "PositionRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create position")
		return err
	}
	return nil
}

// FindByID returns (nil, nil) when the position does not exist.
func (r *PositionRepository) FindByID(ctx context.Context, id string) (*model.Position, error) {
	var position model.Position

	err := r.db.WithContext(ctx).First(&position, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(logger.Fields{
			"repo":        "PositionRepository",
			"op":          "FindByID",
			"position_id": id,
		}).WithError(err).Error("Failed to fetch position")
		return nil, err
	}
	return &position, nil
}

// FindOpen lists open positions, optionally filtered by recommender.
func (r *PositionRepository) FindOpen(ctx context.Context, recommenderID string) ([]model.Position, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", model.PositionStatusOpen).
		Order("opened_at DESC")
	if recommenderID != "" {
		query = query.Where("recommender_id = ?", recommenderID)
	}

	var positions []model.Position
	if err := query.Find(&positions).Error; err != nil {
		logger.WithFields(logger.Fields{
			"repo":           "PositionRepository",
			"op":             "FindOpen",
			"recommender_id": recommenderID,
		}).WithError(err).Error("Failed to list open positions")
		return nil, err
	}
	return positions, nil
}

// Close transitions an open position to closed, recording the exit price and
// close time. Returns false when the position was missing or already closed;
// the caller must treat that as "nothing happened".
func (r *PositionRepository) Close(ctx context.Context, id string, currentPrice float64, closedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("id = ? AND status = ?", id, model.PositionStatusOpen).
		Updates(map[string]interface{}{
			"status":        model.PositionStatusClosed,
			"current_price": currentPrice,
			"closed_at":     closedAt,
			"updated_at":    closedAt,
		})
	if result.Error != nil {
		logger.WithFields(logger.Fields{
			"repo":        "PositionRepository",
			"op":          "Close",
			"position_id": id,
		}).WithError(result.Error).Error("Failed to close position")
		return false, result.Error
	}

	closed := result.RowsAffected > 0
	if !closed {
		logger.WithFields(logger.Fields{
			"repo":        "PositionRepository",
			"op":          "Close",
			"position_id": id,
		}).Warn("Position missing or already closed")
	}
	return closed, nil
}

// UpdateCurrentPrice refreshes the mark price on an open position without
// touching its lifecycle state.
func (r *PositionRepository) UpdateCurrentPrice(ctx context.Context, id string, currentPrice float64) error {
	err := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("id = ? AND status = ?", id, model.PositionStatusOpen).
		Update("current_price", currentPrice).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":        "PositionRepository",
			"op":          "UpdateCurrentPrice",
			"position_id": id,
		}).WithError(err).Error("Failed to update position price")
	}
	return err
}
