package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"trustengine/src/database"
	"trustengine/src/model"
)

type RecommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository() *RecommendationRepository {
	return &RecommendationRepository{db: database.MainDB}
}

func (r *RecommendationRepository) WithDB(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

func (r *RecommendationRepository) Create(ctx context.Context, rec *model.TokenRecommendation) error {
	logger.WithFields(logger.Fields{
		"repo":           "RecommendationRepository",
		"op":             "Create",
		"recommender_id": rec.RecommenderID,
		"chain":          rec.Chain,
		"address":        rec.Address,
		"type":           rec.Type,
		"conviction":     rec.Conviction,
	}).Debug("Recording recommendation")

	err := r.db.WithContext(ctx).Create(rec).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "RecommendationRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to record recommendation")
		return err
	}
	return nil
}

// FindByID returns (nil, nil) when the recommendation does not exist.
func (r *RecommendationRepository) FindByID(ctx context.Context, id string) (*model.TokenRecommendation, error) {
	var rec model.TokenRecommendation

	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *RecommendationRepository) FindByRecommender(ctx context.Context, recommenderID string) ([]model.TokenRecommendation, error) {
	var recs []model.TokenRecommendation

	err := r.db.WithContext(ctx).
		Where("recommender_id = ?", recommenderID).
		Order("recommended_at DESC").
		Find(&recs).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":           "RecommendationRepository",
			"op":             "FindByRecommender",
			"recommender_id": recommenderID,
		}).WithError(err).Error("Failed to list recommendations")
		return nil, err
	}
	return recs, nil
}

// UpdateSnapshot refreshes the current market snapshot on a recommendation.
func (r *RecommendationRepository) UpdateSnapshot(ctx context.Context, id string, price, marketCap, liquidity float64) error {
	err := r.db.WithContext(ctx).
		Model(&model.TokenRecommendation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_price":      price,
			"current_market_cap": marketCap,
			"current_liquidity":  liquidity,
		}).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":              "RecommendationRepository",
			"op":                "UpdateSnapshot",
			"recommendation_id": id,
		}).WithError(err).Error("Failed to update recommendation snapshot")
	}
	return err
}
