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

// MetricsRepository stores per-recommender reputation state plus an
// append-only snapshot history bounded by the caller.
type MetricsRepository struct {
	db *gorm.DB
}

func NewMetricsRepository() *MetricsRepository {
	return &MetricsRepository{db: database.MainDB}
}

func (r *MetricsRepository) WithDB(db *gorm.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// Find returns (nil, nil) when no metrics exist for the recommender yet.
func (r *MetricsRepository) Find(ctx context.Context, recommenderID string) (*model.RecommenderMetrics, error) {
	var metrics model.RecommenderMetrics

	err := r.db.WithContext(ctx).First(&metrics, "recommender_id = ?", recommenderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(logger.Fields{
			"repo":           "MetricsRepository",
			"op":             "Find",
			"recommender_id": recommenderID,
		}).WithError(err).Error("Failed to fetch recommender metrics")
		return nil, err
	}
	return &metrics, nil
}

// Save upserts the metrics row; the previous value is superseded, not versioned.
func (r *MetricsRepository) Save(ctx context.Context, metrics *model.RecommenderMetrics) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recommender_id"}},
			UpdateAll: true,
		}).
		Create(metrics).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":           "MetricsRepository",
			"op":             "Save",
			"recommender_id": metrics.RecommenderID,
		}).WithError(err).Error("Failed to save recommender metrics")
		return err
	}
	return nil
}

func (r *MetricsRepository) AppendHistory(ctx context.Context, snapshot *model.RecommenderMetricsHistory) error {
	err := r.db.WithContext(ctx).Create(snapshot).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":           "MetricsRepository",
			"op":             "AppendHistory",
			"recommender_id": snapshot.RecommenderID,
		}).WithError(err).Error("Failed to append metrics history")
		return err
	}
	return nil
}

// FindHistory returns snapshots newest first.
func (r *MetricsRepository) FindHistory(ctx context.Context, recommenderID string) ([]model.RecommenderMetricsHistory, error) {
	var history []model.RecommenderMetricsHistory

	err := r.db.WithContext(ctx).
		Where("recommender_id = ?", recommenderID).
		Order("recorded_at DESC").
		Find(&history).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":           "MetricsRepository",
			"op":             "FindHistory",
			"recommender_id": recommenderID,
		}).WithError(err).Error("Failed to list metrics history")
		return nil, err
	}
	return history, nil
}

// TrimHistory drops all but the newest keep snapshots for a recommender.
func (r *MetricsRepository) TrimHistory(ctx context.Context, recommenderID string, keep int) error {
	if keep <= 0 {
		keep = 1
	}

	history, err := r.FindHistory(ctx, recommenderID)
	if err != nil {
		return err
	}
	if len(history) <= keep {
		return nil
	}

	staleIDs := make([]string, 0, len(history)-keep)
	for _, snapshot := range history[keep:] {
		staleIDs = append(staleIDs, snapshot.ID)
	}

	err = r.db.WithContext(ctx).
		Where("id IN ?", staleIDs).
		Delete(&model.RecommenderMetricsHistory{}).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":           "MetricsRepository",
			"op":             "TrimHistory",
			"recommender_id": recommenderID,
		}).WithError(err).Error("Failed to trim metrics history")
		return err
	}
	return nil
}
