package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/lac-hong-legacy/footage_api/model"
	"github.com/lac-hong-legacy/footage_api/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DownloadRepository backs quota enforcement: subscriptions, plan change
// history and the per-user download history.
type DownloadRepository struct {
	BaseRepository
}

func NewDownloadRepository(db *gorm.DB) *DownloadRepository {
	return &DownloadRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// ==================== SUBSCRIPTION METHODS ====================

func (ds *DownloadRepository) FindActiveSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := ds.withContext(ctx).
		Where("user_id = ? AND status = ?", userID, shared.SubscriptionStatusActive).
		Order("created_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (ds *DownloadRepository) SaveSubscription(ctx context.Context, sub *model.Subscription) error {
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = time.Now()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = sub.UpdatedAt
	}
	return ds.withContext(ctx).Save(sub).Error
}

func (ds *DownloadRepository) RecordPlanChange(ctx context.Context, change *model.PlanChange) error {
	return ds.withContext(ctx).Create(change).Error
}

func (ds *DownloadRepository) GetPlanChanges(ctx context.Context, userID string, limit int) ([]model.PlanChange, error) {
	var changes []model.PlanChange
	if err := ds.withContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}

// ==================== DOWNLOAD HISTORY METHODS ====================

func (ds *DownloadRepository) CountDownloads(ctx context.Context, userID string, since, until time.Time) (int64, error) {
	var count int64
	err := ds.withContext(ctx).Model(&model.DownloadHistory{}).
		Where("user_id = ? AND downloaded_at BETWEEN ? AND ?", userID, since, until).
		Count(&count).Error
	return count, err
}

func (ds *DownloadRepository) HasDownloaded(ctx context.Context, userID, videoID string) (bool, error) {
	var count int64
	err := ds.withContext(ctx).Model(&model.DownloadHistory{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Count(&count).Error
	return count > 0, err
}

// InsertDownloadRecord relies on idx_download_user_video: a conflicting row
// inserts nothing and reports false.
func (ds *DownloadRepository) InsertDownloadRecord(ctx context.Context, record *model.DownloadHistory) (bool, error) {
	result := ds.withContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (ds *DownloadRepository) GetDownloadHistory(ctx context.Context, userID string, since time.Time, limit int) ([]model.DownloadHistory, error) {
	var history []model.DownloadHistory
	if err := ds.withContext(ctx).
		Where("user_id = ? AND downloaded_at >= ?", userID, since).
		Order("downloaded_at DESC").
		Limit(limit).
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func (ds *DownloadRepository) IncrementAssetCounter(ctx context.Context, videoID string) error {
	result := ds.withContext(ctx).Model(&model.Video{}).
		Where("id = ?", videoID).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
