package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lac-hong-legacy/footage_api/model"
	"gorm.io/gorm"
)

type AuditRepository struct {
	BaseRepository
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *AuditRepository) CreateAuditLog(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		entry.ID = id.String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return ds.withContext(ctx).Create(entry).Error
}

func (ds *AuditRepository) GetUserAuditLogs(ctx context.Context, userID string, limit int) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	if err := ds.withContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (ds *AuditRepository) CleanupOldAuditLogs(ctx context.Context, before time.Time) (int64, error) {
	result := ds.withContext(ctx).Where("created_at < ?", before).Delete(&model.AuditLog{})
	return result.RowsAffected, result.Error
}
