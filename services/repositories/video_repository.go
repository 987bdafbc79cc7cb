package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lac-hong-legacy/footage_api/model"
	"gorm.io/gorm"
)

type VideoRepository struct {
	BaseRepository
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *VideoRepository) CreateVideo(ctx context.Context, video *model.Video) error {
	if video.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		video.ID = id.String()
	}
	video.CreatedAt = time.Now()
	video.UpdatedAt = time.Now()

	if err := ds.withContext(ctx).Create(video).Error; err != nil {
		return err
	}
	return nil
}

func (ds *VideoRepository) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	var video model.Video
	if err := ds.withContext(ctx).Where("id = ?", id).First(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (ds *VideoRepository) UpdateVideo(ctx context.Context, video *model.Video) error {
	video.UpdatedAt = time.Now()
	if err := ds.withContext(ctx).Save(video).Error; err != nil {
		return err
	}
	return nil
}

func (ds *VideoRepository) DeleteVideo(ctx context.Context, id string) error {
	if err := ds.withContext(ctx).Where("video_id = ?", id).Delete(&model.DownloadHistory{}).Error; err != nil {
		return err
	}

	if err := ds.withContext(ctx).Where("id = ?", id).Delete(&model.Video{}).Error; err != nil {
		return err
	}
	return nil
}

func (ds *VideoRepository) ListPublishedVideos(ctx context.Context, page, limit int) ([]model.Video, int64, error) {
	var total int64
	if err := ds.withContext(ctx).Model(&model.Video{}).Where("is_published = ?", true).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []model.Video
	if err := ds.withContext(ctx).
		Where("is_published = ?", true).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&videos).Error; err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

func (ds *VideoRepository) GetVideoStatistics(ctx context.Context) (map[string]interface{}, error) {
	var videoCount, publishedCount, totalSize, totalDownloads int64

	if err := ds.withContext(ctx).Model(&model.Video{}).Count(&videoCount).Error; err != nil {
		return nil, err
	}
	if err := ds.withContext(ctx).Model(&model.Video{}).Where("is_published = ?", true).Count(&publishedCount).Error; err != nil {
		return nil, err
	}
	if err := ds.withContext(ctx).Model(&model.Video{}).Select("COALESCE(SUM(file_size), 0)").Scan(&totalSize).Error; err != nil {
		return nil, err
	}
	if err := ds.withContext(ctx).Model(&model.Video{}).Select("COALESCE(SUM(download_count), 0)").Scan(&totalDownloads).Error; err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"total_videos":        videoCount,
		"published_videos":    publishedCount,
		"total_storage_bytes": totalSize,
		"total_storage_mb":    totalSize / (1024 * 1024),
		"total_downloads":     totalDownloads,
	}, nil
}
