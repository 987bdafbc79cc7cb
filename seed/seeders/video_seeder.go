package seeders

import (
	"context"

	"github.com/lac-hong-legacy/footage_api/model"
	"github.com/lac-hong-legacy/footage_api/services/repositories"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type VideoSeeder struct {
	db     *gorm.DB
	videos *repositories.VideoRepository
}

func NewVideoSeeder(db *gorm.DB) *VideoSeeder {
	return &VideoSeeder{db: db, videos: repositories.NewVideoRepository(db)}
}

// Catalogue rows only. The objects themselves are expected in the bucket
// under the same storage paths.
var seedVideos = []model.Video{
	{Title: "Aerial coastline at dawn", Description: "Drone pass over cliffs, 4K 30fps", FileName: "coastline_dawn.mp4", MimeType: "video/mp4", FileSize: 184_320_000, StoragePath: "videos/seed/coastline_dawn.mp4"},
	{Title: "City traffic timelapse", Description: "Night intersection, long exposure look", FileName: "traffic_timelapse.mp4", MimeType: "video/mp4", FileSize: 96_468_992, StoragePath: "videos/seed/traffic_timelapse.mp4"},
	{Title: "Rain on window", Description: "Macro, shallow depth of field", FileName: "rain_window.mov", MimeType: "video/quicktime", FileSize: 241_172_480, StoragePath: "videos/seed/rain_window.mov"},
	{Title: "Forest fog", Description: "Slow dolly through pines", FileName: "forest_fog.webm", MimeType: "video/webm", FileSize: 58_720_256, StoragePath: "videos/seed/forest_fog.webm"},
	{Title: "Office hands typing", Description: "Close-up, neutral grade", FileName: "typing.mp4", MimeType: "video/mp4", FileSize: 33_554_432, StoragePath: "videos/seed/typing.mp4"},
}

func (s *VideoSeeder) SeedVideos() error {
	ctx := context.Background()
	created := 0

	for _, v := range seedVideos {
		var count int64
		if err := s.db.Model(&model.Video{}).Where("storage_path = ?", v.StoragePath).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		video := v
		video.IsPublished = true
		video.UploadedBy = "seed"
		if err := s.videos.CreateVideo(ctx, &video); err != nil {
			return err
		}
		created++
	}

	log.WithField("created", created).Info("Seeded videos")
	return nil
}
