package handlers

import (
	"context"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/shared"
)

type DownloadServiceInterface interface {
	GetUsage(ctx context.Context, userID string) (*dto.DownloadUsage, error)
	CheckPermission(ctx context.Context, userID, videoID string) dto.DownloadPermission
	Download(ctx context.Context, userID, videoID string) dto.DownloadResult
	ChangePlan(ctx context.Context, userID, planID string) (*dto.PlanChangeResult, error)
	GetHistory(ctx context.Context, userID string) (*dto.DownloadHistoryResponse, error)
	GetPlanChanges(ctx context.Context, userID string) ([]dto.PlanChangeRecord, error)
}

type VideoServiceInterface interface {
	UploadVideo(ctx context.Context, uploaderID string, req dto.VideoUploadRequest, file *multipart.FileHeader) (*dto.VideoUploadResponse, error)
	GetVideo(ctx context.Context, id string) (*dto.VideoResponse, error)
	ListVideos(ctx context.Context, page, limit int) (*dto.VideoListResponse, error)
	DeleteVideo(ctx context.Context, videoID string) error
	GetStatistics(ctx context.Context) (map[string]interface{}, error)
}

type RateLimitServiceInterface interface {
	Stats() dto.RateLimitStatsResponse
	ResetRateLimit(ctx context.Context, surface, identifier string) error
	UnblockIdentifier(ctx context.Context, surface, identifier string) error
}

func userIDFrom(c *fiber.Ctx) (string, error) {
	userID, _ := c.Locals(shared.UserID).(string)
	if userID == "" {
		return "", shared.NewUnauthorizedError(nil, "Unauthorized")
	}
	return userID, nil
}

func videoIDParam(c *fiber.Ctx) (string, error) {
	videoID := c.Params("videoId")
	if err := dto.ValidateID(videoID); err != nil {
		return "", shared.NewBadRequestError(err, "Invalid video ID")
	}
	return videoID, nil
}
