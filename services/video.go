package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/model"
	"github.com/lac-hong-legacy/footage_api/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultDownloadURLExpiry = 15 * time.Minute
	maxVideoUploadSize       = 2 << 30
	sniffHeaderSize          = 262
)

var allowedVideoMIME = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/webm":       true,
	"video/x-matroska": true,
	"video/x-msvideo":  true,
}

type objectStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error
	GetFileURL(ctx context.Context, objectName, downloadName string, expiry time.Duration) (string, error)
	DeleteFile(ctx context.Context, objectName string) error
}

type videoStore interface {
	CreateVideo(ctx context.Context, video *model.Video) error
	GetVideo(ctx context.Context, id string) (*model.Video, error)
	ListPublishedVideos(ctx context.Context, page, limit int) ([]model.Video, int64, error)
	DeleteVideo(ctx context.Context, id string) error
	GetVideoStatistics(ctx context.Context) (map[string]interface{}, error)
}

type VideoService struct {
	appContext.DefaultService

	storage   objectStorage
	videos    videoStore
	urlExpiry time.Duration
}

const VIDEO_SVC = "video_svc"

func (svc VideoService) Id() string {
	return VIDEO_SVC
}

func (svc *VideoService) Configure(ctx *appContext.Context) error {
	svc.urlExpiry = defaultDownloadURLExpiry
	if v := os.Getenv("DOWNLOAD_URL_EXPIRY"); v != "" {
		expiry, err := time.ParseDuration(v)
		if err != nil || expiry <= 0 {
			return fmt.Errorf("invalid DOWNLOAD_URL_EXPIRY %q", v)
		}
		svc.urlExpiry = expiry
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *VideoService) Start() error {
	svc.storage = svc.Service(MINIO_SVC).(*MinIOService)
	svc.videos = svc.Service(DATABASE_SVC).(*DatabaseService).Videos()
	return nil
}

// ==================== UPLOAD METHODS ====================

func (svc *VideoService) UploadVideo(ctx context.Context, uploaderID string, req dto.VideoUploadRequest, file *multipart.FileHeader) (*dto.VideoUploadResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid upload request")
	}

	if file.Size <= 0 {
		return nil, shared.NewBadRequestError(nil, "Uploaded file is empty")
	}
	if file.Size > maxVideoUploadSize {
		return nil, shared.NewBadRequestError(nil, "Video file too large. Maximum size: 2GB")
	}

	src, err := file.Open()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to open uploaded file")
	}
	defer src.Close()

	mimeType, err := sniffVideoType(src)
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, shared.NewInternalError(err, "Failed to read uploaded file")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate video ID")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	objectName := fmt.Sprintf("videos/%s%s", id.String(), ext)

	if err := svc.storage.UploadFile(ctx, objectName, src, file.Size, mimeType); err != nil {
		return nil, shared.NewInternalError(err, "Failed to upload file to storage")
	}

	video := &model.Video{
		ID:          id.String(),
		Title:       req.Title,
		Description: req.Description,
		FileName:    filepath.Base(file.Filename),
		MimeType:    mimeType,
		FileSize:    file.Size,
		StoragePath: objectName,
		IsPublished: true,
		UploadedBy:  uploaderID,
	}

	if err := svc.videos.CreateVideo(ctx, video); err != nil {
		// Clean up file if database save fails
		if delErr := svc.storage.DeleteFile(ctx, objectName); delErr != nil {
			log.WithError(delErr).WithField("object", objectName).Warn("Failed to remove orphaned upload")
		}
		return nil, shared.NewInternalError(err, "Failed to save video")
	}

	log.WithFields(log.Fields{
		"video_id": video.ID,
		"object":   objectName,
		"size":     video.FileSize,
	}).Info("Video uploaded")

	return &dto.VideoUploadResponse{
		ID:       video.ID,
		Title:    video.Title,
		FileName: video.FileName,
		MimeType: video.MimeType,
		FileSize: video.FileSize,
	}, nil
}

// sniffVideoType checks magic bytes rather than trusting the file name or
// the client's Content-Type.
func sniffVideoType(r io.Reader) (string, error) {
	head := make([]byte, sniffHeaderSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", shared.NewInternalError(err, "Failed to read uploaded file")
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown || !allowedVideoMIME[kind.MIME.Value] {
		return "", shared.NewBadRequestError(err, "Unsupported video format. Supported: MP4, MOV, WEBM, MKV, AVI")
	}
	return kind.MIME.Value, nil
}

// ==================== RETRIEVAL METHODS ====================

func (svc *VideoService) GetVideo(ctx context.Context, id string) (*dto.VideoResponse, error) {
	video, err := svc.videos.GetVideo(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFoundError(err, "Video not found")
	}
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load video")
	}
	resp := toVideoResponse(*video)
	return &resp, nil
}

func (svc *VideoService) ListVideos(ctx context.Context, page, limit int) (*dto.VideoListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	videos, total, err := svc.videos.ListPublishedVideos(ctx, page, limit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to list videos")
	}

	resp := &dto.VideoListResponse{
		Videos: make([]dto.VideoResponse, 0, len(videos)),
		Page:   page,
		Limit:  limit,
		Total:  total,
	}
	for _, v := range videos {
		resp.Videos = append(resp.Videos, toVideoResponse(v))
	}
	return resp, nil
}

func toVideoResponse(v model.Video) dto.VideoResponse {
	return dto.VideoResponse{
		ID:            v.ID,
		Title:         v.Title,
		Description:   v.Description,
		FileSize:      v.FileSize,
		DownloadCount: v.DownloadCount,
		CreatedAt:     v.CreatedAt,
	}
}

// ResolveAssetDownloadURL presigns a short-lived download link. Unknown and
// unpublished videos resolve to "".
func (svc *VideoService) ResolveAssetDownloadURL(ctx context.Context, videoID string) (string, error) {
	video, err := svc.videos.GetVideo(ctx, videoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !video.IsPublished {
		return "", nil
	}

	return svc.storage.GetFileURL(ctx, video.StoragePath, video.FileName, svc.urlExpiry)
}

func (svc *VideoService) GetStatistics(ctx context.Context) (map[string]interface{}, error) {
	stats, err := svc.videos.GetVideoStatistics(ctx)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load video statistics")
	}
	return stats, nil
}

// ==================== CLEANUP METHODS ====================

func (svc *VideoService) DeleteVideo(ctx context.Context, videoID string) error {
	video, err := svc.videos.GetVideo(ctx, videoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(err, "Video not found")
	}
	if err != nil {
		return shared.NewInternalError(err, "Failed to load video")
	}

	if err := svc.storage.DeleteFile(ctx, video.StoragePath); err != nil {
		log.WithError(err).WithField("object", video.StoragePath).Warn("Failed to delete file from storage")
	}

	if err := svc.videos.DeleteVideo(ctx, videoID); err != nil {
		return shared.NewInternalError(err, "Failed to delete video")
	}
	return nil
}
