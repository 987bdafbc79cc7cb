package downloads

import (
	"context"

	"github.com/google/uuid"
	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/model"
	"github.com/lac-hong-legacy/footage_api/shared"
	log "github.com/sirupsen/logrus"
)

const (
	MsgVideoNotFound       = "Video not found"
	msgDownloadUnavailable = "Unable to complete the download right now. Please try again later."
)

// Recorder turns an approved download into exactly one history row per
// (user, video). Duplicate detection relies on the store's unique constraint.
type Recorder struct {
	quota  *QuotaService
	store  Store
	assets AssetResolver
	events EventRecorder
	clock  shared.Clock
}

func NewRecorder(quota *QuotaService, store Store, assets AssetResolver, events EventRecorder, clock shared.Clock) *Recorder {
	if events == nil {
		events = nopEventRecorder{}
	}
	if clock == nil {
		clock = shared.RealClock{}
	}
	return &Recorder{quota: quota, store: store, assets: assets, events: events, clock: clock}
}

func (r *Recorder) Execute(ctx context.Context, userID, videoID string) dto.DownloadResult {
	permission := r.quota.CheckDownloadPermission(ctx, userID, videoID)
	if !permission.Allowed {
		r.events.RecordEvent(ctx, dto.AuditEvent{
			UserID: userID,
			Event:  shared.EventDownloadDenied,
			Details: map[string]interface{}{
				"video_id": videoID,
				"reason":   permission.Reason,
			},
			Timestamp: r.clock.Now(),
		})
		return dto.DownloadResult{Success: false, Error: permission.Reason, Usage: permission.Usage}
	}

	url, err := r.assets.ResolveAssetDownloadURL(ctx, videoID)
	if err != nil {
		log.WithError(err).WithField("video_id", videoID).Error("Failed to resolve download URL")
		return dto.DownloadResult{Success: false, Error: msgDownloadUnavailable, Usage: permission.Usage}
	}
	if url == "" {
		return dto.DownloadResult{Success: false, Error: MsgVideoNotFound, Usage: permission.Usage}
	}

	now := r.clock.Now()
	id, err := uuid.NewV7()
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"user_id": userID, "video_id": videoID}).Error("Failed to generate download ID")
		return dto.DownloadResult{Success: false, Error: msgDownloadUnavailable, Usage: permission.Usage}
	}
	inserted, err := r.store.InsertDownloadRecord(ctx, &model.DownloadHistory{
		ID:           id.String(),
		UserID:       userID,
		VideoID:      videoID,
		DownloadedAt: now,
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"user_id": userID, "video_id": videoID}).Error("Failed to record download")
		return dto.DownloadResult{Success: false, Error: msgDownloadUnavailable, Usage: permission.Usage}
	}

	if inserted {
		if err := r.store.IncrementAssetCounter(ctx, videoID); err != nil {
			log.WithError(err).WithField("video_id", videoID).Warn("Failed to increment download counter")
			r.events.RecordEvent(ctx, dto.AuditEvent{
				UserID:    userID,
				Event:     shared.EventCounterIncrFailed,
				Details:   map[string]interface{}{"video_id": videoID, "error": err.Error()},
				Timestamp: now,
			})
		}
		r.events.RecordEvent(ctx, dto.AuditEvent{
			UserID:    userID,
			Event:     shared.EventDownloadRecorded,
			Details:   map[string]interface{}{"video_id": videoID},
			Timestamp: now,
		})
	}

	result := dto.DownloadResult{
		Success:           true,
		DownloadURL:       url,
		AlreadyDownloaded: !inserted,
	}

	usage, err := r.quota.GetUsage(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to refresh usage after download")
		result.Usage = permission.Usage
		return result
	}
	result.Usage = usage
	return result
}
