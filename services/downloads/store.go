package downloads

import (
	"context"
	"time"

	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/model"
)

// Store is the durable side of quota enforcement.
type Store interface {
	// FindActiveSubscription returns nil, nil when the user has none.
	FindActiveSubscription(ctx context.Context, userID string) (*model.Subscription, error)
	SaveSubscription(ctx context.Context, sub *model.Subscription) error
	RecordPlanChange(ctx context.Context, change *model.PlanChange) error

	// CountDownloads counts history rows with since <= downloaded_at <= until.
	CountDownloads(ctx context.Context, userID string, since, until time.Time) (int64, error)
	HasDownloaded(ctx context.Context, userID, videoID string) (bool, error)

	// InsertDownloadRecord must be a single atomic insert-or-detect-conflict.
	// A duplicate (user, video) pair returns false and no error.
	InsertDownloadRecord(ctx context.Context, record *model.DownloadHistory) (bool, error)

	IncrementAssetCounter(ctx context.Context, videoID string) error
}

type AssetResolver interface {
	// ResolveAssetDownloadURL returns "" and no error when the video does not exist.
	ResolveAssetDownloadURL(ctx context.Context, videoID string) (string, error)
}

type EventRecorder interface {
	RecordEvent(ctx context.Context, event dto.AuditEvent)
}

type nopEventRecorder struct{}

func (nopEventRecorder) RecordEvent(context.Context, dto.AuditEvent) {}
