package services

import (
	"context"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/model"
	"github.com/lac-hong-legacy/footage_api/services/downloads"
	"github.com/lac-hong-legacy/footage_api/shared"
)

const (
	historyPageSize     = 100
	planChangesPageSize = 20
)

type downloadRepository interface {
	downloads.Store
	GetDownloadHistory(ctx context.Context, userID string, since time.Time, limit int) ([]model.DownloadHistory, error)
	GetPlanChanges(ctx context.Context, userID string, limit int) ([]model.PlanChange, error)
}

// DownloadService exposes quota checks and download recording to the HTTP
// layer and records outcome metrics.
type DownloadService struct {
	appContext.DefaultService

	repo     downloadRepository
	quota    *downloads.QuotaService
	recorder *downloads.Recorder
}

const DOWNLOAD_SVC = "download_svc"

func (svc DownloadService) Id() string {
	return DOWNLOAD_SVC
}

func (svc *DownloadService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *DownloadService) Start() error {
	store := svc.Service(DATABASE_SVC).(*DatabaseService).Downloads()
	assets := svc.Service(VIDEO_SVC).(*VideoService)
	events := svc.Service(AUDIT_SVC).(*AuditService)

	svc.wire(store, assets, events, shared.RealClock{})
	return nil
}

func (svc *DownloadService) wire(store downloadRepository, assets downloads.AssetResolver, events downloads.EventRecorder, clock shared.Clock) {
	svc.repo = store
	svc.quota = downloads.NewQuotaService(store, events, clock)
	svc.recorder = downloads.NewRecorder(svc.quota, store, assets, events, clock)
}

func (svc *DownloadService) GetUsage(ctx context.Context, userID string) (*dto.DownloadUsage, error) {
	usage, err := svc.quota.GetUsage(ctx, userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Unable to load download usage")
	}
	return usage, nil
}

func (svc *DownloadService) CheckPermission(ctx context.Context, userID, videoID string) dto.DownloadPermission {
	return svc.quota.CheckDownloadPermission(ctx, userID, videoID)
}

func (svc *DownloadService) Download(ctx context.Context, userID, videoID string) dto.DownloadResult {
	result := svc.recorder.Execute(ctx, userID, videoID)
	recordDownloadOutcome(result)
	return result
}

func (svc *DownloadService) ChangePlan(ctx context.Context, userID, planID string) (*dto.PlanChangeResult, error) {
	result, err := svc.quota.ChangePlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	recordPlanChange(result)
	return result, nil
}

// GetHistory lists the downloads counted against the current cycle.
func (svc *DownloadService) GetHistory(ctx context.Context, userID string) (*dto.DownloadHistoryResponse, error) {
	usage, err := svc.GetUsage(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := svc.repo.GetDownloadHistory(ctx, userID, usage.CycleStart, historyPageSize)
	if err != nil {
		return nil, shared.NewInternalError(err, "Unable to load download history")
	}

	resp := &dto.DownloadHistoryResponse{
		Usage:     usage,
		Downloads: make([]dto.DownloadHistoryItem, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Downloads = append(resp.Downloads, dto.DownloadHistoryItem{
			VideoID:      row.VideoID,
			DownloadedAt: row.DownloadedAt,
		})
	}
	return resp, nil
}

func (svc *DownloadService) GetPlanChanges(ctx context.Context, userID string) ([]dto.PlanChangeRecord, error) {
	rows, err := svc.repo.GetPlanChanges(ctx, userID, planChangesPageSize)
	if err != nil {
		return nil, shared.NewInternalError(err, "Unable to load plan changes")
	}

	changes := make([]dto.PlanChangeRecord, 0, len(rows))
	for _, row := range rows {
		changes = append(changes, dto.PlanChangeRecord{
			FromPlanID:    row.FromPlanID,
			ToPlanID:      row.ToPlanID,
			EffectiveDate: row.EffectiveDate,
			EffectiveAt:   row.EffectiveAt,
			RequestedAt:   row.CreatedAt,
		})
	}
	return changes, nil
}
