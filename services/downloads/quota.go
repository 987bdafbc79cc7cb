package downloads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/model"
	"github.com/lac-hong-legacy/footage_api/shared"
	log "github.com/sirupsen/logrus"
)

const (
	msgQuotaUnavailable = "Unable to verify your download quota right now. Please try again later."
	resetDateLayout     = "January 2, 2006"
)

var warningBands = []struct {
	percent int
	level   string
}{
	{100, shared.WarningExceeded},
	{90, shared.WarningHigh},
	{70, shared.WarningMedium},
	{50, shared.WarningLow},
}

// WarningLevelFor maps usage against the limit onto the UI warning bands.
// Bands are inclusive at their lower bound.
func WarningLevelFor(currentUsage, monthlyLimit int) string {
	if monthlyLimit <= 0 {
		return shared.WarningExceeded
	}
	for _, band := range warningBands {
		if currentUsage*100 >= monthlyLimit*band.percent {
			return band.level
		}
	}
	return shared.WarningNone
}

type QuotaService struct {
	store  Store
	events EventRecorder
	clock  shared.Clock
}

func NewQuotaService(store Store, events EventRecorder, clock shared.Clock) *QuotaService {
	if events == nil {
		events = nopEventRecorder{}
	}
	if clock == nil {
		clock = shared.RealClock{}
	}
	return &QuotaService{store: store, events: events, clock: clock}
}

// GetPlan resolves the plan in force for userID. Users without an active
// subscription get the free plan on calendar-month cycles.
func (s *QuotaService) GetPlan(ctx context.Context, userID string) (*model.SubscriptionPlan, error) {
	sub, err := s.store.FindActiveSubscription(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find subscription for %s: %w", userID, err)
	}
	return effectivePlan(sub, s.clock.Now()), nil
}

func effectivePlan(sub *model.Subscription, now time.Time) *model.SubscriptionPlan {
	if sub == nil {
		free := LookupPlan(shared.PlanFree)
		return &model.SubscriptionPlan{
			PlanID:               free.ID,
			Rank:                 free.Rank,
			MonthlyDownloadLimit: free.MonthlyDownloadLimit,
			CycleAnchorDay:       1,
			IsDefault:            true,
		}
	}

	planID := sub.PlanID
	if pendingEffective(sub, now) {
		planID = *sub.PendingPlanID
	}

	anchor := sub.CycleAnchorDay
	if anchor == 0 {
		anchor = sub.CreatedAt.Day()
	}

	plan := LookupPlan(planID)
	return &model.SubscriptionPlan{
		PlanID:               plan.ID,
		Rank:                 plan.Rank,
		MonthlyDownloadLimit: plan.MonthlyDownloadLimit,
		CycleAnchorDay:       anchor,
	}
}

func pendingEffective(sub *model.Subscription, now time.Time) bool {
	return sub.PendingPlanID != nil && sub.PendingFrom != nil && !now.Before(*sub.PendingFrom)
}

func (s *QuotaService) GetUsage(ctx context.Context, userID string) (*dto.DownloadUsage, error) {
	sub, err := s.store.FindActiveSubscription(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find subscription for %s: %w", userID, err)
	}

	now := s.clock.Now()
	return s.usageFor(ctx, userID, sub, now)
}

func (s *QuotaService) usageFor(ctx context.Context, userID string, sub *model.Subscription, now time.Time) (*dto.DownloadUsage, error) {
	plan := effectivePlan(sub, now)
	cycleStart, nextReset := CycleBounds(plan.CycleAnchorDay, now)

	count, err := s.store.CountDownloads(ctx, userID, cycleStart, now)
	if err != nil {
		return nil, fmt.Errorf("count downloads for %s: %w", userID, err)
	}

	current := int(count)
	remaining := plan.MonthlyDownloadLimit - current
	if remaining < 0 {
		remaining = 0
	}
	exceeded := current >= plan.MonthlyDownloadLimit

	usage := &dto.DownloadUsage{
		UserID:          userID,
		PlanID:          plan.PlanID,
		MonthlyLimit:    plan.MonthlyDownloadLimit,
		CurrentUsage:    current,
		Remaining:       remaining,
		CycleStart:      cycleStart,
		NextResetDate:   nextReset,
		IsLimitExceeded: exceeded,
		CanDownload:     !exceeded,
	}
	if sub != nil && sub.PendingPlanID != nil && !pendingEffective(sub, now) {
		usage.PendingPlanID = *sub.PendingPlanID
	}
	return usage, nil
}

// CheckDownloadPermission never returns an error: anything that prevents a
// decision is reported as a denial.
func (s *QuotaService) CheckDownloadPermission(ctx context.Context, userID, videoID string) dto.DownloadPermission {
	usage, err := s.GetUsage(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to load download usage")
		return dto.DownloadPermission{
			Allowed:      false,
			Reason:       msgQuotaUnavailable,
			WarningLevel: shared.WarningNone,
		}
	}

	permission := dto.DownloadPermission{
		Usage:        usage,
		WarningLevel: WarningLevelFor(usage.CurrentUsage, usage.MonthlyLimit),
	}

	// Downloading a video again never consumes quota.
	if videoID != "" {
		already, err := s.store.HasDownloaded(ctx, userID, videoID)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{"user_id": userID, "video_id": videoID}).Error("Failed to check download history")
			permission.Reason = msgQuotaUnavailable
			return permission
		}
		if already {
			permission.Allowed = true
			permission.AlreadyDownloaded = true
			return permission
		}
	}

	if !usage.CanDownload {
		permission.Reason = fmt.Sprintf("You have reached your monthly limit of %d downloads. Your limit resets on %s.",
			usage.MonthlyLimit, usage.NextResetDate.Format(resetDateLayout))
		return permission
	}

	permission.Allowed = true
	return permission
}

// ChangePlan applies upgrades immediately and defers downgrades to the next
// cycle so the user keeps the higher limit they already paid for.
func (s *QuotaService) ChangePlan(ctx context.Context, userID, planID string) (*dto.PlanChangeResult, error) {
	if !IsKnownPlan(planID) {
		return nil, shared.NewBadRequestError(nil, fmt.Sprintf("Unknown plan %q", planID))
	}

	sub, err := s.store.FindActiveSubscription(ctx, userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load subscription")
	}

	now := s.clock.Now()
	if sub != nil && pendingEffective(sub, now) {
		sub.PlanID = *sub.PendingPlanID
		sub.PendingPlanID = nil
		sub.PendingFrom = nil
	}

	current := effectivePlan(sub, now)
	result := &dto.PlanChangeResult{
		UserID:     userID,
		FromPlanID: current.PlanID,
		ToPlanID:   planID,
	}

	if current.PlanID == planID {
		// Re-selecting the current plan cancels a scheduled downgrade.
		if sub != nil && sub.PendingPlanID != nil {
			sub.PendingPlanID = nil
			sub.PendingFrom = nil
			sub.UpdatedAt = now
			if err := s.store.SaveSubscription(ctx, sub); err != nil {
				return nil, shared.NewInternalError(err, "Failed to update subscription")
			}
		}
		result.EffectiveDate = shared.EffectiveImmediate
		result.EffectiveAt = now
		result.Usage = s.usageOrNil(ctx, userID, sub, now)
		return result, nil
	}

	if sub == nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, shared.NewInternalError(err, "Failed to create subscription")
		}
		// The default cycle keeps its anchor so usage already counted this
		// cycle carries over to the new plan.
		sub = &model.Subscription{
			ID:             id.String(),
			UserID:         userID,
			PlanID:         current.PlanID,
			Status:         shared.SubscriptionStatusActive,
			CycleAnchorDay: current.CycleAnchorDay,
			CreatedAt:      now,
		}
	}

	if IsUpgrade(current.PlanID, planID) {
		sub.PlanID = planID
		sub.PendingPlanID = nil
		sub.PendingFrom = nil
		result.EffectiveDate = shared.EffectiveImmediate
		result.EffectiveAt = now
	} else {
		_, nextReset := CycleBounds(current.CycleAnchorDay, now)
		target := planID
		sub.PendingPlanID = &target
		sub.PendingFrom = &nextReset
		result.EffectiveDate = shared.EffectiveNextCycle
		result.EffectiveAt = nextReset
	}
	sub.UpdatedAt = now

	if err := s.store.SaveSubscription(ctx, sub); err != nil {
		return nil, shared.NewInternalError(err, "Failed to update subscription")
	}

	s.recordPlanChange(ctx, &model.PlanChange{
		UserID:        userID,
		FromPlanID:    result.FromPlanID,
		ToPlanID:      planID,
		EffectiveDate: result.EffectiveDate,
		EffectiveAt:   result.EffectiveAt,
		CreatedAt:     now,
	})

	s.events.RecordEvent(ctx, dto.AuditEvent{
		UserID: userID,
		Event:  shared.EventPlanChanged,
		Details: map[string]interface{}{
			"from_plan_id":   result.FromPlanID,
			"to_plan_id":     planID,
			"effective_date": result.EffectiveDate,
			"effective_at":   result.EffectiveAt,
		},
		Timestamp: now,
	})

	result.Changed = true
	result.Usage = s.usageOrNil(ctx, userID, sub, now)
	return result, nil
}

// recordPlanChange is best effort; the subscription is already saved.
func (s *QuotaService) recordPlanChange(ctx context.Context, change *model.PlanChange) {
	id, err := uuid.NewV7()
	if err != nil {
		log.WithError(err).WithField("user_id", change.UserID).Warn("Failed to generate plan change ID")
		return
	}
	change.ID = id.String()
	if err := s.store.RecordPlanChange(ctx, change); err != nil {
		log.WithError(err).WithField("user_id", change.UserID).Warn("Failed to record plan change history")
	}
}

func (s *QuotaService) usageOrNil(ctx context.Context, userID string, sub *model.Subscription, now time.Time) *dto.DownloadUsage {
	usage, err := s.usageFor(ctx, userID, sub, now)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to refresh usage after plan change")
		return nil
	}
	return usage
}
