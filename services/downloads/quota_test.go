package downloads

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lac-hong-legacy/footage_api/model"
	"github.com/lac-hong-legacy/footage_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

func newTestQuota() (*QuotaService, *fakeStore, *shared.FakeClock, *captureEvents) {
	store := newFakeStore()
	clock := shared.NewFakeClock(now)
	events := &captureEvents{}
	return NewQuotaService(store, events, clock), store, clock, events
}

func subscribe(store *fakeStore, userID, planID string, anchor int) {
	store.subscriptions[userID] = &model.Subscription{
		ID:             "sub-" + userID,
		UserID:         userID,
		PlanID:         planID,
		Status:         shared.SubscriptionStatusActive,
		CycleAnchorDay: anchor,
		CreatedAt:      date(2025, 1, anchor),
	}
}

func TestGetPlanDefaultsToFree(t *testing.T) {
	quota, _, _, _ := newTestQuota()

	plan, err := quota.GetPlan(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, shared.PlanFree, plan.PlanID)
	assert.Equal(t, 3, plan.MonthlyDownloadLimit)
	assert.Equal(t, 1, plan.CycleAnchorDay)
	assert.True(t, plan.IsDefault)
}

func TestGetPlanUnknownPlanFallsBackToFree(t *testing.T) {
	quota, store, _, _ := newTestQuota()
	subscribe(store, "u1", "platinum", 5)

	plan, err := quota.GetPlan(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, shared.PlanFree, plan.PlanID)
	assert.Equal(t, 5, plan.CycleAnchorDay)
}

func TestGetPlanStoreFailure(t *testing.T) {
	quota, store, _, _ := newTestQuota()
	store.failReads = true

	plan, err := quota.GetPlan(context.Background(), "u1")
	assert.Error(t, err)
	assert.Nil(t, plan)
}

func TestGetUsageCountsCurrentCycleOnly(t *testing.T) {
	quota, store, _, _ := newTestQuota()
	subscribe(store, "u1", shared.PlanStandard, 15)

	store.seedDownloads("u1", date(2026, 3, 14), "old-1", "old-2")
	store.seedDownloads("u1", date(2026, 3, 15), "v1")
	store.seedDownloads("u1", now, "v2")
	store.seedDownloads("u2", now, "v3")

	usage, err := quota.GetUsage(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, shared.PlanStandard, usage.PlanID)
	assert.Equal(t, 15, usage.MonthlyLimit)
	assert.Equal(t, 2, usage.CurrentUsage)
	assert.Equal(t, 13, usage.Remaining)
	assert.Equal(t, date(2026, 3, 15), usage.CycleStart)
	assert.Equal(t, date(2026, 4, 15), usage.NextResetDate)
	assert.False(t, usage.IsLimitExceeded)
	assert.True(t, usage.CanDownload)
}

func TestCheckDownloadPermissionAtLimit(t *testing.T) {
	quota, store, _, _ := newTestQuota()
	store.seedDownloads("u1", now.Add(-time.Hour), "v1", "v2", "v3")

	permission := quota.CheckDownloadPermission(context.Background(), "u1", "v4")
	assert.False(t, permission.Allowed)
	assert.Equal(t, shared.WarningExceeded, permission.WarningLevel)
	assert.Contains(t, permission.Reason, "3 downloads")
	assert.Contains(t, permission.Reason, "April 1, 2026")
	require.NotNil(t, permission.Usage)
	assert.True(t, permission.Usage.IsLimitExceeded)
	assert.Equal(t, 0, permission.Usage.Remaining)

	again := quota.CheckDownloadPermission(context.Background(), "u1", "v2")
	assert.True(t, again.Allowed)
	assert.True(t, again.AlreadyDownloaded)
	assert.Empty(t, again.Reason)
}

func TestCheckDownloadPermissionFailsClosed(t *testing.T) {
	quota, store, _, _ := newTestQuota()
	store.failReads = true

	permission := quota.CheckDownloadPermission(context.Background(), "u1", "v1")
	assert.False(t, permission.Allowed)
	assert.Equal(t, msgQuotaUnavailable, permission.Reason)
	assert.Nil(t, permission.Usage)
}

func TestCheckDownloadPermissionWarningBands(t *testing.T) {
	tests := []struct {
		downloads int
		want      string
		allowed   bool
	}{
		{0, shared.WarningNone, true},
		{7, shared.WarningNone, true},
		{8, shared.WarningLow, true},
		{11, shared.WarningMedium, true},
		{14, shared.WarningHigh, true},
		{15, shared.WarningExceeded, false},
	}

	for _, tt := range tests {
		quota, store, _, _ := newTestQuota()
		subscribe(store, "u1", shared.PlanStandard, 1)
		for i := 0; i < tt.downloads; i++ {
			store.seedDownloads("u1", now, "seed-"+string(rune('a'+i)))
		}

		permission := quota.CheckDownloadPermission(context.Background(), "u1", "fresh")
		assert.Equal(t, tt.want, permission.WarningLevel, "%d downloads", tt.downloads)
		assert.Equal(t, tt.allowed, permission.Allowed, "%d downloads", tt.downloads)
	}
}

func TestWarningLevelFor(t *testing.T) {
	tests := []struct {
		current, limit int
		want           string
	}{
		{0, 10, shared.WarningNone},
		{4, 10, shared.WarningNone},
		{5, 10, shared.WarningLow},
		{7, 10, shared.WarningMedium},
		{9, 10, shared.WarningHigh},
		{10, 10, shared.WarningExceeded},
		{12, 10, shared.WarningExceeded},
		{1, 2, shared.WarningLow},
		{0, 0, shared.WarningExceeded},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, WarningLevelFor(tt.current, tt.limit), "%d/%d", tt.current, tt.limit)
	}
}

func TestChangePlanUpgradeIsImmediate(t *testing.T) {
	quota, store, _, events := newTestQuota()
	subscribe(store, "u1", shared.PlanStandard, 1)
	ctx := context.Background()

	result, err := quota.ChangePlan(ctx, "u1", shared.PlanPro)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, shared.PlanStandard, result.FromPlanID)
	assert.Equal(t, shared.EffectiveImmediate, result.EffectiveDate)
	assert.Equal(t, now, result.EffectiveAt)

	usage, err := quota.GetUsage(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, shared.PlanPro, usage.PlanID)
	assert.Equal(t, 50, usage.MonthlyLimit)

	require.Len(t, store.planChanges, 1)
	assert.Equal(t, shared.EffectiveImmediate, store.planChanges[0].EffectiveDate)
	assert.Len(t, events.named(shared.EventPlanChanged), 1)
}

func TestChangePlanDowngradeIsDeferred(t *testing.T) {
	quota, store, clock, _ := newTestQuota()
	subscribe(store, "u1", shared.PlanPro, 1)
	ctx := context.Background()

	result, err := quota.ChangePlan(ctx, "u1", shared.PlanStandard)
	require.NoError(t, err)
	assert.Equal(t, shared.EffectiveNextCycle, result.EffectiveDate)
	assert.Equal(t, date(2026, 4, 1), result.EffectiveAt)

	usage, err := quota.GetUsage(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, shared.PlanPro, usage.PlanID)
	assert.Equal(t, 50, usage.MonthlyLimit)
	assert.Equal(t, shared.PlanStandard, usage.PendingPlanID)

	clock.Set(date(2026, 3, 31).Add(23 * time.Hour))
	usage, err = quota.GetUsage(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, usage.MonthlyLimit)

	clock.Set(date(2026, 4, 1))
	usage, err = quota.GetUsage(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, shared.PlanStandard, usage.PlanID)
	assert.Equal(t, 15, usage.MonthlyLimit)
	assert.Empty(t, usage.PendingPlanID)
}

func TestChangePlanReselectCancelsPendingDowngrade(t *testing.T) {
	quota, store, _, _ := newTestQuota()
	subscribe(store, "u1", shared.PlanBusiness, 1)
	ctx := context.Background()

	_, err := quota.ChangePlan(ctx, "u1", shared.PlanFree)
	require.NoError(t, err)

	result, err := quota.ChangePlan(ctx, "u1", shared.PlanBusiness)
	require.NoError(t, err)
	assert.False(t, result.Changed)

	sub := store.subscriptions["u1"]
	assert.Nil(t, sub.PendingPlanID)
	assert.Nil(t, sub.PendingFrom)
	assert.Len(t, store.planChanges, 1)
}

func TestChangePlanFromDefaultCreatesSubscription(t *testing.T) {
	quota, store, _, _ := newTestQuota()

	result, err := quota.ChangePlan(context.Background(), "new-user", shared.PlanStandard)
	require.NoError(t, err)
	assert.Equal(t, shared.PlanFree, result.FromPlanID)
	assert.Equal(t, shared.EffectiveImmediate, result.EffectiveDate)

	sub := store.subscriptions["new-user"]
	require.NotNil(t, sub)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, shared.PlanStandard, sub.PlanID)
	assert.Equal(t, 1, sub.CycleAnchorDay)
	require.NotNil(t, result.Usage)
	assert.Equal(t, date(2026, 3, 1), result.Usage.CycleStart)
	assert.Equal(t, date(2026, 4, 1), result.Usage.NextResetDate)
}

func TestChangePlanFromDefaultCarriesUsage(t *testing.T) {
	quota, store, _, _ := newTestQuota()
	store.seedDownloads("u1", date(2026, 3, 5), "v1", "v2", "v3")

	before, err := quota.GetUsage(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, before.CurrentUsage)
	assert.True(t, before.IsLimitExceeded)

	result, err := quota.ChangePlan(context.Background(), "u1", shared.PlanStandard)
	require.NoError(t, err)
	require.NotNil(t, result.Usage)
	assert.Equal(t, 3, result.Usage.CurrentUsage)
	assert.Equal(t, 15, result.Usage.MonthlyLimit)
	assert.Equal(t, 12, result.Usage.Remaining)
	assert.Equal(t, date(2026, 3, 1), result.Usage.CycleStart)

	after, err := quota.GetUsage(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, after.CurrentUsage)
	assert.Equal(t, date(2026, 3, 1), after.CycleStart)

	permission := quota.CheckDownloadPermission(context.Background(), "u1", "v4")
	assert.True(t, permission.Allowed)
}

type failingRand struct{}

func (failingRand) Read([]byte) (int, error) {
	return 0, errors.New("entropy source unavailable")
}

// withFailingIDs makes every uuid generation in the test fail.
func withFailingIDs(t *testing.T) {
	t.Helper()
	uuid.SetRand(failingRand{})
	t.Cleanup(func() { uuid.SetRand(nil) })
}

func TestChangePlanIDGenerationFailure(t *testing.T) {
	t.Run("new subscription", func(t *testing.T) {
		quota, store, _, events := newTestQuota()
		withFailingIDs(t)

		result, err := quota.ChangePlan(context.Background(), "new-user", shared.PlanPro)
		assert.Nil(t, result)
		var appErr *shared.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
		assert.Empty(t, store.subscriptions)
		assert.Empty(t, events.named(shared.EventPlanChanged))
	})

	t.Run("plan change history", func(t *testing.T) {
		quota, store, _, _ := newTestQuota()
		subscribe(store, "u1", shared.PlanStandard, 1)
		withFailingIDs(t)

		result, err := quota.ChangePlan(context.Background(), "u1", shared.PlanPro)
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, shared.PlanPro, store.subscriptions["u1"].PlanID)
		assert.Empty(t, store.planChanges)
	})
}

func TestChangePlanRejectsUnknownPlan(t *testing.T) {
	quota, _, _, _ := newTestQuota()

	_, err := quota.ChangePlan(context.Background(), "u1", "platinum")
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}
