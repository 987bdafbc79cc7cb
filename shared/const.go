package shared

const (
	UserID   = "user_id"
	UserRole = "user_role"

	PlanFree     = "free"
	PlanStandard = "standard"
	PlanPro      = "pro"
	PlanBusiness = "business"

	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"

	EffectiveImmediate = "immediate"
	EffectiveNextCycle = "next_cycle"

	WarningNone     = "none"
	WarningLow      = "low"
	WarningMedium   = "medium"
	WarningHigh     = "high"
	WarningExceeded = "exceeded"

	EventDownloadRecorded  = "download_recorded"
	EventDownloadDenied    = "download_denied"
	EventPlanChanged       = "plan_changed"
	EventRateLimitBlocked  = "rate_limit_blocked"
	EventCounterIncrFailed = "download_counter_failed"
)
