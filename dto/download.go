package dto

import "time"

// DownloadUsage is derived on every call from the user's plan and their
// download history for the current billing cycle.
type DownloadUsage struct {
	UserID          string    `json:"user_id"`
	PlanID          string    `json:"plan_id"`
	MonthlyLimit    int       `json:"monthly_limit"`
	CurrentUsage    int       `json:"current_usage"`
	Remaining       int       `json:"remaining"`
	CycleStart      time.Time `json:"cycle_start"`
	NextResetDate   time.Time `json:"reset_date"`
	IsLimitExceeded bool      `json:"is_limit_exceeded"`
	CanDownload     bool      `json:"can_download"`
	PendingPlanID   string    `json:"pending_plan_id,omitempty"`
}

type DownloadPermission struct {
	Allowed           bool           `json:"allowed"`
	Reason            string         `json:"reason,omitempty"`
	Usage             *DownloadUsage `json:"usage,omitempty"`
	WarningLevel      string         `json:"warning_level"`
	AlreadyDownloaded bool           `json:"already_downloaded"`
}

type DownloadResult struct {
	Success           bool           `json:"success"`
	DownloadURL       string         `json:"download_url,omitempty"`
	Error             string         `json:"error,omitempty"`
	Usage             *DownloadUsage `json:"usage,omitempty"`
	AlreadyDownloaded bool           `json:"already_downloaded"`
}

type ChangePlanRequest struct {
	PlanID string `json:"plan_id" validate:"required,oneof=free standard pro business"`
}

func (r ChangePlanRequest) Validate() error {
	return validate.Struct(r)
}

type PlanChangeResult struct {
	UserID        string         `json:"user_id"`
	FromPlanID    string         `json:"from_plan_id"`
	ToPlanID      string         `json:"to_plan_id"`
	EffectiveDate string         `json:"effective_date"`
	EffectiveAt   time.Time      `json:"effective_at"`
	Changed       bool           `json:"changed"`
	Usage         *DownloadUsage `json:"usage,omitempty"`
}

type AuditEvent struct {
	UserID    string                 `json:"user_id"`
	Event     string                 `json:"event"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

type DownloadHistoryItem struct {
	VideoID      string    `json:"video_id"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

type DownloadHistoryResponse struct {
	Usage     *DownloadUsage        `json:"usage"`
	Downloads []DownloadHistoryItem `json:"downloads"`
}

type PlanChangeRecord struct {
	FromPlanID    string    `json:"from_plan_id"`
	ToPlanID      string    `json:"to_plan_id"`
	EffectiveDate string    `json:"effective_date"`
	EffectiveAt   time.Time `json:"effective_at"`
	RequestedAt   time.Time `json:"requested_at"`
}
