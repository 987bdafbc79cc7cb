package model

import (
	"encoding/json"
	"time"
)

// Subscription is owned by the billing integration; this service only reads
// it and records plan changes against it.
type Subscription struct {
	ID             string     `json:"id" gorm:"primaryKey;type:text;not null"`
	UserID         string     `json:"user_id" gorm:"not null;index;size:255"`
	PlanID         string     `json:"plan_id" gorm:"not null;size:50"`
	Status         string     `json:"status" gorm:"not null;size:20;index"`
	CycleAnchorDay int        `json:"cycle_anchor_day" gorm:"not null"`
	PendingPlanID  *string    `json:"pending_plan_id,omitempty" gorm:"size:50"`
	PendingFrom    *time.Time `json:"pending_from,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"not null"`
}

// SubscriptionPlan is the resolved entitlement for a user at a point in time.
type SubscriptionPlan struct {
	PlanID               string `json:"plan_id"`
	Rank                 int    `json:"rank"`
	MonthlyDownloadLimit int    `json:"monthly_download_limit"`
	CycleAnchorDay       int    `json:"cycle_anchor_day"`
	IsDefault            bool   `json:"is_default"`
}

type PlanChange struct {
	ID            string    `json:"id" gorm:"primaryKey;type:text;not null"`
	UserID        string    `json:"user_id" gorm:"not null;index;size:255"`
	FromPlanID    string    `json:"from_plan_id" gorm:"not null;size:50"`
	ToPlanID      string    `json:"to_plan_id" gorm:"not null;size:50"`
	EffectiveDate string    `json:"effective_date" gorm:"not null;size:20"`
	EffectiveAt   time.Time `json:"effective_at" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null"`
}

// DownloadHistory holds at most one row per (user, video); the unique index
// is what makes recording idempotent.
type DownloadHistory struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text;not null"`
	UserID       string    `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_download_user_video,priority:1;index:idx_download_user_time,priority:1"`
	VideoID      string    `json:"video_id" gorm:"not null;size:255;uniqueIndex:idx_download_user_video,priority:2"`
	DownloadedAt time.Time `json:"downloaded_at" gorm:"not null;index:idx_download_user_time,priority:2"`
}

func (DownloadHistory) TableName() string { return "download_history" }

type Video struct {
	ID            string    `json:"id" gorm:"primaryKey;type:text;not null"`
	Title         string    `json:"title" gorm:"not null;size:255"`
	Description   string    `json:"description" gorm:"type:text"`
	FileName      string    `json:"file_name" gorm:"not null;size:255"`
	MimeType      string    `json:"mime_type" gorm:"size:100"`
	FileSize      int64     `json:"file_size"`
	StoragePath   string    `json:"storage_path" gorm:"not null;size:500"`
	ThumbnailPath string    `json:"thumbnail_path" gorm:"size:500"`
	DownloadCount int64     `json:"download_count" gorm:"default:0;not null"`
	IsPublished   bool      `json:"is_published" gorm:"default:true;not null;index"`
	UploadedBy    string    `json:"uploaded_by" gorm:"size:255"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"not null"`
}

type AuditLog struct {
	ID        string          `json:"id" gorm:"primaryKey;type:text;not null"`
	UserID    string          `json:"user_id" gorm:"size:255;index"`
	Event     string          `json:"event" gorm:"not null;size:50;index"`
	Details   json.RawMessage `json:"details" gorm:"type:jsonb"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null;index"`
}
