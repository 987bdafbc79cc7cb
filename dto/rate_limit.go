package dto

import "time"

type RateLimitInfo struct {
	Allowed        bool       `json:"allowed"`
	Remaining      int        `json:"remaining"`
	ResetTime      *time.Time `json:"reset_time,omitempty"`
	BlockedUntil   *time.Time `json:"blocked_until,omitempty"`
	IsBlocked      bool       `json:"is_blocked"`
	IsDDoSDetected bool       `json:"is_ddos_detected"`
}

type RateLimitSurfaceStats struct {
	Name                string  `json:"name"`
	MaxRequests         int     `json:"max_requests"`
	WindowSeconds       int64   `json:"window_seconds"`
	BurstThreshold      int     `json:"burst_threshold"`
	BurstWindowMs       int64   `json:"burst_window_ms"`
	SuspiciousThreshold float64 `json:"suspicious_threshold"`
	BlockSeconds        int64   `json:"block_seconds"`
	FailClosed          bool    `json:"fail_closed"`
}

type RateLimitStatsResponse struct {
	Backend       string                  `json:"backend"`
	Surfaces      []RateLimitSurfaceStats `json:"surfaces"`
	ActiveEntries *int                    `json:"active_entries,omitempty"`
	ActiveBlocks  *int                    `json:"active_blocks,omitempty"`
}

type RateLimitTargetRequest struct {
	Surface    string `json:"surface" validate:"required,oneof=general api download upload auth"`
	Identifier string `json:"identifier" validate:"required,max=255"`
}

func (r RateLimitTargetRequest) Validate() error {
	return validate.Struct(r)
}
