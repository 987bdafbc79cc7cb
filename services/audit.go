package services

import (
	"context"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/model"
	"github.com/lac-hong-legacy/footage_api/shared"
	log "github.com/sirupsen/logrus"
)

type auditStore interface {
	CreateAuditLog(ctx context.Context, entry *model.AuditLog) error
}

// AuditService persists security and billing relevant events. Recording
// never fails the caller; write errors are logged.
type AuditService struct {
	appContext.DefaultService

	store auditStore
}

const AUDIT_SVC = "audit_svc"

func (svc AuditService) Id() string {
	return AUDIT_SVC
}

func (svc *AuditService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuditService) Start() error {
	svc.store = svc.Service(DATABASE_SVC).(*DatabaseService).Audit()
	return nil
}

func (svc *AuditService) RecordEvent(ctx context.Context, event dto.AuditEvent) {
	fields := log.Fields{
		"event":   event.Event,
		"user_id": event.UserID,
	}
	for k, v := range event.Details {
		fields[k] = v
	}
	log.WithFields(fields).Info("Audit event")

	if svc.store == nil {
		return
	}

	details, err := shared.JSONMarshal(event.Details)
	if err != nil {
		log.WithError(err).WithField("event", event.Event).Warn("Failed to encode audit details")
		details = []byte("{}")
	}

	createdAt := event.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	// Detached from the request so a cancelled client does not drop the record
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := svc.store.CreateAuditLog(writeCtx, &model.AuditLog{
		UserID:    event.UserID,
		Event:     event.Event,
		Details:   details,
		CreatedAt: createdAt,
	}); err != nil {
		log.WithError(err).WithField("event", event.Event).Error("Failed to persist audit event")
	}
}
