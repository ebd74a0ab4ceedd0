package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/pkg/logger"
)

type auditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// RequestMeta carries client details recorded in audit logs.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type requestMetaKey struct{}

// WithRequestMeta attaches client details to ctx.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom returns the client details stored in ctx.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

// auditor writes best-effort audit entries. Failures are logged, never returned.
type auditor struct {
	repo   auditRepository
	logger *zap.Logger
}

func (a auditor) record(ctx context.Context, actorID, action, resource, resourceID string, values interface{}) {
	if a.repo == nil {
		return
	}
	entry := &models.AuditLog{Action: action, Resource: resource}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if values != nil {
		if raw, err := json.Marshal(values); err == nil {
			entry.NewValues = raw
		}
	}
	meta := RequestMetaFrom(ctx)
	entry.IPAddress = meta.IP
	entry.UserAgent = meta.UserAgent

	if err := a.repo.CreateAuditLog(ctx, entry); err != nil && a.logger != nil {
		logger.FromContext(ctx, a.logger).Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
