package worker

import (
	"github.com/spec-kit/road-damage-service/internal/service"
)

// StartAuditWorker registers the audit log handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
