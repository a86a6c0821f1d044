package job

import (
	"modportal/logger"
	"modportal/web/service"
)

// auditRetentionDays is how long audit entries are kept.
const auditRetentionDays = 90

// AuditCleanupJob trims old entries from the audit log.
type AuditCleanupJob struct {
	audits *service.AuditLogService
}

func NewAuditCleanupJob(audits *service.AuditLogService) *AuditCleanupJob {
	return &AuditCleanupJob{audits: audits}
}

// Run implements cron.Job.
func (j *AuditCleanupJob) Run() {
	if err := j.audits.CleanOldLogs(auditRetentionDays); err != nil {
		logger.Warning("audit cleanup failed:", err)
	}
}
