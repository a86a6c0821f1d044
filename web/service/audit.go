package service

import (
	"time"

	"modportal/database/model"
	"modportal/logger"

	json "github.com/goccy/go-json"
	"gorm.io/gorm"
)

// AuditLogService records administrative actions on moderator accounts.
type AuditLogService struct {
	db *gorm.DB
}

func NewAuditLogService(db *gorm.DB) *AuditLogService {
	return &AuditLogService{db: db}
}

// LogAction writes one audit row. Failures are logged and returned but
// never block the request that triggered them.
func (s *AuditLogService) LogAction(userId int, username, action, resource string, resourceId int, ip, userAgent string, details map[string]any) error {
	detailsJSON := ""
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			logger.Warning("failed to marshal audit details:", err)
		} else {
			detailsJSON = string(data)
		}
	}

	entry := model.AuditLog{
		UserId:     userId,
		Username:   username,
		Action:     action,
		Resource:   resource,
		ResourceId: resourceId,
		IP:         ip,
		UserAgent:  userAgent,
		Details:    detailsJSON,
		Timestamp:  time.Now(),
	}

	if err := s.db.Create(&entry).Error; err != nil {
		logger.Warningf("failed to create audit log: user=%d, action=%s, error=%v", userId, action, err)
		return err
	}
	return nil
}

// GetAuditLogs returns recent audit entries, newest first.
func (s *AuditLogService) GetAuditLogs(limit, offset int) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := s.db.Model(model.AuditLog{}).
		Order("timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).
		Error
	return logs, err
}

// CleanOldLogs removes audit entries older than the given number of days.
func (s *AuditLogService) CleanOldLogs(days int) error {
	cutoff := time.Now().AddDate(0, 0, -days)
	result := s.db.Where("timestamp < ?", cutoff).Delete(&model.AuditLog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		logger.Infof("cleaned %d audit logs older than %d days", result.RowsAffected, days)
	}
	return nil
}
