// internal/services/audit_service.go
package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/craftkala/craftkala-backend/internal/models"
	"github.com/craftkala/craftkala-backend/internal/utils"
)

// AuditService records admin and workflow actions. Recording is
// best-effort: a failed insert is logged, never propagated.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

type AuditEntry struct {
	UserID       *uuid.UUID
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	OldValues    models.JSONB
	NewValues    models.JSONB
	IPAddress    string
	UserAgent    string
}

func (s *AuditService) Record(entry AuditEntry) {
	if s == nil || s.db == nil {
		return
	}

	log := &models.AuditLog{
		UserID:       entry.UserID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		OldValues:    entry.OldValues,
		NewValues:    entry.NewValues,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
	}

	if err := s.db.Create(log).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"action": entry.Action,
			"error":  err,
		}).Error("Failed to record audit log")
	}
}

func (s *AuditService) List(params utils.PaginationParams, action string) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{})
	if action != "" {
		query = query.Where("action = ?", action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = utils.ApplySort(query.Preload("User"), params, []string{"created_at", "action"})

	var logs []models.AuditLog
	err := utils.ApplyPagination(query, params).Find(&logs).Error
	return logs, total, err
}
