// internal/services/admin_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/craftkala/craftkala-backend/internal/models"
	"github.com/craftkala/craftkala-backend/internal/store"
	"github.com/craftkala/craftkala-backend/internal/utils"
)

// AdminService backs the back-office dashboard: stats, user management
// and notification triage.
type AdminService struct {
	db    *gorm.DB
	apps  store.ApplicationStore
	audit *AuditService
}

func NewAdminService(db *gorm.DB, apps store.ApplicationStore, audit *AuditService) *AdminService {
	return &AdminService{db: db, apps: apps, audit: audit}
}

type DashboardStats struct {
	Applications  map[models.ApplicationStatus]int64 `json:"applications"`
	TotalUsers    int64                              `json:"total_users"`
	TotalBuyers   int64                              `json:"total_buyers"`
	ActiveSellers int64                              `json:"active_sellers"`
	TotalProducts int64                              `json:"total_products"`
	LiveProducts  int64                              `json:"live_products"`
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	appCounts, err := s.apps.CountByStatus()
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{Applications: appCounts}

	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.User{}).Where("user_type = ?", models.UserTypeBuyer).Count(&stats.TotalBuyers)
	s.db.Model(&models.ArtisanProfile{}).Where("is_active = ?", true).Count(&stats.ActiveSellers)
	s.db.Model(&models.Product{}).Count(&stats.TotalProducts)
	s.db.Model(&models.Product{}).Where("status = ?", models.ProductStatusActive).Count(&stats.LiveProducts)

	return stats, nil
}

func (s *AdminService) ListUsers(params utils.PaginationParams, userType, status string) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})
	if userType != "" {
		query = query.Where("user_type = ?", userType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = utils.ApplySort(query, params, []string{"created_at", "username", "email"})

	var users []models.User
	err := utils.ApplyPagination(query, params).Find(&users).Error
	return users, total, err
}

// SetUserStatus suspends, bans or reactivates an account. Suspending an
// artisan also deactivates their profile, which hides their products from
// the catalog.
func (s *AdminService) SetUserStatus(adminID, userID uuid.UUID, status models.UserStatus) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	oldStatus := user.Status

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("status", status).Error; err != nil {
			return err
		}

		if user.UserType == models.UserTypeArtisan {
			active := status == models.UserStatusActive
			if err := tx.Model(&models.ArtisanProfile{}).
				Where("user_id = ?", userID).
				Update("is_active", active).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	user.Status = status

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"admin_id":   adminID,
		"old_status": oldStatus,
		"new_status": status,
	}).Info("User status changed")

	userRef := userID
	adminRef := adminID
	s.audit.Record(AuditEntry{
		UserID:       &adminRef,
		Action:       "user.set_status",
		ResourceType: "user",
		ResourceID:   &userRef,
		OldValues:    models.JSONB{"status": string(oldStatus)},
		NewValues:    models.JSONB{"status": string(status)},
	})

	return &user, nil
}

func (s *AdminService) ListNotifications(params utils.PaginationParams, unreadOnly bool) ([]models.AdminNotification, int64, error) {
	query := s.db.Model(&models.AdminNotification{})
	if unreadOnly {
		query = query.Where("status = ?", "unread")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = utils.ApplySort(query, params, []string{"created_at", "priority"})

	var notifications []models.AdminNotification
	err := utils.ApplyPagination(query, params).Find(&notifications).Error
	return notifications, total, err
}

func (s *AdminService) MarkNotificationRead(id uuid.UUID) error {
	now := time.Now()
	result := s.db.Model(&models.AdminNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": "read", "read_at": &now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
