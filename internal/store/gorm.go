// internal/store/gorm.go
package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/craftkala/craftkala-backend/internal/models"
)

// GormApplicationStore is the PostgreSQL-backed ApplicationStore.
type GormApplicationStore struct {
	db *gorm.DB
}

func NewGormApplicationStore(db *gorm.DB) *GormApplicationStore {
	return &GormApplicationStore{db: db}
}

func (s *GormApplicationStore) Create(app *models.SellerApplication) error {
	return s.db.Create(app).Error
}

func (s *GormApplicationStore) Get(id uuid.UUID) (*models.SellerApplication, error) {
	var app models.SellerApplication
	err := s.db.Preload("Applicant").Preload("Profile").First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// UpdateContent writes the jsonb form sections through a struct update so
// gorm's serializers run (map updates bypass them), selecting the columns
// explicitly so cleared sections still overwrite. The status predicate keeps
// the write from clobbering an application a reviewer decided meanwhile.
func (s *GormApplicationStore) UpdateContent(id uuid.UUID, expected models.ApplicationStatus, app *models.SellerApplication) (bool, error) {
	result := s.db.Model(&models.SellerApplication{}).
		Where("id = ? AND status = ?", id, expected).
		Select("business_info", "tax_identity", "product_intent", "logistics", "payment", "narrative", "documents").
		Updates(app)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update application content: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *GormApplicationStore) HasActive(applicantID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.SellerApplication{}).
		Where("applicant_id = ? AND status = ?", applicantID, models.ApplicationStatusPendingReview).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormApplicationStore) ListByApplicant(applicantID uuid.UUID) ([]models.SellerApplication, error) {
	var apps []models.SellerApplication
	err := s.db.Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (s *GormApplicationStore) List(filter ApplicationFilter) ([]models.SellerApplication, int64, error) {
	query := s.db.Model(&models.SellerApplication{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SellerType != "" {
		query = query.Where("business_info->>'sellerType' = ?", string(filter.SellerType))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"business_info->>'businessName' ILIKE ? OR business_info->>'ownerName' ILIKE ?",
			pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var apps []models.SellerApplication
	err := query.Preload("Applicant").
		Order("submitted_at ASC NULLS LAST, created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&apps).Error
	return apps, total, err
}

func (s *GormApplicationStore) CountByStatus() (map[models.ApplicationStatus]int64, error) {
	type row struct {
		Status models.ApplicationStatus
		Count  int64
	}
	var rows []row
	err := s.db.Model(&models.SellerApplication{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ApplicationStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (s *GormApplicationStore) TransitionStatus(id uuid.UUID, from, to models.ApplicationStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	result := s.db.Model(&models.SellerApplication{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition application status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GormProfileStore is the PostgreSQL-backed ProfileStore.
type GormProfileStore struct {
	db *gorm.DB
}

func NewGormProfileStore(db *gorm.DB) *GormProfileStore {
	return &GormProfileStore{db: db}
}

// ActivateForApplication creates the artisan profile for an approved
// application and promotes the applicant to the artisan role, in one
// transaction. The insert carries ON CONFLICT DO NOTHING on the unique
// application_id index, so a concurrent or repeated activation never errors;
// the follow-up read returns whichever row won.
func (s *GormProfileStore) ActivateForApplication(app *models.SellerApplication) (*models.ArtisanProfile, error) {
	profile := &models.ArtisanProfile{
		ApplicationID: app.ID,
		UserID:        app.ApplicantID,
		BusinessName:  app.BusinessInfo.BusinessName,
		OwnerName:     app.BusinessInfo.OwnerName,
		Story:         app.Narrative.Story,
		Categories:    pq.StringArray(app.ProductIntent.Categories),
		Materials:     app.ProductIntent.Materials,
		ProfilePhoto:  app.Documents.ProfilePhotoRef,
		IsActive:      true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "application_id"}},
			DoNothing: true,
		}).Create(profile)
		if insert.Error != nil {
			return fmt.Errorf("failed to activate artisan profile: %w", insert.Error)
		}
		if insert.RowsAffected == 0 {
			if err := tx.Where("application_id = ?", app.ID).First(profile).Error; err != nil {
				return fmt.Errorf("failed to load existing artisan profile: %w", err)
			}
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", app.ApplicantID).
			Update("user_type", models.UserTypeArtisan).Error; err != nil {
			return fmt.Errorf("failed to promote applicant to artisan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *GormProfileStore) Get(id uuid.UUID) (*models.ArtisanProfile, error) {
	var profile models.ArtisanProfile
	err := s.db.Preload("User").First(&profile, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (s *GormProfileStore) GetByApplication(applicationID uuid.UUID) (*models.ArtisanProfile, error) {
	var profile models.ArtisanProfile
	err := s.db.First(&profile, "application_id = ?", applicationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (s *GormProfileStore) GetByUser(userID uuid.UUID) (*models.ArtisanProfile, error) {
	var profile models.ArtisanProfile
	err := s.db.First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (s *GormProfileStore) ListActive(filter ProfileFilter) ([]models.ArtisanProfile, int64, error) {
	query := s.db.Model(&models.ArtisanProfile{}).Where("is_active = ?", true)

	if filter.Category != "" {
		query = query.Where("? = ANY(categories)", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("business_name ILIKE ? OR owner_name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var profiles []models.ArtisanProfile
	err := query.Order("rating DESC, created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&profiles).Error
	return profiles, total, err
}

func (s *GormProfileStore) Update(profile *models.ArtisanProfile) error {
	return s.db.Save(profile).Error
}
