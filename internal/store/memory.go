// internal/store/memory.go
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/craftkala/craftkala-backend/internal/models"
)

// MemoryApplicationStore is an in-process ApplicationStore used by tests
// and local development without PostgreSQL. It honors the same atomicity
// contract as the gorm store: TransitionStatus checks and updates under
// one lock.
type MemoryApplicationStore struct {
	mu   sync.Mutex
	apps map[uuid.UUID]*models.SellerApplication
}

func NewMemoryApplicationStore() *MemoryApplicationStore {
	return &MemoryApplicationStore{apps: make(map[uuid.UUID]*models.SellerApplication)}
}

func (s *MemoryApplicationStore) Create(app *models.SellerApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	stored := *app
	s.apps[app.ID] = &stored
	return nil
}

func (s *MemoryApplicationStore) Get(id uuid.UUID) (*models.SellerApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *app
	return &copied, nil
}

func (s *MemoryApplicationStore) UpdateContent(id uuid.UUID, expected models.ApplicationStatus, app *models.SellerApplication) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.apps[id]
	if !ok || stored.Status != expected {
		return false, nil
	}
	stored.BusinessInfo = app.BusinessInfo
	stored.TaxIdentity = app.TaxIdentity
	stored.ProductIntent = app.ProductIntent
	stored.Logistics = app.Logistics
	stored.Payment = app.Payment
	stored.Narrative = app.Narrative
	stored.Documents = app.Documents
	stored.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryApplicationStore) HasActive(applicantID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, app := range s.apps {
		if app.ApplicantID == applicantID && app.Status == models.ApplicationStatusPendingReview {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryApplicationStore) ListByApplicant(applicantID uuid.UUID) ([]models.SellerApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var apps []models.SellerApplication
	for _, app := range s.apps {
		if app.ApplicantID == applicantID {
			apps = append(apps, *app)
		}
	}
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps, nil
}

func (s *MemoryApplicationStore) List(filter ApplicationFilter) ([]models.SellerApplication, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var apps []models.SellerApplication
	for _, app := range s.apps {
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		if filter.SellerType != "" && app.BusinessInfo.SellerType != filter.SellerType {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(app.BusinessInfo.BusinessName), needle) &&
				!strings.Contains(strings.ToLower(app.BusinessInfo.OwnerName), needle) {
				continue
			}
		}
		apps = append(apps, *app)
	}

	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.Before(apps[j].CreatedAt)
	})

	total := int64(len(apps))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	start := (page - 1) * limit
	if start >= len(apps) {
		return []models.SellerApplication{}, total, nil
	}
	end := start + limit
	if end > len(apps) {
		end = len(apps)
	}
	return apps[start:end], total, nil
}

func (s *MemoryApplicationStore) CountByStatus() (map[models.ApplicationStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[models.ApplicationStatus]int64)
	for _, app := range s.apps {
		counts[app.Status]++
	}
	return counts, nil
}

func (s *MemoryApplicationStore) TransitionStatus(id uuid.UUID, from, to models.ApplicationStatus, fields map[string]interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return false, nil
	}
	if app.Status != from {
		return false, nil
	}

	app.Status = to
	for k, v := range fields {
		switch k {
		case "rejection_reason":
			app.RejectionReason, _ = v.(string)
		case "approval_notes":
			app.ApprovalNotes, _ = v.(string)
		case "submitted_at":
			if t, ok := v.(*time.Time); ok {
				app.SubmittedAt = t
			} else if v == nil {
				app.SubmittedAt = nil
			}
		case "decided_at":
			if t, ok := v.(*time.Time); ok {
				app.DecidedAt = t
			} else if v == nil {
				app.DecidedAt = nil
			}
		case "decided_by":
			if u, ok := v.(*uuid.UUID); ok {
				app.DecidedBy = u
			} else if v == nil {
				app.DecidedBy = nil
			}
		}
	}
	app.UpdatedAt = time.Now()
	return true, nil
}

// MemoryProfileStore is the in-process ProfileStore counterpart. It also
// records user role promotions so workflow tests can assert them.
type MemoryProfileStore struct {
	mu            sync.Mutex
	profiles      map[uuid.UUID]*models.ArtisanProfile
	byApplication map[uuid.UUID]uuid.UUID

	// UserTypes mirrors the role column the gorm store updates in users.
	UserTypes map[uuid.UUID]models.UserType
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{
		profiles:      make(map[uuid.UUID]*models.ArtisanProfile),
		byApplication: make(map[uuid.UUID]uuid.UUID),
		UserTypes:     make(map[uuid.UUID]models.UserType),
	}
}

func (s *MemoryProfileStore) ActivateForApplication(app *models.SellerApplication) (*models.ArtisanProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byApplication[app.ID]; ok {
		copied := *s.profiles[id]
		return &copied, nil
	}

	profile := &models.ArtisanProfile{
		BaseModel:     models.BaseModel{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
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
	s.profiles[profile.ID] = profile
	s.byApplication[app.ID] = profile.ID
	s.UserTypes[app.ApplicantID] = models.UserTypeArtisan

	copied := *profile
	return &copied, nil
}

func (s *MemoryProfileStore) Get(id uuid.UUID) (*models.ArtisanProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

func (s *MemoryProfileStore) GetByApplication(applicationID uuid.UUID) (*models.ArtisanProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byApplication[applicationID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s.profiles[id]
	return &copied, nil
}

func (s *MemoryProfileStore) GetByUser(userID uuid.UUID) (*models.ArtisanProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, profile := range s.profiles {
		if profile.UserID == userID {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryProfileStore) ListActive(filter ProfileFilter) ([]models.ArtisanProfile, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profiles []models.ArtisanProfile
	for _, profile := range s.profiles {
		if !profile.IsActive {
			continue
		}
		if filter.Category != "" {
			found := false
			for _, c := range profile.Categories {
				if c == filter.Category {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(profile.BusinessName), needle) &&
				!strings.Contains(strings.ToLower(profile.OwnerName), needle) {
				continue
			}
		}
		profiles = append(profiles, *profile)
	}

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].Rating != profiles[j].Rating {
			return profiles[i].Rating > profiles[j].Rating
		}
		return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
	})

	total := int64(len(profiles))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	start := (page - 1) * limit
	if start >= len(profiles) {
		return []models.ArtisanProfile{}, total, nil
	}
	end := start + limit
	if end > len(profiles) {
		end = len(profiles)
	}
	return profiles[start:end], total, nil
}

func (s *MemoryProfileStore) Update(profile *models.ArtisanProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[profile.ID]; !ok {
		return ErrNotFound
	}
	profile.UpdatedAt = time.Now()
	stored := *profile
	s.profiles[profile.ID] = &stored
	return nil
}
