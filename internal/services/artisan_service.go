// internal/services/artisan_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/craftkala/craftkala-backend/internal/models"
	"github.com/craftkala/craftkala-backend/internal/store"
	"github.com/craftkala/craftkala-backend/internal/utils"
)

// ArtisanService serves the public artisan directory and the artisan's own
// profile. Only activated profiles are visible publicly: an applicant does
// not exist as an artisan until their application is approved.
type ArtisanService struct {
	profiles store.ProfileStore
}

func NewArtisanService(profiles store.ProfileStore) *ArtisanService {
	return &ArtisanService{profiles: profiles}
}

func (s *ArtisanService) ListPublic(filter store.ProfileFilter) ([]models.ArtisanProfile, int64, error) {
	return s.profiles.ListActive(filter)
}

// GetPublic returns an artisan profile for the storefront. Deactivated
// profiles are hidden.
func (s *ArtisanService) GetPublic(id uuid.UUID) (*models.ArtisanProfile, error) {
	profile, err := s.profiles.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrArtisanNotFound
		}
		return nil, err
	}
	if !profile.IsActive {
		return nil, ErrArtisanNotFound
	}
	return profile, nil
}

// GetOwn returns the caller's artisan profile, active or not.
func (s *ArtisanService) GetOwn(userID uuid.UUID) (*models.ArtisanProfile, error) {
	profile, err := s.profiles.GetByUser(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrArtisanNotFound
		}
		return nil, err
	}
	return profile, nil
}

type UpdateProfileRequest struct {
	BusinessName string   `json:"business_name" validate:"omitempty,min=2,max=255"`
	Story        string   `json:"story" validate:"omitempty,max=2000"`
	Categories   []string `json:"categories" validate:"omitempty,min=1,max=5"`
	Materials    string   `json:"materials" validate:"omitempty,max=255"`
	ProfilePhoto string   `json:"profile_photo" validate:"omitempty,max=512"`
}

// UpdateOwn applies an artisan's edits to their own profile. Identity and
// activation fields stay under workflow control.
func (s *ArtisanService) UpdateOwn(userID uuid.UUID, req *UpdateProfileRequest) (*models.ArtisanProfile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, &ValidationError{Fields: utils.FieldErrorMap(err)}
	}

	profile, err := s.GetOwn(userID)
	if err != nil {
		return nil, err
	}

	if req.BusinessName != "" {
		profile.BusinessName = req.BusinessName
	}
	if req.Story != "" {
		profile.Story = req.Story
	}
	if len(req.Categories) > 0 {
		profile.Categories = pq.StringArray(req.Categories)
	}
	if req.Materials != "" {
		profile.Materials = req.Materials
	}
	if req.ProfilePhoto != "" {
		profile.ProfilePhoto = req.ProfilePhoto
	}

	if err := s.profiles.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}
