// internal/services/artisan_service_test.go
package services_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftkala/craftkala-backend/internal/models"
	"github.com/craftkala/craftkala-backend/internal/services"
	"github.com/craftkala/craftkala-backend/internal/store"
)

func newArtisanFixture(t *testing.T) (*services.ArtisanService, uuid.UUID) {
	t.Helper()
	profiles := store.NewMemoryProfileStore()
	userID := uuid.New()

	_, err := profiles.ActivateForApplication(&models.SellerApplication{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		ApplicantID: userID,
		BusinessInfo: models.BusinessInfo{
			BusinessName: "Kala Crafts",
			OwnerName:    "Meera Sharma",
		},
		ProductIntent: models.ProductIntent{
			Categories: []string{"pottery"},
			Materials:  "terracotta clay",
		},
	})
	require.NoError(t, err)

	return services.NewArtisanService(profiles), userID
}

func TestUpdateOwnAppliesEdits(t *testing.T) {
	svc, userID := newArtisanFixture(t)

	updated, err := svc.UpdateOwn(userID, &services.UpdateProfileRequest{
		Story:      "Third-generation potter from Jaipur.",
		Categories: []string{"pottery", "home-decor"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Third-generation potter from Jaipur.", updated.Story)
	assert.Len(t, updated.Categories, 2)
	// Untouched fields keep their values.
	assert.Equal(t, "Kala Crafts", updated.BusinessName)
	assert.Equal(t, "terracotta clay", updated.Materials)
}

func TestUpdateOwnValidatesFields(t *testing.T) {
	svc, userID := newArtisanFixture(t)

	_, err := svc.UpdateOwn(userID, &services.UpdateProfileRequest{
		BusinessName: "K",
		Story:        strings.Repeat("a", 2001),
	})
	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "business_name")
	assert.Contains(t, validationErr.Fields, "story")
}

func TestUpdateOwnUnknownUser(t *testing.T) {
	svc, _ := newArtisanFixture(t)

	_, err := svc.UpdateOwn(uuid.New(), &services.UpdateProfileRequest{Story: "hello"})
	assert.ErrorIs(t, err, services.ErrArtisanNotFound)
}
