// internal/store/store.go
package store

import (
	"errors"

	"github.com/google/uuid"

	"github.com/craftkala/craftkala-backend/internal/models"
)

var ErrNotFound = errors.New("record not found")

// ApplicationFilter narrows review-queue and listing queries.
type ApplicationFilter struct {
	Status     models.ApplicationStatus
	SellerType models.SellerType
	Search     string
	Page       int
	Limit      int
}

// ApplicationStore persists seller applications. All status changes go
// through TransitionStatus so concurrent reviewers cannot double-decide:
// the update applies only when the row is still in the expected status,
// and the bool result reports whether this caller won.
type ApplicationStore interface {
	Create(app *models.SellerApplication) error
	Get(id uuid.UUID) (*models.SellerApplication, error)

	// UpdateContent replaces the form sections of an application, but only
	// while it is still in the expected status. Returns false when the
	// status changed underneath the caller; review fields are untouched.
	UpdateContent(id uuid.UUID, expected models.ApplicationStatus, app *models.SellerApplication) (bool, error)

	// HasActive reports whether the applicant already has an application
	// in pending_review.
	HasActive(applicantID uuid.UUID) (bool, error)

	ListByApplicant(applicantID uuid.UUID) ([]models.SellerApplication, error)
	List(filter ApplicationFilter) ([]models.SellerApplication, int64, error)
	CountByStatus() (map[models.ApplicationStatus]int64, error)

	// TransitionStatus atomically moves an application from one status to
	// another, applying extra column updates in the same statement. Returns
	// false when the application is no longer in the "from" status.
	TransitionStatus(id uuid.UUID, from, to models.ApplicationStatus, fields map[string]interface{}) (bool, error)
}

// ProfileFilter narrows the public artisan directory.
type ProfileFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// ProfileStore persists artisan profiles. ActivateForApplication is the
// only creation path and is idempotent per application: a second call for
// the same application returns the existing profile untouched.
type ProfileStore interface {
	ActivateForApplication(app *models.SellerApplication) (*models.ArtisanProfile, error)
	Get(id uuid.UUID) (*models.ArtisanProfile, error)
	GetByApplication(applicationID uuid.UUID) (*models.ArtisanProfile, error)
	GetByUser(userID uuid.UUID) (*models.ArtisanProfile, error)
	ListActive(filter ProfileFilter) ([]models.ArtisanProfile, int64, error)
	Update(profile *models.ArtisanProfile) error
}
