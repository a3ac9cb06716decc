// internal/services/decision_service.go
package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/craftkala/craftkala-backend/internal/models"
	"github.com/craftkala/craftkala-backend/internal/store"
)

// DecisionService executes admin review decisions. Concurrent decisions on
// the same application are serialized by the store's conditional status
// update: exactly one reviewer wins, and a repeated approval converges on
// the already-activated profile instead of failing.
type DecisionService struct {
	apps          store.ApplicationStore
	profiles      store.ProfileStore
	notifications *NotificationService
	audit         *AuditService
}

func NewDecisionService(apps store.ApplicationStore, profiles store.ProfileStore, notifications *NotificationService, audit *AuditService) *DecisionService {
	return &DecisionService{
		apps:          apps,
		profiles:      profiles,
		notifications: notifications,
		audit:         audit,
	}
}

// Approve moves a pending application to approved and activates the
// artisan profile. Approving an already-approved application is a no-op
// that returns the existing profile.
func (s *DecisionService) Approve(adminID, appID uuid.UUID, notes string) (*models.SellerApplication, *models.ArtisanProfile, error) {
	app, err := s.apps.Get(appID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrApplicationNotFound
		}
		return nil, nil, err
	}

	now := time.Now()
	ok, err := s.apps.TransitionStatus(appID,
		models.ApplicationStatusPendingReview, models.ApplicationStatusApproved,
		map[string]interface{}{
			"approval_notes": notes,
			"decided_at":     &now,
			"decided_by":     &adminID,
		})
	if err != nil {
		return nil, nil, err
	}

	if !ok {
		// Lost the race or the application was never pending. An approved
		// application converges: return the outcome the winner produced.
		current, err := s.apps.Get(appID)
		if err != nil {
			return nil, nil, err
		}
		if current.Status != models.ApplicationStatusApproved {
			return nil, nil, ErrInvalidStateTransition
		}
		profile, err := s.profiles.ActivateForApplication(current)
		if err != nil {
			return nil, nil, err
		}
		return current, profile, nil
	}

	app.Status = models.ApplicationStatusApproved
	app.ApprovalNotes = notes
	app.DecidedAt = &now
	app.DecidedBy = &adminID

	profile, err := s.profiles.ActivateForApplication(app)
	if err != nil {
		return nil, nil, err
	}

	logrus.WithFields(logrus.Fields{
		"application_id": appID,
		"admin_id":       adminID,
		"profile_id":     profile.ID,
	}).Info("Seller application approved")

	appRef := appID
	adminRef := adminID
	s.audit.Record(AuditEntry{
		UserID:       &adminRef,
		Action:       "application.approve",
		ResourceType: "seller_application",
		ResourceID:   &appRef,
		NewValues: models.JSONB{
			"status":         string(models.ApplicationStatusApproved),
			"approval_notes": notes,
			"profile_id":     profile.ID.String(),
		},
	})

	if s.notifications != nil {
		go s.notifications.NotifyApplicationApproved(app)
	}
	return app, profile, nil
}

// Reject moves a pending application to rejected. A reason is mandatory;
// it is what the applicant sees and what resubmission later clears.
func (s *DecisionService) Reject(adminID, appID uuid.UUID, reason string) (*models.SellerApplication, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &ValidationError{Fields: map[string]string{
			"reason": "A rejection reason is required",
		}}
	}

	app, err := s.apps.Get(appID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	now := time.Now()
	ok, err := s.apps.TransitionStatus(appID,
		models.ApplicationStatusPendingReview, models.ApplicationStatusRejected,
		map[string]interface{}{
			"rejection_reason": reason,
			"decided_at":       &now,
			"decided_by":       &adminID,
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidStateTransition
	}

	app.Status = models.ApplicationStatusRejected
	app.RejectionReason = reason
	app.DecidedAt = &now
	app.DecidedBy = &adminID

	logrus.WithFields(logrus.Fields{
		"application_id": appID,
		"admin_id":       adminID,
	}).Info("Seller application rejected")

	appRef := appID
	adminRef := adminID
	s.audit.Record(AuditEntry{
		UserID:       &adminRef,
		Action:       "application.reject",
		ResourceType: "seller_application",
		ResourceID:   &appRef,
		NewValues: models.JSONB{
			"status":           string(models.ApplicationStatusRejected),
			"rejection_reason": reason,
		},
	})

	if s.notifications != nil {
		go s.notifications.NotifyApplicationRejected(app, reason)
	}
	return app, nil
}

// Get returns an application for admin review, regardless of owner.
func (s *DecisionService) Get(appID uuid.UUID) (*models.SellerApplication, error) {
	app, err := s.apps.Get(appID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// ListQueue returns the review queue, oldest submissions first.
func (s *DecisionService) ListQueue(filter store.ApplicationFilter) ([]models.SellerApplication, int64, error) {
	return s.apps.List(filter)
}
