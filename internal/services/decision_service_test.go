// internal/services/decision_service_test.go
package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftkala/craftkala-backend/internal/models"
	"github.com/craftkala/craftkala-backend/internal/services"
	"github.com/craftkala/craftkala-backend/internal/store"
)

func newReviewFixture(t *testing.T) (*services.DecisionService, *store.MemoryApplicationStore, *store.MemoryProfileStore) {
	t.Helper()
	apps := store.NewMemoryApplicationStore()
	profiles := store.NewMemoryProfileStore()
	svc := services.NewDecisionService(apps, profiles, nil, nil)
	return svc, apps, profiles
}

func pendingApplication(t *testing.T, apps *store.MemoryApplicationStore, applicant uuid.UUID) *models.SellerApplication {
	t.Helper()
	now := time.Now()
	app := &models.SellerApplication{
		ApplicantID: applicant,
		BusinessInfo: models.BusinessInfo{
			BusinessName: "Kala Crafts",
			OwnerName:    "Meera Sharma",
			Contact: models.ContactInfo{
				Email:   "meera@example.com",
				Phone:   "9876543210",
				Address: "12 MG Road, Jaipur, Rajasthan",
				Pincode: "302001",
			},
			SellerType: models.SellerTypeNonGST,
		},
		ProductIntent: models.ProductIntent{
			Categories: []string{"pottery"},
			Materials:  "terracotta clay",
		},
		Narrative: models.Narrative{Story: "Third-generation potter from Jaipur."},
		Documents: models.DocumentSet{
			ProfilePhotoRef:  "applications/x/profile.png",
			ProductPhotoRefs: []string{"applications/x/p1.png"},
			TaxProofRef:      "applications/x/aadhaar.pdf",
		},
		Status:      models.ApplicationStatusPendingReview,
		SubmittedAt: &now,
	}
	require.NoError(t, apps.Create(app))
	return app
}

func TestApprovePendingApplication(t *testing.T) {
	svc, apps, profiles := newReviewFixture(t)
	applicant := uuid.New()
	admin := uuid.New()
	app := pendingApplication(t, apps, applicant)

	approved, profile, err := svc.Approve(admin, app.ID, "Verified documents")
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusApproved, approved.Status)
	assert.Equal(t, "Verified documents", approved.ApprovalNotes)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, admin, *approved.DecidedBy)
	assert.NotNil(t, approved.DecidedAt)

	// Profile is live and carries the application content.
	assert.True(t, profile.IsActive)
	assert.Equal(t, app.ID, profile.ApplicationID)
	assert.Equal(t, applicant, profile.UserID)
	assert.Equal(t, "Kala Crafts", profile.BusinessName)
	assert.Equal(t, "Third-generation potter from Jaipur.", profile.Story)

	// The applicant is now an artisan.
	assert.Equal(t, models.UserTypeArtisan, profiles.UserTypes[applicant])
}

func TestApproveIsIdempotent(t *testing.T) {
	svc, apps, _ := newReviewFixture(t)
	app := pendingApplication(t, apps, uuid.New())
	admin := uuid.New()

	_, first, err := svc.Approve(admin, app.ID, "")
	require.NoError(t, err)

	_, second, err := svc.Approve(uuid.New(), app.ID, "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestConcurrentApprovalsConverge(t *testing.T) {
	svc, apps, _ := newReviewFixture(t)
	app := pendingApplication(t, apps, uuid.New())

	const reviewers = 8
	profileIDs := make([]uuid.UUID, reviewers)
	errs := make([]error, reviewers)

	var wg sync.WaitGroup
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, profile, err := svc.Approve(uuid.New(), app.ID, "")
			errs[i] = err
			if profile != nil {
				profileIDs[i] = profile.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < reviewers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, profileIDs[0], profileIDs[i], "all reviewers must see the same profile")
	}
}

func TestRejectRequiresReason(t *testing.T) {
	svc, apps, _ := newReviewFixture(t)
	app := pendingApplication(t, apps, uuid.New())

	_, err := svc.Reject(uuid.New(), app.ID, "   ")
	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "reason")

	// The application is untouched.
	current, err := apps.Get(app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPendingReview, current.Status)
}

func TestRejectPendingApplication(t *testing.T) {
	svc, apps, _ := newReviewFixture(t)
	app := pendingApplication(t, apps, uuid.New())
	admin := uuid.New()

	rejected, err := svc.Reject(admin, app.ID, "Product photos are too blurry")
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusRejected, rejected.Status)
	assert.Equal(t, "Product photos are too blurry", rejected.RejectionReason)
	require.NotNil(t, rejected.DecidedBy)
	assert.Equal(t, admin, *rejected.DecidedBy)
}

func TestDecisionsAreExclusive(t *testing.T) {
	svc, apps, _ := newReviewFixture(t)

	// Reject after approve fails.
	app := pendingApplication(t, apps, uuid.New())
	_, _, err := svc.Approve(uuid.New(), app.ID, "")
	require.NoError(t, err)
	_, err = svc.Reject(uuid.New(), app.ID, "changed my mind")
	assert.ErrorIs(t, err, services.ErrInvalidStateTransition)

	// Approve after reject fails.
	other := pendingApplication(t, apps, uuid.New())
	_, err = svc.Reject(uuid.New(), other.ID, "incomplete documents")
	require.NoError(t, err)
	_, _, err = svc.Approve(uuid.New(), other.ID, "")
	assert.ErrorIs(t, err, services.ErrInvalidStateTransition)
}

func TestDecisionOnUnknownApplication(t *testing.T) {
	svc, _, _ := newReviewFixture(t)

	_, _, err := svc.Approve(uuid.New(), uuid.New(), "")
	assert.ErrorIs(t, err, services.ErrApplicationNotFound)

	_, err = svc.Reject(uuid.New(), uuid.New(), "whatever")
	assert.ErrorIs(t, err, services.ErrApplicationNotFound)
}

func TestRejectResubmitApproveCycle(t *testing.T) {
	apps := store.NewMemoryApplicationStore()
	profiles := store.NewMemoryProfileStore()
	decisions := services.NewDecisionService(apps, profiles, nil, nil)
	intake := services.NewApplicationService(apps, services.NewStorageServiceWithStore(&fakeDocumentStore{}), nil)

	applicant := uuid.New()
	app, err := intake.Submit(applicant, validRequest())
	require.NoError(t, err)

	_, err = decisions.Reject(uuid.New(), app.ID, "Please add a craft story")
	require.NoError(t, err)

	req := validRequest()
	req.Narrative.Story = "Our family has made blue pottery for four generations."
	resubmitted, err := intake.Resubmit(applicant, app.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPendingReview, resubmitted.Status)

	_, profile, err := decisions.Approve(uuid.New(), app.ID, "")
	require.NoError(t, err)
	assert.True(t, profile.IsActive)
	assert.Equal(t, "Our family has made blue pottery for four generations.", profile.Story)
}

func TestApplicantInvisibleUntilApproved(t *testing.T) {
	svc, apps, profiles := newReviewFixture(t)
	artisans := services.NewArtisanService(profiles)
	app := pendingApplication(t, apps, uuid.New())

	// No profile before the decision.
	listed, total, err := artisans.ListPublic(store.ProfileFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, listed)

	_, profile, err := svc.Approve(uuid.New(), app.ID, "")
	require.NoError(t, err)

	listed, total, err = artisans.ListPublic(store.ProfileFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, listed, 1)
	assert.Equal(t, profile.ID, listed[0].ID)

	// Deactivation hides the artisan again.
	profile.IsActive = false
	require.NoError(t, profiles.Update(profile))

	_, total, err = artisans.ListPublic(store.ProfileFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = artisans.GetPublic(profile.ID)
	assert.ErrorIs(t, err, services.ErrArtisanNotFound)
}

func TestReviewQueueOrdering(t *testing.T) {
	svc, apps, _ := newReviewFixture(t)

	first := pendingApplication(t, apps, uuid.New())
	time.Sleep(2 * time.Millisecond)
	second := pendingApplication(t, apps, uuid.New())

	queue, total, err := svc.ListQueue(store.ApplicationFilter{
		Status: models.ApplicationStatusPendingReview,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, queue, 2)

	// Oldest submissions come first.
	assert.Equal(t, first.ID, queue[0].ID)
	assert.Equal(t, second.ID, queue[1].ID)
}
