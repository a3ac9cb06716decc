// internal/services/application_service_test.go
package services_test

import (
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftkala/craftkala-backend/internal/models"
	"github.com/craftkala/craftkala-backend/internal/services"
	"github.com/craftkala/craftkala-backend/internal/store"
)

type fakeDocumentStore struct {
	mu   sync.Mutex
	keys []string
	fail bool
}

func (f *fakeDocumentStore) Put(key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("upstream unavailable")
	}
	f.keys = append(f.keys, key)
	return nil
}

func newIntakeFixture(t *testing.T) (*services.ApplicationService, *store.MemoryApplicationStore, *fakeDocumentStore) {
	t.Helper()
	apps := store.NewMemoryApplicationStore()
	docs := &fakeDocumentStore{}
	svc := services.NewApplicationService(apps, services.NewStorageServiceWithStore(docs), nil)
	return svc, apps, docs
}

func photoDataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
}

func pdfDataURL() string {
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("pdf-bytes"))
}

func validRequest() *services.ApplicationRequest {
	return &services.ApplicationRequest{
		BusinessInfo: services.BusinessInfoRequest{
			BusinessName: "Kala Crafts",
			OwnerName:    "Meera Sharma",
			Contact: services.ContactRequest{
				Email:   "meera@example.com",
				Phone:   "9876543210",
				Address: "12 MG Road, Jaipur, Rajasthan",
				Pincode: "302001",
			},
			SellerType: models.SellerTypeNonGST,
		},
		TaxIdentity: services.TaxIdentityRequest{
			PANNumber:     "ABCDE1234F",
			AadhaarNumber: "123456789012",
		},
		ProductIntent: services.ProductIntentRequest{
			Categories:    []string{"pottery"},
			Description:   "Handmade terracotta pottery and clay home decor items.",
			Materials:     "terracotta clay",
			PriceRange:    services.PriceRangeRequest{Min: "150", Max: "2500"},
			StockQuantity: 25,
		},
		Logistics: services.LogisticsRequest{
			PickupSameAsMain: true,
			DispatchTime:     "2-3 days",
			PackagingType:    "eco-friendly",
		},
		Payment: services.PaymentRequest{
			BankName:         "State Bank of India",
			AccountNumber:    "123456789012",
			IFSCCode:         "SBIN0001234",
			PaymentFrequency: models.PaymentFrequencyMonthly,
		},
		Documents: services.DocumentsRequest{
			ProfilePhoto:  photoDataURL(),
			ProductPhotos: []string{photoDataURL(), photoDataURL()},
			AadhaarProof:  pdfDataURL(),
		},
	}
}

func TestSubmitValidApplication(t *testing.T) {
	svc, _, docs := newIntakeFixture(t)
	applicant := uuid.New()

	app, err := svc.Submit(applicant, validRequest())
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusPendingReview, app.Status)
	assert.NotNil(t, app.SubmittedAt)
	assert.Equal(t, applicant, app.ApplicantID)
	assert.NotEmpty(t, app.Documents.ProfilePhotoRef)
	assert.Len(t, app.Documents.ProductPhotoRefs, 2)
	assert.NotEmpty(t, app.Documents.TaxProofRef)
	assert.Equal(t, app.Documents.TaxProofRef, app.TaxIdentity.AadhaarProofRef)
	assert.Len(t, docs.keys, 4)
}

func TestSubmitCollectsAllErrorsAtOnce(t *testing.T) {
	svc, _, _ := newIntakeFixture(t)

	req := validRequest()
	req.BusinessInfo.BusinessName = ""
	req.BusinessInfo.Contact.Phone = "1234567890" // must start with 6-9
	req.Payment.IFSCCode = "SBIN1001234"          // fifth char must be 0
	req.ProductIntent.PriceRange.Min = "3000"     // exceeds max

	_, err := svc.Submit(uuid.New(), req)
	require.Error(t, err)

	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "businessInfo.businessName")
	assert.Contains(t, validationErr.Fields, "businessInfo.contact.phone")
	assert.Contains(t, validationErr.Fields, "payment.ifscCode")
	assert.Contains(t, validationErr.Fields, "productIntent.priceRange")
}

func TestSubmitGSTSellerNeedsGSTIdentity(t *testing.T) {
	svc, _, _ := newIntakeFixture(t)

	req := validRequest()
	req.BusinessInfo.SellerType = models.SellerTypeGST
	req.TaxIdentity.AadhaarNumber = ""
	req.Documents.AadhaarProof = ""

	_, err := svc.Submit(uuid.New(), req)
	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "taxIdentity.gstNumber")
	assert.Contains(t, validationErr.Fields, "documents.gstCertificate")

	// Supplying both satisfies the branch.
	req.TaxIdentity.GSTNumber = "08ABCDE1234F1Z5"
	req.Documents.GSTCertificate = pdfDataURL()
	app, err := svc.Submit(uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, app.Documents.TaxProofRef, app.TaxIdentity.GSTCertificateRef)
}

func TestSubmitRejectsMismatchedTaxBranch(t *testing.T) {
	svc, apps, _ := newIntakeFixture(t)

	// A non-GST seller supplying GST identity is refused.
	req := validRequest()
	req.TaxIdentity.GSTNumber = "08ABCDE1234F1Z5"
	req.Documents.GSTCertificate = pdfDataURL()

	_, err := svc.Submit(uuid.New(), req)
	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "taxIdentity.gstNumber")
	assert.Contains(t, validationErr.Fields, "documents.gstCertificate")

	// And the mirror: a GST seller supplying Aadhaar identity.
	req = validRequest()
	req.BusinessInfo.SellerType = models.SellerTypeGST
	req.TaxIdentity.GSTNumber = "08ABCDE1234F1Z5"
	req.Documents.GSTCertificate = pdfDataURL()

	_, err = svc.Submit(uuid.New(), req)
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "taxIdentity.aadhaarNumber")
	assert.Contains(t, validationErr.Fields, "documents.aadhaarProof")

	// A clean GST submission persists only the GST branch.
	req.TaxIdentity.AadhaarNumber = ""
	req.Documents.AadhaarProof = ""
	app, err := svc.Submit(uuid.New(), req)
	require.NoError(t, err)
	assert.Empty(t, app.TaxIdentity.AadhaarNumber)
	assert.Empty(t, app.TaxIdentity.AadhaarProofRef)
	assert.NotEmpty(t, app.TaxIdentity.GSTCertificateRef)

	stored, err := apps.Get(app.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.TaxIdentity.AadhaarNumber)
}

func TestSubmitNonGSTSellerNeedsAadhaar(t *testing.T) {
	svc, _, _ := newIntakeFixture(t)

	req := validRequest()
	req.TaxIdentity.AadhaarNumber = ""

	_, err := svc.Submit(uuid.New(), req)
	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "taxIdentity.aadhaarNumber")
}

func TestSubmitPasswordRules(t *testing.T) {
	svc, _, _ := newIntakeFixture(t)

	req := validRequest()
	req.Password = "abc"
	_, err := svc.Submit(uuid.New(), req)
	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "password")

	req = validRequest()
	req.Password = "secret123"
	req.ConfirmPassword = "different"
	_, err = svc.Submit(uuid.New(), req)
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "confirmPassword")

	// Credentials are optional; both empty is fine.
	req = validRequest()
	_, err = svc.Submit(uuid.New(), req)
	assert.NoError(t, err)
}

func TestSubmitPickupAddressRequiredWhenDifferent(t *testing.T) {
	svc, _, _ := newIntakeFixture(t)

	req := validRequest()
	req.Logistics.PickupSameAsMain = false
	req.Logistics.PickupAddress = ""

	_, err := svc.Submit(uuid.New(), req)
	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "logistics.pickupAddress")
}

func TestSubmitRejectsDuplicateActiveApplication(t *testing.T) {
	svc, _, _ := newIntakeFixture(t)
	applicant := uuid.New()

	_, err := svc.Submit(applicant, validRequest())
	require.NoError(t, err)

	_, err = svc.Submit(applicant, validRequest())
	assert.ErrorIs(t, err, services.ErrDuplicateActiveApplication)

	// A different applicant is unaffected.
	_, err = svc.Submit(uuid.New(), validRequest())
	assert.NoError(t, err)
}

func TestSubmitAcceptsExistingDocumentReferences(t *testing.T) {
	svc, _, docs := newIntakeFixture(t)

	req := validRequest()
	req.Documents.ProfilePhoto = "applications/prior/profile.png"

	app, err := svc.Submit(uuid.New(), req)
	require.NoError(t, err)

	// The reference passes through untouched; only the three data URLs
	// were stored.
	assert.Equal(t, "applications/prior/profile.png", app.Documents.ProfilePhotoRef)
	assert.Len(t, docs.keys, 3)
}

func TestSubmitDocumentStorageFailure(t *testing.T) {
	svc, apps, docs := newIntakeFixture(t)
	docs.fail = true

	_, err := svc.Submit(uuid.New(), validRequest())
	require.Error(t, err)

	var storageErr *services.DocumentStorageError
	assert.ErrorAs(t, err, &storageErr)

	// Nothing persisted on failure.
	counts, err := apps.CountByStatus()
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestResubmitOnlyFromRejected(t *testing.T) {
	svc, apps, _ := newIntakeFixture(t)
	applicant := uuid.New()

	app, err := svc.Submit(applicant, validRequest())
	require.NoError(t, err)

	// Still pending: resubmission is not allowed.
	_, err = svc.Resubmit(applicant, app.ID, validRequest())
	assert.ErrorIs(t, err, services.ErrInvalidStateTransition)

	ok, err := apps.TransitionStatus(app.ID,
		models.ApplicationStatusPendingReview, models.ApplicationStatusRejected,
		map[string]interface{}{"rejection_reason": "Blurry product photos"})
	require.NoError(t, err)
	require.True(t, ok)

	req := validRequest()
	req.BusinessInfo.BusinessName = "Kala Crafts Studio"
	updated, err := svc.Resubmit(applicant, app.ID, req)
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusPendingReview, updated.Status)
	assert.Empty(t, updated.RejectionReason)
	assert.Nil(t, updated.DecidedAt)
	assert.Nil(t, updated.DecidedBy)
	assert.Equal(t, "Kala Crafts Studio", updated.BusinessInfo.BusinessName)
}

func TestResubmitKeepsExistingDocuments(t *testing.T) {
	svc, apps, _ := newIntakeFixture(t)
	applicant := uuid.New()

	app, err := svc.Submit(applicant, validRequest())
	require.NoError(t, err)
	originalDocs := app.Documents

	ok, err := apps.TransitionStatus(app.ID,
		models.ApplicationStatusPendingReview, models.ApplicationStatusRejected,
		map[string]interface{}{"rejection_reason": "Update your story"})
	require.NoError(t, err)
	require.True(t, ok)

	// Resubmit without re-uploading any documents.
	req := validRequest()
	req.Documents = services.DocumentsRequest{}
	updated, err := svc.Resubmit(applicant, app.ID, req)
	require.NoError(t, err)

	assert.Equal(t, originalDocs.ProfilePhotoRef, updated.Documents.ProfilePhotoRef)
	assert.Equal(t, originalDocs.ProductPhotoRefs, updated.Documents.ProductPhotoRefs)
	assert.Equal(t, originalDocs.TaxProofRef, updated.Documents.TaxProofRef)
	assert.Equal(t, originalDocs.TaxProofRef, updated.TaxIdentity.AadhaarProofRef)
}

func TestResubmitSwitchingSellerTypeNeedsNewProof(t *testing.T) {
	svc, apps, _ := newIntakeFixture(t)
	applicant := uuid.New()

	app, err := svc.Submit(applicant, validRequest())
	require.NoError(t, err)

	ok, err := apps.TransitionStatus(app.ID,
		models.ApplicationStatusPendingReview, models.ApplicationStatusRejected,
		map[string]interface{}{"rejection_reason": "Register for GST first"})
	require.NoError(t, err)
	require.True(t, ok)

	// Switching to GST: the previously stored Aadhaar proof cannot stand in
	// for a GST certificate.
	req := validRequest()
	req.BusinessInfo.SellerType = models.SellerTypeGST
	req.TaxIdentity.GSTNumber = "08ABCDE1234F1Z5"
	req.TaxIdentity.AadhaarNumber = ""
	req.Documents.AadhaarProof = ""

	_, err = svc.Resubmit(applicant, app.ID, req)
	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "documents.gstCertificate")

	req.Documents.GSTCertificate = pdfDataURL()
	updated, err := svc.Resubmit(applicant, app.ID, req)
	require.NoError(t, err)
	assert.NotEmpty(t, updated.TaxIdentity.GSTCertificateRef)
	assert.Empty(t, updated.TaxIdentity.AadhaarNumber)
	assert.Empty(t, updated.TaxIdentity.AadhaarProofRef)
}

func TestResubmitOwnership(t *testing.T) {
	svc, apps, _ := newIntakeFixture(t)
	applicant := uuid.New()

	app, err := svc.Submit(applicant, validRequest())
	require.NoError(t, err)

	ok, err := apps.TransitionStatus(app.ID,
		models.ApplicationStatusPendingReview, models.ApplicationStatusRejected, nil)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Resubmit(uuid.New(), app.ID, validRequest())
	assert.ErrorIs(t, err, services.ErrNotAuthorized)
}

func TestUploadDocuments(t *testing.T) {
	svc, _, docs := newIntakeFixture(t)
	applicant := uuid.New()

	refs, err := svc.UploadDocuments(applicant, []services.DocumentUploadRequest{
		{Name: "profile-photo", Data: photoDataURL()},
		{Name: "gst-certificate", Data: pdfDataURL()},
	})
	require.NoError(t, err)

	require.Len(t, refs, 2)
	assert.Contains(t, refs["profile-photo"], "applications/"+applicant.String()+"/")
	assert.Contains(t, refs["gst-certificate"], "applications/"+applicant.String()+"/")
	assert.Len(t, docs.keys, 2)
}

func TestUploadDocumentsValidation(t *testing.T) {
	svc, _, docs := newIntakeFixture(t)

	_, err := svc.UploadDocuments(uuid.New(), nil)
	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "documents")

	_, err = svc.UploadDocuments(uuid.New(), []services.DocumentUploadRequest{
		{Name: "../escape", Data: photoDataURL()},
		{Name: "craft-video", Data: "not-a-data-url"},
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "documents.0.name")
	assert.Contains(t, validationErr.Fields, "documents.1.data")
	assert.Empty(t, docs.keys)
}

func TestUploadDocumentsStorageFailure(t *testing.T) {
	svc, _, docs := newIntakeFixture(t)
	docs.fail = true

	_, err := svc.UploadDocuments(uuid.New(), []services.DocumentUploadRequest{
		{Name: "profile-photo", Data: photoDataURL()},
	})
	var storageErr *services.DocumentStorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestGetForApplicantOwnership(t *testing.T) {
	svc, _, _ := newIntakeFixture(t)
	applicant := uuid.New()

	app, err := svc.Submit(applicant, validRequest())
	require.NoError(t, err)

	got, err := svc.GetForApplicant(applicant, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)

	_, err = svc.GetForApplicant(uuid.New(), app.ID)
	assert.ErrorIs(t, err, services.ErrNotAuthorized)

	_, err = svc.GetForApplicant(applicant, uuid.New())
	assert.ErrorIs(t, err, services.ErrApplicationNotFound)
}
