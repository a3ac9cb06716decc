// internal/services/application_service.go
package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/craftkala/craftkala-backend/internal/models"
	"github.com/craftkala/craftkala-backend/internal/store"
	"github.com/craftkala/craftkala-backend/internal/utils"
)

// ApplicationService owns the seller onboarding intake: a submission is
// validated as a whole (presence, format, then cross-field rules), its
// documents are stored, and it lands directly in pending_review.
type ApplicationService struct {
	apps          store.ApplicationStore
	storage       *StorageService
	notifications *NotificationService
}

func NewApplicationService(apps store.ApplicationStore, storage *StorageService, notifications *NotificationService) *ApplicationService {
	return &ApplicationService{
		apps:          apps,
		storage:       storage,
		notifications: notifications,
	}
}

// Request payload, camelCase to match the storefront form.

type ContactRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,indian_mobile"`
	Address string `json:"address" validate:"required,min=10"`
	Pincode string `json:"pincode" validate:"required,pincode"`
}

type BusinessInfoRequest struct {
	BusinessName string            `json:"businessName" validate:"required,min=2,max=255"`
	OwnerName    string            `json:"ownerName" validate:"required,min=2,max=255"`
	Contact      ContactRequest    `json:"contact"`
	SellerType   models.SellerType `json:"sellerType" validate:"required,oneof=gst non-gst"`
}

type TaxIdentityRequest struct {
	PANNumber     string `json:"panNumber" validate:"required,pan_number"`
	GSTNumber     string `json:"gstNumber" validate:"omitempty,gst_number"`
	AadhaarNumber string `json:"aadhaarNumber" validate:"omitempty,aadhaar_number"`
}

type PriceRangeRequest struct {
	Min string `json:"min" validate:"required"`
	Max string `json:"max" validate:"required"`
}

type ProductIntentRequest struct {
	Categories    []string          `json:"categories" validate:"required,min=1,max=5"`
	Description   string            `json:"description" validate:"required,min=20,max=2000"`
	Materials     string            `json:"materials" validate:"required,max=255"`
	PriceRange    PriceRangeRequest `json:"priceRange"`
	StockQuantity int               `json:"stockQuantity" validate:"required,min=1"`
}

type LogisticsRequest struct {
	PickupSameAsMain bool   `json:"pickupSameAsMain"`
	PickupAddress    string `json:"pickupAddress" validate:"omitempty,min=10"`
	DispatchTime     string `json:"dispatchTime" validate:"required"`
	PackagingType    string `json:"packagingType" validate:"required"`
}

type PaymentRequest struct {
	BankName         string                  `json:"bankName" validate:"required,min=2,max=100"`
	AccountNumber    string                  `json:"accountNumber" validate:"required,bank_account"`
	IFSCCode         string                  `json:"ifscCode" validate:"required,ifsc_code"`
	UPIID            string                  `json:"upiId" validate:"omitempty,max=100"`
	PaymentFrequency models.PaymentFrequency `json:"paymentFrequency" validate:"required,oneof=weekly fortnightly monthly"`
}

type NarrativeRequest struct {
	Story string `json:"story" validate:"omitempty,max=2000"`
}

// DocumentsRequest fields carry base64 data URLs. On resubmission an empty
// field keeps the previously stored document.
type DocumentsRequest struct {
	ProfilePhoto   string   `json:"profilePhoto"`
	ProductPhotos  []string `json:"productPhotos" validate:"omitempty,max=8"`
	GSTCertificate string   `json:"gstCertificate"`
	AadhaarProof   string   `json:"aadhaarProof"`
	CraftVideo     string   `json:"craftVideo"`
}

type ApplicationRequest struct {
	BusinessInfo  BusinessInfoRequest  `json:"businessInfo"`
	TaxIdentity   TaxIdentityRequest   `json:"taxIdentity"`
	ProductIntent ProductIntentRequest `json:"productIntent"`
	Logistics     LogisticsRequest     `json:"logistics"`
	Payment       PaymentRequest       `json:"payment"`
	Narrative     NarrativeRequest     `json:"narrative"`
	Documents     DocumentsRequest     `json:"documents"`

	// Optional credentials captured by the combined signup-and-apply form.
	Password        string `json:"password" validate:"omitempty,min=6"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Submit validates and persists a new application. The whole form is
// checked in one pass so the applicant sees every problem at once.
func (s *ApplicationService) Submit(applicantID uuid.UUID, req *ApplicationRequest) (*models.SellerApplication, error) {
	if err := s.validate(req, nil); err != nil {
		return nil, err
	}

	active, err := s.apps.HasActive(applicantID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrDuplicateActiveApplication
	}

	docs, taxRefs, err := s.storeDocuments(applicantID, &req.Documents, nil)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	app := &models.SellerApplication{
		ApplicantID:   applicantID,
		BusinessInfo:  req.BusinessInfo.toModel(),
		TaxIdentity:   req.TaxIdentity.toModel(req.BusinessInfo.SellerType, taxRefs),
		ProductIntent: req.ProductIntent.toModel(),
		Logistics:     req.Logistics.toModel(),
		Payment:       req.Payment.toModel(),
		Narrative: models.Narrative{
			Story:         req.Narrative.Story,
			CraftVideoRef: docs.CraftVideoRef,
		},
		Documents:   *docs,
		Status:      models.ApplicationStatusPendingReview,
		SubmittedAt: &now,
	}

	if err := s.apps.Create(app); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"application_id": app.ID,
		"applicant_id":   applicantID,
		"seller_type":    app.BusinessInfo.SellerType,
	}).Info("Seller application submitted")

	if s.notifications != nil {
		go s.notifications.NotifyApplicationSubmitted(app)
	}
	return app, nil
}

// Resubmit replaces a rejected application's content and queues it for a
// fresh review. Only the rejected status permits this; the conditional
// update guards against a racing decision.
func (s *ApplicationService) Resubmit(applicantID, appID uuid.UUID, req *ApplicationRequest) (*models.SellerApplication, error) {
	app, err := s.apps.Get(appID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if app.ApplicantID != applicantID {
		return nil, ErrNotAuthorized
	}
	if app.Status != models.ApplicationStatusRejected {
		return nil, ErrInvalidStateTransition
	}

	if err := s.validate(req, app); err != nil {
		return nil, err
	}

	docs, taxRefs, err := s.storeDocuments(applicantID, &req.Documents, &app.Documents)
	if err != nil {
		return nil, err
	}

	prevTax := app.TaxIdentity
	app.BusinessInfo = req.BusinessInfo.toModel()
	app.TaxIdentity = req.TaxIdentity.toModel(req.BusinessInfo.SellerType, taxRefs)
	switch req.BusinessInfo.SellerType {
	case models.SellerTypeGST:
		if app.TaxIdentity.GSTCertificateRef == "" {
			app.TaxIdentity.GSTCertificateRef = prevTax.GSTCertificateRef
		}
	case models.SellerTypeNonGST:
		if app.TaxIdentity.AadhaarProofRef == "" {
			app.TaxIdentity.AadhaarProofRef = prevTax.AadhaarProofRef
		}
	}
	app.ProductIntent = req.ProductIntent.toModel()
	app.Logistics = req.Logistics.toModel()
	app.Payment = req.Payment.toModel()
	app.Narrative = models.Narrative{
		Story:         req.Narrative.Story,
		CraftVideoRef: docs.CraftVideoRef,
	}
	app.Documents = *docs

	// Content is replaced while the application is still rejected; the
	// status flips afterwards. Either write loses to a racing decision.
	ok, err := s.apps.UpdateContent(appID, models.ApplicationStatusRejected, app)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidStateTransition
	}

	now := time.Now()
	ok, err = s.apps.TransitionStatus(appID,
		models.ApplicationStatusRejected, models.ApplicationStatusPendingReview,
		map[string]interface{}{
			"rejection_reason": "",
			"submitted_at":     &now,
			"decided_at":       nil,
			"decided_by":       nil,
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidStateTransition
	}

	app.Status = models.ApplicationStatusPendingReview
	app.RejectionReason = ""
	app.SubmittedAt = &now
	app.DecidedAt = nil
	app.DecidedBy = nil

	logrus.WithFields(logrus.Fields{
		"application_id": app.ID,
		"applicant_id":   applicantID,
	}).Info("Seller application resubmitted")

	if s.notifications != nil {
		go s.notifications.NotifyApplicationResubmitted(app)
	}
	return app, nil
}

// GetForApplicant returns an application only to its owner.
func (s *ApplicationService) GetForApplicant(applicantID, appID uuid.UUID) (*models.SellerApplication, error) {
	app, err := s.apps.Get(appID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if app.ApplicantID != applicantID {
		return nil, ErrNotAuthorized
	}
	return app, nil
}

func (s *ApplicationService) ListForApplicant(applicantID uuid.UUID) ([]models.SellerApplication, error) {
	return s.apps.ListByApplicant(applicantID)
}

// DocumentUploadRequest is one artifact uploaded ahead of the form: the
// returned reference goes into the matching documents field on submit.
type DocumentUploadRequest struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

var documentNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// UploadDocuments stores artifacts before the application exists, so large
// files upload separately from the form payload. It returns a name-keyed
// map of references.
func (s *ApplicationService) UploadDocuments(applicantID uuid.UUID, docs []DocumentUploadRequest) (map[string]string, error) {
	fields := make(map[string]string)
	if len(docs) == 0 {
		fields["documents"] = "At least one document is required"
	}
	for i, doc := range docs {
		if !documentNameRegex.MatchString(doc.Name) {
			fields[fmt.Sprintf("documents.%d.name", i)] = "Name must be lowercase letters, digits, dashes or underscores"
		}
		if !strings.HasPrefix(doc.Data, "data:") {
			fields[fmt.Sprintf("documents.%d.data", i)] = "Data must be a base64 data URL"
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	prefix := "applications/" + applicantID.String()
	refs := make(map[string]string, len(docs))
	for _, doc := range docs {
		ref, err := s.storage.StoreDataURL(prefix, doc.Name, doc.Data)
		if err != nil {
			return nil, err
		}
		refs[doc.Name] = ref
	}

	logrus.WithFields(logrus.Fields{
		"applicant_id": applicantID,
		"count":        len(refs),
	}).Info("Application documents uploaded")
	return refs, nil
}

// validate runs the struct tags first, then the cross-field rules, and
// returns all failures in one field-keyed error. On resubmission the prior
// application supplies documents that may be kept instead of re-uploaded.
func (s *ApplicationService) validate(req *ApplicationRequest, existing *models.SellerApplication) error {
	fields := make(map[string]string)

	if err := utils.ValidateStruct(req); err != nil {
		for k, v := range utils.FieldErrorMap(err) {
			fields[k] = v
		}
	}

	for k, v := range crossFieldErrors(req, existing) {
		if _, exists := fields[k]; !exists {
			fields[k] = v
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// crossFieldErrors checks the rules that span more than one field: exactly
// one tax identity branch, matching the declared seller type, the price
// range must be ordered, pickup needs an address when it differs from the
// main one, and optional credentials must be confirmed.
func crossFieldErrors(req *ApplicationRequest, existing *models.SellerApplication) map[string]string {
	fields := make(map[string]string)

	switch req.BusinessInfo.SellerType {
	case models.SellerTypeGST:
		if req.TaxIdentity.GSTNumber == "" {
			fields["taxIdentity.gstNumber"] = "GST number is required for GST-registered sellers"
		}
		if req.TaxIdentity.AadhaarNumber != "" {
			fields["taxIdentity.aadhaarNumber"] = "Aadhaar number applies only to non-GST sellers"
		}
		if req.Documents.AadhaarProof != "" {
			fields["documents.aadhaarProof"] = "Aadhaar proof applies only to non-GST sellers"
		}
		hasExisting := existing != nil && existing.TaxIdentity.GSTCertificateRef != ""
		if req.Documents.GSTCertificate == "" && !hasExisting {
			fields["documents.gstCertificate"] = "GST certificate is required for GST-registered sellers"
		}
	case models.SellerTypeNonGST:
		if req.TaxIdentity.AadhaarNumber == "" {
			fields["taxIdentity.aadhaarNumber"] = "Aadhaar number is required for non-GST sellers"
		}
		if req.TaxIdentity.GSTNumber != "" {
			fields["taxIdentity.gstNumber"] = "GST number applies only to GST-registered sellers"
		}
		if req.Documents.GSTCertificate != "" {
			fields["documents.gstCertificate"] = "GST certificate applies only to GST-registered sellers"
		}
		hasExisting := existing != nil && existing.TaxIdentity.AadhaarProofRef != ""
		if req.Documents.AadhaarProof == "" && !hasExisting {
			fields["documents.aadhaarProof"] = "Aadhaar proof is required for non-GST sellers"
		}
	}

	minPrice, minErr := strconv.ParseFloat(req.ProductIntent.PriceRange.Min, 64)
	maxPrice, maxErr := strconv.ParseFloat(req.ProductIntent.PriceRange.Max, 64)
	if req.ProductIntent.PriceRange.Min != "" && (minErr != nil || minPrice <= 0) {
		fields["productIntent.priceRange.min"] = "Minimum price must be a positive number"
	}
	if req.ProductIntent.PriceRange.Max != "" && (maxErr != nil || maxPrice <= 0) {
		fields["productIntent.priceRange.max"] = "Maximum price must be a positive number"
	}
	if minErr == nil && maxErr == nil && minPrice > maxPrice {
		fields["productIntent.priceRange"] = "Minimum price cannot exceed maximum price"
	}

	if !req.Logistics.PickupSameAsMain && req.Logistics.PickupAddress == "" {
		fields["logistics.pickupAddress"] = "Pickup address is required when different from the main address"
	}

	if req.Password != "" || req.ConfirmPassword != "" {
		if len(req.Password) < 6 {
			fields["password"] = "Password must be at least 6 characters"
		} else if req.Password != req.ConfirmPassword {
			fields["confirmPassword"] = "Passwords do not match"
		}
	}

	hasProfilePhoto := req.Documents.ProfilePhoto != "" ||
		(existing != nil && existing.Documents.ProfilePhotoRef != "")
	if !hasProfilePhoto {
		fields["documents.profilePhoto"] = "Profile photo is required"
	}

	hasProductPhotos := len(req.Documents.ProductPhotos) > 0 ||
		(existing != nil && len(existing.Documents.ProductPhotoRefs) > 0)
	if !hasProductPhotos {
		fields["documents.productPhotos"] = "At least one product photo is required"
	}

	return fields
}

// storeDocuments uploads the supplied payloads and merges the resulting
// references with any previously stored ones. A field may carry either a
// base64 data URL to store or an already-issued reference to keep.
func (s *ApplicationService) storeDocuments(applicantID uuid.UUID, req *DocumentsRequest, existing *models.DocumentSet) (*models.DocumentSet, taxDocumentRefs, error) {
	docs := &models.DocumentSet{}
	var taxRefs taxDocumentRefs
	if existing != nil {
		*docs = *existing
	}

	prefix := "applications/" + applicantID.String()

	if req.ProfilePhoto != "" {
		ref, err := s.resolveDocument(prefix, "profile-photo", req.ProfilePhoto)
		if err != nil {
			return nil, taxRefs, err
		}
		docs.ProfilePhotoRef = ref
	}

	if len(req.ProductPhotos) > 0 {
		refs := make([]string, 0, len(req.ProductPhotos))
		for i, photo := range req.ProductPhotos {
			ref, err := s.resolveDocument(prefix, "product-photo-"+strconv.Itoa(i+1), photo)
			if err != nil {
				return nil, taxRefs, err
			}
			refs = append(refs, ref)
		}
		docs.ProductPhotoRefs = refs
	}

	if req.GSTCertificate != "" {
		ref, err := s.resolveDocument(prefix, "gst-certificate", req.GSTCertificate)
		if err != nil {
			return nil, taxRefs, err
		}
		docs.TaxProofRef = ref
		taxRefs.gstCertificate = ref
	}

	if req.AadhaarProof != "" {
		ref, err := s.resolveDocument(prefix, "aadhaar-proof", req.AadhaarProof)
		if err != nil {
			return nil, taxRefs, err
		}
		docs.TaxProofRef = ref
		taxRefs.aadhaarProof = ref
	}

	if req.CraftVideo != "" {
		ref, err := s.resolveDocument(prefix, "craft-video", req.CraftVideo)
		if err != nil {
			return nil, taxRefs, err
		}
		docs.CraftVideoRef = ref
	}

	return docs, taxRefs, nil
}

// resolveDocument stores a data-URL payload, or passes an already-stored
// reference through unchanged.
func (s *ApplicationService) resolveDocument(prefix, name, value string) (string, error) {
	if strings.HasPrefix(value, "data:") {
		return s.storage.StoreDataURL(prefix, name, value)
	}
	return value, nil
}

type taxDocumentRefs struct {
	gstCertificate string
	aadhaarProof   string
}

func (r BusinessInfoRequest) toModel() models.BusinessInfo {
	return models.BusinessInfo{
		BusinessName: r.BusinessName,
		OwnerName:    r.OwnerName,
		Contact: models.ContactInfo{
			Email:   r.Contact.Email,
			Phone:   r.Contact.Phone,
			Address: r.Contact.Address,
			Pincode: r.Contact.Pincode,
		},
		SellerType: r.SellerType,
	}
}

// toModel keeps only the branch matching the seller type, so a stray field
// from the other branch never persists.
func (r TaxIdentityRequest) toModel(sellerType models.SellerType, refs taxDocumentRefs) models.TaxIdentity {
	identity := models.TaxIdentity{PANNumber: r.PANNumber}
	switch sellerType {
	case models.SellerTypeGST:
		identity.GSTNumber = r.GSTNumber
		identity.GSTCertificateRef = refs.gstCertificate
	case models.SellerTypeNonGST:
		identity.AadhaarNumber = r.AadhaarNumber
		identity.AadhaarProofRef = refs.aadhaarProof
	}
	return identity
}

func (r ProductIntentRequest) toModel() models.ProductIntent {
	return models.ProductIntent{
		Categories:  r.Categories,
		Description: r.Description,
		Materials:   r.Materials,
		PriceRange: models.PriceRange{
			Min: r.PriceRange.Min,
			Max: r.PriceRange.Max,
		},
		StockQuantity: r.StockQuantity,
	}
}

func (r LogisticsRequest) toModel() models.Logistics {
	return models.Logistics{
		PickupSameAsMain: r.PickupSameAsMain,
		PickupAddress:    r.PickupAddress,
		DispatchTime:     r.DispatchTime,
		PackagingType:    r.PackagingType,
	}
}

func (r PaymentRequest) toModel() models.PaymentDetails {
	return models.PaymentDetails{
		BankName:         r.BankName,
		AccountNumber:    r.AccountNumber,
		IFSCCode:         r.IFSCCode,
		UPIID:            r.UPIID,
		PaymentFrequency: r.PaymentFrequency,
	}
}
