// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// SellerApplication is an artisan onboarding submission tracked through the
// review lifecycle: draft -> pending_review -> approved|rejected, with
// rejected -> pending_review on resubmission.
//
// Section payloads keep the camelCase wire shape of the storefront form and
// are persisted as jsonb columns; the queryable review fields are flat.
type SellerApplication struct {
	BaseModel
	ApplicantID   uuid.UUID      `json:"applicant_id" gorm:"type:uuid;not null;index"`
	BusinessInfo  BusinessInfo   `json:"businessInfo" gorm:"type:jsonb;serializer:json"`
	TaxIdentity   TaxIdentity    `json:"taxIdentity" gorm:"type:jsonb;serializer:json"`
	ProductIntent ProductIntent  `json:"productIntent" gorm:"type:jsonb;serializer:json"`
	Logistics     Logistics      `json:"logistics" gorm:"type:jsonb;serializer:json"`
	Payment       PaymentDetails `json:"payment" gorm:"type:jsonb;serializer:json"`
	Narrative     Narrative      `json:"narrative" gorm:"type:jsonb;serializer:json"`
	Documents     DocumentSet    `json:"documents" gorm:"type:jsonb;serializer:json"`

	Status          ApplicationStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	ApprovalNotes   string            `json:"approval_notes,omitempty" gorm:"type:text"`
	RejectionReason string            `json:"rejection_reason,omitempty" gorm:"type:text"`
	SubmittedAt     *time.Time        `json:"submitted_at"`
	DecidedAt       *time.Time        `json:"decided_at"`
	DecidedBy       *uuid.UUID        `json:"decided_by" gorm:"type:uuid"`

	// Relationships
	Applicant User            `json:"applicant,omitempty" gorm:"foreignKey:ApplicantID"`
	Profile   *ArtisanProfile `json:"profile,omitempty" gorm:"foreignKey:ApplicationID"`
}

type ContactInfo struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Pincode string `json:"pincode"`
}

type BusinessInfo struct {
	BusinessName string      `json:"businessName"`
	OwnerName    string      `json:"ownerName"`
	Contact      ContactInfo `json:"contact"`
	SellerType   SellerType  `json:"sellerType"`
}

// TaxIdentity carries exactly one identity branch, matching the declared
// SellerType. PAN is required on both branches.
type TaxIdentity struct {
	PANNumber string `json:"panNumber"`

	// gst branch
	GSTNumber         string `json:"gstNumber,omitempty"`
	GSTCertificateRef string `json:"gstCertificateRef,omitempty"`

	// non-gst branch
	AadhaarNumber   string `json:"aadhaarNumber,omitempty"`
	AadhaarProofRef string `json:"aadhaarProofRef,omitempty"`
}

type PriceRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type ProductIntent struct {
	Categories    []string   `json:"categories"`
	Description   string     `json:"description"`
	Materials     string     `json:"materials"`
	PriceRange    PriceRange `json:"priceRange"`
	StockQuantity int        `json:"stockQuantity"`
}

type Logistics struct {
	PickupSameAsMain bool   `json:"pickupSameAsMain"`
	PickupAddress    string `json:"pickupAddress,omitempty"`
	DispatchTime     string `json:"dispatchTime"`
	PackagingType    string `json:"packagingType"`
}

type PaymentDetails struct {
	BankName         string           `json:"bankName"`
	AccountNumber    string           `json:"accountNumber"`
	IFSCCode         string           `json:"ifscCode"`
	UPIID            string           `json:"upiId,omitempty"`
	PaymentFrequency PaymentFrequency `json:"paymentFrequency"`
}

type Narrative struct {
	Story         string `json:"story,omitempty"`
	CraftVideoRef string `json:"craftVideoRef,omitempty"`
}

// DocumentSet holds stable references returned by the document store.
type DocumentSet struct {
	ProfilePhotoRef  string   `json:"profilePhotoRef"`
	ProductPhotoRefs []string `json:"productPhotoRefs"`
	TaxProofRef      string   `json:"taxProofRef,omitempty"`
	CraftVideoRef    string   `json:"craftVideoRef,omitempty"`
}
