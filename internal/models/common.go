// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeBuyer   UserType = "buyer"
	UserTypeArtisan UserType = "artisan"
	UserTypeAdmin   UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type ApplicationStatus string

const (
	ApplicationStatusDraft         ApplicationStatus = "draft"
	ApplicationStatusSubmitted     ApplicationStatus = "submitted"
	ApplicationStatusPendingReview ApplicationStatus = "pending_review"
	ApplicationStatusApproved      ApplicationStatus = "approved"
	ApplicationStatusRejected      ApplicationStatus = "rejected"
)

// SellerType selects which tax identity branch an applicant must supply.
type SellerType string

const (
	SellerTypeGST    SellerType = "gst"
	SellerTypeNonGST SellerType = "non-gst"
)

type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusActive    ProductStatus = "active"
	ProductStatusSoldOut   ProductStatus = "sold_out"
	ProductStatusSuspended ProductStatus = "suspended"
)

type PaymentFrequency string

const (
	PaymentFrequencyWeekly      PaymentFrequency = "weekly"
	PaymentFrequencyFortnightly PaymentFrequency = "fortnightly"
	PaymentFrequencyMonthly     PaymentFrequency = "monthly"
)
