// internal/models/artisan.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ArtisanProfile is the business-facing seller identity derived from an
// approved SellerApplication. Activation happens exactly once per application;
// afterwards the profile is independently mutable.
type ArtisanProfile struct {
	BaseModel
	ApplicationID uuid.UUID      `json:"application_id" gorm:"type:uuid;not null;uniqueIndex"`
	UserID        uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	BusinessName  string         `json:"business_name" gorm:"size:255;not null"`
	OwnerName     string         `json:"owner_name" gorm:"size:255;not null"`
	Story         string         `json:"story,omitempty" gorm:"type:text"`
	Categories    pq.StringArray `json:"categories" gorm:"type:text[]"`
	Materials     string         `json:"materials" gorm:"size:255"`
	ProfilePhoto  string         `json:"profile_photo" gorm:"size:512"`
	Rating        float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount   int64          `json:"review_count" gorm:"default:0"`
	ProductCount  int64          `json:"product_count" gorm:"default:0"`
	IsActive      bool           `json:"is_active" gorm:"default:true;index"`

	// Relationships
	User        User              `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Application SellerApplication `json:"application,omitempty" gorm:"foreignKey:ApplicationID"`
	Products    []Product         `json:"products,omitempty" gorm:"foreignKey:ArtisanID"`
}
