// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	ArtisanID      uuid.UUID      `json:"artisan_id" gorm:"type:uuid;not null;index"`
	ArtisanUserID  uuid.UUID      `json:"artisan_user_id" gorm:"type:uuid;not null;index"`
	Title          string         `json:"title" gorm:"size:255;not null"`
	Description    string         `json:"description" gorm:"type:text"`
	Category       string         `json:"category" gorm:"size:100;index"`
	Materials      string         `json:"materials" gorm:"size:255"`
	Price          float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	InventoryCount int            `json:"inventory_count" gorm:"default:0"`
	Images         pq.StringArray `json:"images" gorm:"type:text[]"`
	Tags           pq.StringArray `json:"tags" gorm:"type:text[]"`
	Status         ProductStatus  `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	ViewCount      int64          `json:"view_count" gorm:"default:0"`
	SalesCount     int64          `json:"sales_count" gorm:"default:0"`
	Rating         float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount    int64          `json:"review_count" gorm:"default:0"`

	// Relationships
	Artisan ArtisanProfile `json:"artisan,omitempty" gorm:"foreignKey:ArtisanID"`
	Creator User           `json:"creator,omitempty" gorm:"foreignKey:ArtisanUserID"`
}
