// internal/services/product_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/craftkala/craftkala-backend/internal/models"
	"github.com/craftkala/craftkala-backend/internal/store"
	"github.com/craftkala/craftkala-backend/internal/utils"
)

// ProductService manages the catalog. Listing is gated on an active
// artisan profile: no product goes live before the seller application is
// approved, and suspending a profile hides its products.
type ProductService struct {
	db       *gorm.DB
	profiles store.ProfileStore
}

func NewProductService(db *gorm.DB, profiles store.ProfileStore) *ProductService {
	return &ProductService{db: db, profiles: profiles}
}

type ProductRequest struct {
	Title          string   `json:"title" validate:"required,min=2,max=255"`
	Description    string   `json:"description" validate:"required,min=10,max=5000"`
	Category       string   `json:"category" validate:"required,max=100"`
	Materials      string   `json:"materials" validate:"omitempty,max=255"`
	Price          float64  `json:"price" validate:"required,gt=0"`
	InventoryCount int      `json:"inventory_count" validate:"min=0"`
	Images         []string `json:"images" validate:"omitempty,max=10"`
	Tags           []string `json:"tags" validate:"omitempty,max=10"`
}

// Create adds a product for the calling artisan. The artisan must have an
// active profile; without one the catalog refuses the product.
func (s *ProductService) Create(userID uuid.UUID, req *ProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, &ValidationError{Fields: utils.FieldErrorMap(err)}
	}

	profile, err := s.profiles.GetByUser(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}
	if !profile.IsActive {
		return nil, ErrNotAuthorized
	}

	product := &models.Product{
		ArtisanID:      profile.ID,
		ArtisanUserID:  userID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Materials:      req.Materials,
		Price:          req.Price,
		InventoryCount: req.InventoryCount,
		Images:         pq.StringArray(req.Images),
		Tags:           pq.StringArray(req.Tags),
		Status:         models.ProductStatusActive,
	}
	if req.InventoryCount == 0 {
		product.Status = models.ProductStatusSoldOut
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, err
	}

	s.db.Model(&models.ArtisanProfile{}).
		Where("id = ?", profile.ID).
		UpdateColumn("product_count", gorm.Expr("product_count + 1"))

	return product, nil
}

type ProductListFilter struct {
	Category  string
	ArtisanID *uuid.UUID
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// ListPublic returns active products from active artisans only.
func (s *ProductService) ListPublic(filter ProductListFilter) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Joins("JOIN artisan_profiles ON artisan_profiles.id = products.artisan_id").
		Where("products.status = ?", models.ProductStatusActive).
		Where("artisan_profiles.is_active = ?", true).
		Where("artisan_profiles.deleted_at IS NULL")

	if filter.Category != "" {
		query = query.Where("products.category = ?", filter.Category)
	}
	if filter.ArtisanID != nil {
		query = query.Where("products.artisan_id = ?", *filter.ArtisanID)
	}
	if filter.Search != "" {
		query = query.Where(
			"to_tsvector('english', products.title || ' ' || products.description) @@ plainto_tsquery('english', ?)",
			filter.Search,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	allowedSorts := map[string]string{
		"price":      "products.price",
		"rating":     "products.rating",
		"created_at": "products.created_at",
		"popularity": "products.sales_count",
	}
	orderBy := "products.created_at DESC"
	if col, ok := allowedSorts[filter.SortBy]; ok {
		direction := "DESC"
		if filter.SortOrder == "asc" {
			direction = "ASC"
		}
		orderBy = col + " " + direction
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var products []models.Product
	err := query.Preload("Artisan").
		Order(orderBy).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	return products, total, err
}

// GetPublic returns one product if it is live, bumping its view count.
func (s *ProductService) GetPublic(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Artisan").
		Joins("JOIN artisan_profiles ON artisan_profiles.id = products.artisan_id").
		Where("products.id = ? AND products.status = ? AND artisan_profiles.is_active = ?",
			id, models.ProductStatusActive, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	s.db.Model(&product).UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	return &product, nil
}

func (s *ProductService) ListOwn(userID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Where("artisan_user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = utils.ApplySort(query, params, []string{"created_at", "price", "title"})

	var products []models.Product
	err := utils.ApplyPagination(query, params).Find(&products).Error
	return products, total, err
}

func (s *ProductService) Update(userID, productID uuid.UUID, req *ProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, &ValidationError{Fields: utils.FieldErrorMap(err)}
	}

	product, err := s.getOwned(userID, productID)
	if err != nil {
		return nil, err
	}

	product.Title = req.Title
	product.Description = req.Description
	product.Category = req.Category
	product.Materials = req.Materials
	product.Price = req.Price
	product.InventoryCount = req.InventoryCount
	product.Images = pq.StringArray(req.Images)
	product.Tags = pq.StringArray(req.Tags)
	if product.InventoryCount == 0 && product.Status == models.ProductStatusActive {
		product.Status = models.ProductStatusSoldOut
	} else if product.InventoryCount > 0 && product.Status == models.ProductStatusSoldOut {
		product.Status = models.ProductStatusActive
	}

	if err := s.db.Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Delete(userID, productID uuid.UUID) error {
	product, err := s.getOwned(userID, productID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(product).Error; err != nil {
		return err
	}

	s.db.Model(&models.ArtisanProfile{}).
		Where("id = ?", product.ArtisanID).
		UpdateColumn("product_count", gorm.Expr("GREATEST(product_count - 1, 0)"))
	return nil
}

func (s *ProductService) getOwned(userID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.First(&product, "id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.ArtisanUserID != userID {
		return nil, ErrNotAuthorized
	}
	return &product, nil
}
