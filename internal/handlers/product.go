// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/craftkala/craftkala-backend/internal/services"
	"github.com/craftkala/craftkala-backend/internal/utils"
)

type ProductHandler struct {
	products *services.ProductService
}

func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// GET /v1/products
func (h *ProductHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.ProductListFilter{
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		Page:      params.Page,
		Limit:     params.Limit,
		SortBy:    params.Sort,
		SortOrder: params.Order,
	}
	if artisanID := c.Query("artisan_id"); artisanID != "" {
		if id, err := uuid.Parse(artisanID); err == nil {
			filter.ArtisanID = &id
		}
	}

	products, total, err := h.products.ListPublic(filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

// GET /v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.GetPublic(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

// POST /v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	product, err := h.products.Create(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, product)
}

// GET /v1/products/mine
func (h *ProductHandler) ListOwn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	products, total, err := h.products.ListOwn(userID, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

// PUT /v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	product, err := h.products.Update(userID, id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

// DELETE /v1/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(userID, id); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}
