// internal/handlers/artisan.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/craftkala/craftkala-backend/internal/services"
	"github.com/craftkala/craftkala-backend/internal/store"
	"github.com/craftkala/craftkala-backend/internal/utils"
)

type ArtisanHandler struct {
	artisans *services.ArtisanService
}

func NewArtisanHandler(artisans *services.ArtisanService) *ArtisanHandler {
	return &ArtisanHandler{artisans: artisans}
}

// GET /v1/artisans
func (h *ArtisanHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	profiles, total, err := h.artisans.ListPublic(store.ProfileFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(profiles, total, params))
}

// GET /v1/artisans/:id
func (h *ArtisanHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	profile, err := h.artisans.GetPublic(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, profile)
}

// GET /v1/artisans/me
func (h *ArtisanHandler) GetOwn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	profile, err := h.artisans.GetOwn(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, profile)
}

// PUT /v1/artisans/me
func (h *ArtisanHandler) UpdateOwn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	profile, err := h.artisans.UpdateOwn(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, profile)
}
