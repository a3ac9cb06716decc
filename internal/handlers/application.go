// internal/handlers/application.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/craftkala/craftkala-backend/internal/i18n"
	"github.com/craftkala/craftkala-backend/internal/services"
	"github.com/craftkala/craftkala-backend/internal/utils"
)

type ApplicationHandler struct {
	applications *services.ApplicationService
}

func NewApplicationHandler(applications *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// POST /v1/applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.ApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	app, err := h.applications.Submit(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.CreatedResponse(c, gin.H{
		"application": app,
		"message":     i18n.T(lang, i18n.KeyApplicationSubmitted),
	})
}

// POST /v1/applications/documents
func (h *ApplicationHandler) UploadDocuments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req struct {
		Documents []services.DocumentUploadRequest `json:"documents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	refs, err := h.applications.UploadDocuments(userID, req.Documents)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{"refs": refs})
}

// GET /v1/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	app, err := h.applications.GetForApplicant(userID, appID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, app)
}

// GET /v1/applications/mine
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	apps, err := h.applications.ListForApplicant(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, apps)
}

// PUT /v1/applications/:id/resubmit
func (h *ApplicationHandler) Resubmit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.ApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	app, err := h.applications.Resubmit(userID, appID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{
		"application": app,
		"message":     i18n.T(lang, i18n.KeyApplicationResubmitted),
	})
}
