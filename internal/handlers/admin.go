// internal/handlers/admin.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/craftkala/craftkala-backend/internal/i18n"
	"github.com/craftkala/craftkala-backend/internal/models"
	"github.com/craftkala/craftkala-backend/internal/services"
	"github.com/craftkala/craftkala-backend/internal/store"
	"github.com/craftkala/craftkala-backend/internal/utils"
)

type AdminHandler struct {
	admin     *services.AdminService
	decisions *services.DecisionService
	audit     *services.AuditService
}

func NewAdminHandler(admin *services.AdminService, decisions *services.DecisionService, audit *services.AuditService) *AdminHandler {
	return &AdminHandler{admin: admin, decisions: decisions, audit: audit}
}

// GET /v1/admin/dashboard/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.admin.GetDashboardStats()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, stats)
}

// GET /v1/admin/applications
func (h *AdminHandler) ListApplications(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := store.ApplicationFilter{
		Status:     models.ApplicationStatus(c.Query("status")),
		SellerType: models.SellerType(c.Query("seller_type")),
		Search:     c.Query("search"),
		Page:       params.Page,
		Limit:      params.Limit,
	}
	if filter.Status == "" {
		filter.Status = models.ApplicationStatusPendingReview
	}

	apps, total, err := h.decisions.ListQueue(filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(apps, total, params))
}

// GET /v1/admin/applications/:id
func (h *AdminHandler) GetApplication(c *gin.Context) {
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	app, err := h.decisions.Get(appID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, app)
}

// PUT /v1/admin/applications/:id/approve
func (h *AdminHandler) ApproveApplication(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	c.ShouldBindJSON(&req) // body is optional

	app, profile, err := h.decisions.Approve(adminID, appID, req.Notes)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{
		"application": app,
		"profile":     profile,
		"message":     i18n.T(lang, i18n.KeyApplicationApproved),
	})
}

// PUT /v1/admin/applications/:id/reject
func (h *AdminHandler) RejectApplication(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	app, err := h.decisions.Reject(adminID, appID, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{
		"application": app,
		"message":     i18n.T(lang, i18n.KeyApplicationRejected),
	})
}

// GET /v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.admin.ListUsers(params, c.Query("user_type"), c.Query("status"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

// PUT /v1/admin/users/:id/status
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=active suspended banned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Status must be one of: active, suspended, banned", nil)
		return
	}

	user, err := h.admin.SetUserStatus(adminID, userID, models.UserStatus(req.Status))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}

// GET /v1/admin/notifications
func (h *AdminHandler) ListNotifications(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))

	notifications, total, err := h.admin.ListNotifications(params, unreadOnly)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(notifications, total, params))
}

// PUT /v1/admin/notifications/:id/read
func (h *AdminHandler) MarkNotificationRead(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.admin.MarkNotificationRead(id); err != nil {
		utils.NotFoundResponse(c, "notification")
		return
	}
	utils.SuccessResponse(c, gin.H{"read": true})
}

// GET /v1/admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	logs, total, err := h.audit.List(params, c.Query("action"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, params))
}
