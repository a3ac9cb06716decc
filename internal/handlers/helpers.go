// internal/handlers/helpers.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/craftkala/craftkala-backend/internal/i18n"
	"github.com/craftkala/craftkala-backend/internal/services"
	"github.com/craftkala/craftkala-backend/internal/utils"
)

// currentUserID reads the authenticated caller's id set by the auth
// middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a :param as a UUID, responding 400 on failure.
func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+param, nil)
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError maps the service error taxonomy onto HTTP responses.
func handleServiceError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		utils.ValidationErrorResponse(c, validationErr.Fields)
		return
	}

	var storageErr *services.DocumentStorageError
	if errors.As(err, &storageErr) {
		utils.ErrorResponse(c, http.StatusBadGateway, "DOCUMENT_STORAGE_FAILED",
			i18n.T(lang, i18n.KeyFileUploadFailed), nil)
		return
	}

	switch {
	case errors.Is(err, services.ErrDuplicateActiveApplication):
		utils.ConflictResponse(c, "DUPLICATE_ACTIVE_APPLICATION", i18n.T(lang, i18n.KeyApplicationDuplicate))
	case errors.Is(err, services.ErrInvalidStateTransition):
		utils.ConflictResponse(c, "INVALID_STATE_TRANSITION", i18n.T(lang, i18n.KeyApplicationBadState))
	case errors.Is(err, services.ErrApplicationNotFound):
		utils.NotFoundResponse(c, "application")
	case errors.Is(err, services.ErrArtisanNotFound):
		utils.NotFoundResponse(c, "artisan")
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "product")
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "user")
	case errors.Is(err, services.ErrNotAuthorized):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, services.ErrAccountSuspended):
		utils.ForbiddenResponse(c, "Account is suspended")
	case errors.Is(err, services.ErrUserAlreadyExists):
		utils.ConflictResponse(c, "USER_EXISTS", i18n.T(lang, i18n.KeyAuthUserExists))
	default:
		utils.InternalErrorResponse(c, "")
	}
}
