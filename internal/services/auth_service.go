// internal/services/auth_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/craftkala/craftkala-backend/internal/config"
	"github.com/craftkala/craftkala-backend/internal/models"
	"github.com/craftkala/craftkala-backend/internal/utils"
)

// AuthService handles account registration and token issuance. Everyone
// registers as a buyer; the artisan role is granted only by application
// approval, never self-assigned.
type AuthService struct {
	db  *gorm.DB
	cfg config.JWTConfig
}

func NewAuthService(db *gorm.DB, cfg config.JWTConfig) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	FirstName       string `json:"firstName" validate:"omitempty,max=100"`
	LastName        string `json:"lastName" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (s *AuthService) Register(req *RegisterRequest) (*models.User, *AuthTokens, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, nil, &ValidationError{Fields: utils.FieldErrorMap(err)}
	}
	if req.Password != req.ConfirmPassword {
		return nil, nil, &ValidationError{Fields: map[string]string{
			"confirmPassword": "Passwords do not match",
		}}
	}

	var count int64
	s.db.Model(&models.User{}).
		Where("email = ? OR username = ?", req.Email, req.Username).
		Count(&count)
	if count > 0 {
		return nil, nil, ErrUserAlreadyExists
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		UserType: models.UserTypeBuyer,
		Status:   models.UserStatusActive,
		ProfileData: models.JSONB{
			"first_name": req.FirstName,
			"last_name":  req.LastName,
		},
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, nil, err
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *AuthService) Login(req *LoginRequest) (*models.User, *AuthTokens, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, nil, &ValidationError{Fields: utils.FieldErrorMap(err)}
	}

	var user models.User
	err := s.db.First(&user, "email = ?", req.Email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if user.Status != models.UserStatusActive {
		return nil, nil, ErrAccountSuspended
	}

	now := time.Now()
	s.db.Model(&user).UpdateColumn("last_login_at", &now)

	tokens, err := s.issueTokens(&user)
	if err != nil {
		return nil, nil, err
	}
	return &user, tokens, nil
}

// Refresh exchanges a refresh token for a new token pair. The user's
// current role is re-read so a promotion to artisan takes effect on the
// next refresh.
func (s *AuthService) Refresh(refreshToken string) (*AuthTokens, error) {
	subject, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != models.UserStatusActive {
		return nil, ErrAccountSuspended
	}

	return s.issueTokens(&user)
}

func (s *AuthService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthTokens, error) {
	access, err := utils.GenerateJWT(user.ID, user.Username, string(user.UserType), s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateRefreshToken(user.ID, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.cfg.AccessTokenTTL * 3600,
	}, nil
}
