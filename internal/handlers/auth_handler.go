package handlers

import (
	"context"
	"net/http"

	"github.com/dogubilet/ticket-backend/internal/middleware"
	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/dogubilet/ticket-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AccountService is the account side of the auth service
type AccountService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *models.ChangePasswordRequest) error
}

// AuthHandler handles signup, login and profile endpoints
type AuthHandler struct {
	accounts     AccountService
	cookieSecure bool
	logger       *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts AccountService, cookieSecure bool, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, models.ErrMissingFields)
		return
	}

	user, err := h.accounts.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Kayıt başarılı, giriş yapabilirsiniz.",
		"user":    user,
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, models.ErrMissingFields)
		return
	}

	resp, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	client := utils.ParseUserAgent(c.Request.UserAgent())
	h.logger.WithFields(logrus.Fields{
		"user_id": resp.User.ID,
		"ip":      utils.GetRealIP(c),
		"device":  client.DeviceType,
		"os":      client.OS,
		"browser": client.Browser,
	}).Info("User logged in")

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, resp.AccessToken, int(resp.ExpiresIn), "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /api/v1/auth/logout. Tokens are stateless, so this
// only clears the browser cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Çıkış yapıldı."})
}

// GetProfile handles GET /api/v1/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.accounts.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/v1/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.accounts.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profil bilgileriniz güncellendi.",
		"user":    user,
	})
}

// ChangePassword handles PUT /api/v1/profile/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Şifreniz güncellendi."})
}
