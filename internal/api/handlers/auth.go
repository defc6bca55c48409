package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayfinder/backend/internal/middleware"
	"github.com/stayfinder/backend/internal/models"
	"github.com/stayfinder/backend/internal/repository"
	"github.com/stayfinder/backend/pkg/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SessionStore is the write side of the session cache. database.Cache
// satisfies it.
type SessionStore interface {
	PutSession(ctx context.Context, token, userID string, ttl time.Duration) error
	DeleteSession(ctx context.Context, token string) error
}

type AuthHandler struct {
	repoManager *repository.RepositoryManager
	cache       SessionStore
	sessionTTL  time.Duration
	logger      *logrus.Logger
}

func NewAuthHandler(
	repoManager *repository.RepositoryManager,
	cache SessionStore,
	sessionTTL time.Duration,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		repoManager: repoManager,
		cache:       cache,
		sessionTTL:  sessionTTL,
		logger:      logger,
	}
}

func (h *AuthHandler) HandleSignup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if _, err := h.repoManager.User.GetByEmail(req.Email); err == nil {
		utils.ErrorResponse(c, http.StatusConflict, "Email already registered", nil)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.logger.WithError(err).Error("User lookup failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "User lookup failed", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.WithError(err).Error("Password hashing failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Signup failed", nil)
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Active:       true,
	}

	if err := h.repoManager.User.Create(user); err != nil {
		h.logger.WithError(err).Error("Failed to create user")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Signup failed", err)
		return
	}

	h.logger.WithField("user_id", user.ID).Info("User registered")
	utils.SuccessResponse(c, http.StatusCreated, "Account created", gin.H{"user": user})
}

func (h *AuthHandler) HandleLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	user, err := h.repoManager.User.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		h.logger.WithError(err).Error("User lookup failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Login failed", err)
		return
	}

	if !user.Active {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Account is disabled", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token := utils.GenerateSessionToken()
	if err := h.cache.PutSession(c.Request.Context(), token, user.ID, h.sessionTTL); err != nil {
		h.logger.WithError(err).Error("Failed to store session")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Login failed", err)
		return
	}

	h.logger.WithField("user_id", user.ID).Info("User logged in")
	utils.SuccessResponse(c, http.StatusOK, "Logged in", gin.H{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) HandleLogout(c *gin.Context) {
	token := c.GetHeader("X-Session-Token")
	if auth := c.GetHeader("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		token = auth[7:]
	}

	if token != "" {
		if err := h.cache.DeleteSession(c.Request.Context(), token); err != nil {
			h.logger.WithError(err).Warn("Failed to delete session")
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "Logged out", nil)
}

// HandleMe returns the authenticated account.
func (h *AuthHandler) HandleMe(c *gin.Context) {
	user, err := h.repoManager.User.GetByID(c.GetString(middleware.UserIDKey))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "User not found", nil)
			return
		}
		h.logger.WithError(err).Error("User lookup failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "User lookup failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Account retrieved", gin.H{"user": user})
}

// HandleListTokens lists the caller's API tokens. Hashes never leave storage.
func (h *AuthHandler) HandleListTokens(c *gin.Context) {
	tokens, err := h.repoManager.ApiToken.ListByUser(c.GetString(middleware.UserIDKey))
	if err != nil {
		h.logger.WithError(err).Error("Token listing failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Token listing failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Tokens retrieved", gin.H{"tokens": tokens})
}

// HandleCreateToken mints a named API token. The plaintext appears in this
// response only; afterwards the stored hash is all that remains.
func (h *AuthHandler) HandleCreateToken(c *gin.Context) {
	var req models.CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	plaintext := utils.GenerateRandomID(40)

	token := &models.ApiToken{
		UserID:    userID,
		Name:      req.Name,
		TokenHash: utils.SHA256Hash(plaintext),
	}

	if err := h.repoManager.ApiToken.Create(token); err != nil {
		h.logger.WithError(err).Error("Failed to create API token")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to create token", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"token_id": token.ID,
	}).Info("API token created")

	utils.SuccessResponse(c, http.StatusCreated, "Token created", gin.H{
		"token":     plaintext,
		"api_token": token,
	})
}

// HandleDeleteToken revokes one of the caller's API tokens.
func (h *AuthHandler) HandleDeleteToken(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	tokenID := c.Param("token_id")

	if err := h.repoManager.ApiToken.Delete(tokenID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Token not found", nil)
			return
		}
		h.logger.WithError(err).Error("Failed to delete API token")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete token", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Token revoked", nil)
}
