package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayfinder/backend/internal/database"
	"github.com/stayfinder/backend/internal/models"
	"github.com/stayfinder/backend/pkg/utils"
	"gorm.io/gorm"
)

// UserIDKey is where the authenticated user id lands in the gin context.
const UserIDKey = "user_id"

// Auth validates the bearer credential and attaches the user id to the
// request context. Session tokens are checked against Redis first; on a miss
// the credential is treated as an API token and looked up by its hash.
func Auth(cache *database.Cache, tokens models.ApiTokenRepository, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := extractToken(c)
		if credential == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
			c.Abort()
			return
		}

		userID, err := cache.GetSession(c.Request.Context(), credential)
		if err != nil {
			logger.WithError(err).Error("Session lookup failed")
			utils.ErrorResponse(c, http.StatusInternalServerError, "Session lookup failed", nil)
			c.Abort()
			return
		}

		if userID == "" {
			token, err := tokens.GetByHash(utils.SHA256Hash(credential))
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					logger.WithError(err).Error("API token lookup failed")
					utils.ErrorResponse(c, http.StatusInternalServerError, "Token lookup failed", nil)
					c.Abort()
					return
				}
				utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired credentials", nil)
				c.Abort()
				return
			}
			userID = token.UserID
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.GetHeader("X-Session-Token")
}
