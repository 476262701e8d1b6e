package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"doctor-booking-server/internal/models"
	"doctor-booking-server/internal/session"
	"doctor-booking-server/internal/utils"
)

const (
	ctxSession = "session"
	ctxUser    = "user"
	ctxUserID  = "userID"
)

// bearerToken reads the session token from the Authorization header, or
// from the token query parameter for websocket upgrades.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" {
			return t, true
		}
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// SessionMiddleware resumes the caller's session from its token.
func SessionMiddleware(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		s, err := manager.Resume(token)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		c.Set(ctxSession, s)
		c.Next()
	}
}

// AuthMiddleware requires a signed-in user on the session. It should be
// used after SessionMiddleware.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := GetSessionFromContext(c)
		if !ok {
			utils.InternalServerError(c, "Session not found in context. SessionMiddleware might be missing.")
			c.Abort()
			return
		}
		if !s.IsAuthenticated(c.Request.Context()) {
			utils.Unauthorized(c, "Please sign in to continue")
			c.Abort()
			return
		}

		user, err := s.User(c.Request.Context())
		if err != nil {
			utils.Unauthorized(c, "Please sign in to continue")
			c.Abort()
			return
		}

		c.Set(ctxUser, user)
		c.Set(ctxUserID, user.ID)
		c.Next()
	}
}

// AdminMiddleware requires an admin login on the session. It should be
// used after SessionMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := GetSessionFromContext(c)
		if !ok {
			utils.InternalServerError(c, "Session not found in context. SessionMiddleware might be missing.")
			c.Abort()
			return
		}
		if !s.IsAdmin(c.Request.Context()) {
			utils.Forbidden(c, "You do not have permission to access this resource.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSessionFromContext returns the session resumed by SessionMiddleware.
func GetSessionFromContext(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(ctxSession)
	if !exists {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}

// GetUserFromContext returns the user loaded by AuthMiddleware.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(ctxUser)
	if !exists {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}
