package middleware

import (
	"summarysnap/internal/auth"
	"summarysnap/services"
	"summarysnap/utils"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// RequireSession resolves the bearer token to a live session and stores it
// in the gin context.
func RequireSession(issuer *auth.TokenIssuer, store *services.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := utils.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			utils.RespondWithUnauthorized(c, "Session token is required")
			c.Abort()
			return
		}

		claims, err := issuer.ValidateSessionToken(tokenString)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid or expired session token")
			c.Abort()
			return
		}

		s, err := store.Get(claims.SessionID)
		if err != nil {
			utils.RespondWithNotFound(c, "Session not found or expired")
			c.Abort()
			return
		}

		c.Set(sessionKey, s)
		c.Next()
	}
}

// GetSession returns the session set by RequireSession, or nil.
func GetSession(c *gin.Context) *services.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*services.Session); ok {
			return s
		}
	}
	return nil
}
