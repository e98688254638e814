package auth

import (
	"net/http"
	"strings"

	"go-catalog/internal/config"
	"go-catalog/internal/db"
	"go-catalog/internal/user"

	"github.com/gin-gonic/gin"
)

// Middleware resolves an optional bearer token into an actor. Requests
// without an Authorization header proceed anonymously; whether an anonymous
// actor may do anything is the permission layer's decision, not this one's.
// A header that is present but invalid is rejected outright.
func Middleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid Authorization header"}})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := ParseJWT(cfg.Server.JWTSecret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid or expired token"}})
			return
		}
		var u user.User
		if err := db.DB.First(&u, claims.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unknown user"}})
			return
		}

		// Attach actor info to context
		c.Set("actor", &u)
		c.Set("userId", u.ID)
		c.Set("username", u.Username)
		c.Set("role", string(u.Role))
		c.Next()
	}
}

// Actor returns the authenticated user attached by Middleware, or nil for
// anonymous requests.
func Actor(c *gin.Context) *user.User {
	if v, ok := c.Get("actor"); ok {
		if u, ok := v.(*user.User); ok {
			return u
		}
	}
	return nil
}
