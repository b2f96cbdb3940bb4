package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fleet-service-backend/internal/auth"
	"fleet-service-backend/internal/model"
	"fleet-service-backend/internal/store"
)

const userContextKey = "auth_user"

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func resolveUser(c *gin.Context, tokens *auth.TokenIssuer, st store.Store) *model.User {
	token := bearerToken(c)
	if token == "" {
		return nil
	}
	userID, err := tokens.Parse(token)
	if err != nil {
		return nil
	}
	u, err := st.UserByID(c.Request.Context(), userID)
	if err != nil || !u.IsActive {
		return nil
	}
	return u
}

// Auth requires a valid bearer token and stores the resolved user in the gin
// context. Missing or invalid credentials are a 401, distinct from the 403 a
// failed capability check produces later.
func Auth(tokens *auth.TokenIssuer, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := resolveUser(c, tokens, st)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(userContextKey, u)
		c.Next()
	}
}

// OptionalAuth resolves the user when a usable token is present and proceeds
// anonymously otherwise. Used on surfaces that serve both audiences.
func OptionalAuth(tokens *auth.TokenIssuer, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := resolveUser(c, tokens, st); u != nil {
			c.Set(userContextKey, u)
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}
