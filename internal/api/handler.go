package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-service-backend/internal/auth"
	"fleet-service-backend/internal/mw"
	"fleet-service-backend/internal/scope"
	"fleet-service-backend/internal/store"
	"fleet-service-backend/internal/view"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	builder *view.Builder
	tokens  *auth.TokenIssuer
	policy  scope.Policy
}

// NewHandler creates a new API handler.
func NewHandler(st store.Store, tokens *auth.TokenIssuer, policy scope.Policy) *Handler {
	return &Handler{
		store:   st,
		builder: view.NewBuilder(st),
		tokens:  tokens,
		policy:  policy,
	}
}

// resolveScope maps the request's identity (possibly anonymous) to its
// visibility scope.
func (h *Handler) resolveScope(c *gin.Context) (scope.Scope, bool) {
	sc, err := scope.Resolve(c.Request.Context(), mw.CurrentUser(c), h.store, h.policy)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve access scope"})
		return scope.Scope{}, false
	}
	return sc, true
}

// requirePerm aborts with 403 unless the authenticated caller holds the
// grant. Row scoping is checked separately; this gates mutations only.
func (h *Handler) requirePerm(c *gin.Context, codename string) bool {
	ok, err := h.store.HasPermission(c.Request.Context(), mw.CurrentUser(c), codename)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to check permissions"})
		return false
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return false
	}
	return true
}

// requireSuperuser gates the thin administrative surface (catalog and
// company management).
func (h *Handler) requireSuperuser(c *gin.Context) bool {
	u := mw.CurrentUser(c)
	if u == nil || !u.IsSuperuser {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return false
	}
	return true
}
