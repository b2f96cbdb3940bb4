package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-service-backend/internal/auth"
	"fleet-service-backend/internal/mw"
	"fleet-service-backend/internal/scope"
	"fleet-service-backend/internal/store"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	u, err := h.store.UserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}
	if !u.IsActive || !auth.CheckPassword(u.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

// Me returns the informational role classification of the caller: which UI
// chrome to show, not what rows are visible.
func (h *Handler) Me(c *gin.Context) {
	u := mw.CurrentUser(c)
	classification, err := scope.Classify(c.Request.Context(), u, h.store, h.policy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to classify user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "role": classification.Role, "name": classification.Name})
}
