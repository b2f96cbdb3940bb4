package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-service-backend/internal/model"
	"fleet-service-backend/internal/mw"
	"fleet-service-backend/internal/view"
)

func (h *Handler) ListClaims(c *gin.Context) {
	sc, ok := h.resolveScope(c)
	if !ok {
		return
	}
	f, ok := eventFilter(c)
	if !ok {
		return
	}

	records, err := h.store.ListClaims(c.Request.Context(), sc, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.builder.ClaimList(c.Request.Context(), mw.CurrentUser(c), sc, records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func claimNotFound(id int64) string {
	return fmt.Sprintf("claim %d not found", id)
}

func (h *Handler) GetClaim(c *gin.Context) {
	sc, ok := h.resolveScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	claim, err := h.store.ClaimByID(c.Request.Context(), sc, id)
	if err != nil {
		renderStoreError(c, err, claimNotFound(id))
		return
	}
	c.JSON(http.StatusOK, view.ClaimRecord{Claim: *claim, Downtime: claim.Downtime()})
}

func (h *Handler) CreateClaim(c *gin.Context) {
	if !h.requirePerm(c, model.PermClaimAdd) {
		return
	}
	var claim model.Claim
	if err := c.ShouldBindJSON(&claim); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claim.ID = 0
	if err := h.store.CreateClaim(c.Request.Context(), &claim); err != nil {
		renderStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, view.ClaimRecord{Claim: claim, Downtime: claim.Downtime()})
}

func (h *Handler) UpdateClaim(c *gin.Context) {
	sc, ok := h.resolveScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.store.ClaimByID(c.Request.Context(), sc, id); err != nil {
		renderStoreError(c, err, claimNotFound(id))
		return
	}
	if !h.requirePerm(c, model.PermClaimChange) {
		return
	}

	var claim model.Claim
	if err := c.ShouldBindJSON(&claim); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claim.ID = id
	if err := h.store.UpdateClaim(c.Request.Context(), &claim); err != nil {
		renderStoreError(c, err, claimNotFound(id))
		return
	}
	c.JSON(http.StatusOK, view.ClaimRecord{Claim: claim, Downtime: claim.Downtime()})
}

func (h *Handler) DeleteClaim(c *gin.Context) {
	sc, ok := h.resolveScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.store.ClaimByID(c.Request.Context(), sc, id); err != nil {
		renderStoreError(c, err, claimNotFound(id))
		return
	}
	if !h.requirePerm(c, model.PermClaimDelete) {
		return
	}

	if err := h.store.DeleteClaim(c.Request.Context(), id); err != nil {
		renderStoreError(c, err, claimNotFound(id))
		return
	}
	c.Status(http.StatusNoContent)
}
