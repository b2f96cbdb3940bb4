package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-service-backend/internal/model"
)

// CatalogRoutes maps URL segments to reference-catalog kinds. One list and
// one detail route is registered per entry.
var CatalogRoutes = map[string]model.ReferenceKind{
	"machine-models":       model.KindMachineModel,
	"engine-models":        model.KindEngineModel,
	"transmission-models":  model.KindTransmissionModel,
	"drive-axle-models":    model.KindDriveAxleModel,
	"steering-axle-models": model.KindSteeringAxleModel,
	"maintenance-types":    model.KindMaintenanceType,
	"failure-nodes":        model.KindFailureNode,
	"recovery-methods":     model.KindRecoveryMethod,
}

// ListCatalog serves a full reference catalog, publicly readable.
func (h *Handler) ListCatalog(kind model.ReferenceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		refs, err := h.store.ListReferences(c.Request.Context(), kind)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, refs)
	}
}

// GetCatalogItem serves one catalog entry.
func (h *Handler) GetCatalogItem(kind model.ReferenceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ref, err := h.store.ReferenceByID(c.Request.Context(), kind, id)
		if err != nil {
			renderStoreError(c, err, fmt.Sprintf("%s %d not found", kind, id))
			return
		}
		c.JSON(http.StatusOK, ref)
	}
}

// CreateCatalogItem is part of the thin administrative surface.
func (h *Handler) CreateCatalogItem(kind model.ReferenceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.requireSuperuser(c) {
			return
		}
		var ref model.Reference
		if err := c.ShouldBindJSON(&ref); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ref.ID = 0
		ref.Kind = kind
		if err := h.store.CreateReference(c.Request.Context(), &ref); err != nil {
			renderStoreError(c, err, "")
			return
		}
		c.JSON(http.StatusCreated, ref)
	}
}

// DeleteCatalogItem rejects deletion of a still-referenced entry.
func (h *Handler) DeleteCatalogItem(kind model.ReferenceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.requireSuperuser(c) {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := h.store.DeleteReference(c.Request.Context(), kind, id); err != nil {
			renderStoreError(c, err, fmt.Sprintf("%s %d not found", kind, id))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ListCompanies serves the service-company catalog, publicly readable.
func (h *Handler) ListCompanies(c *gin.Context) {
	companies, err := h.store.ListCompanies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, companies)
}

// GetCompany serves one service company.
func (h *Handler) GetCompany(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	company, err := h.store.CompanyByID(c.Request.Context(), id)
	if err != nil {
		renderStoreError(c, err, fmt.Sprintf("service company %d not found", id))
		return
	}
	c.JSON(http.StatusOK, company)
}

// CreateCompany is part of the thin administrative surface.
func (h *Handler) CreateCompany(c *gin.Context) {
	if !h.requireSuperuser(c) {
		return
	}
	var company model.ServiceCompany
	if err := c.ShouldBindJSON(&company); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	company.ID = 0
	if err := h.store.CreateCompany(c.Request.Context(), &company); err != nil {
		renderStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, company)
}

// DeleteCompany rejects deletion of a still-referenced company.
func (h *Handler) DeleteCompany(c *gin.Context) {
	if !h.requireSuperuser(c) {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteCompany(c.Request.Context(), id); err != nil {
		renderStoreError(c, err, fmt.Sprintf("service company %d not found", id))
		return
	}
	c.Status(http.StatusNoContent)
}
