package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-service-backend/internal/model"
	"fleet-service-backend/internal/mw"
	"fleet-service-backend/internal/scope"
)

// eventFilter reads the narrowing parameters shared by the event listings.
func eventFilter(c *gin.Context) (scope.Filter, bool) {
	var f scope.Filter
	f.SerialSubstring = c.Query("serial_number")

	var ok bool
	if f.MachineID, ok = queryID(c, "machine_id"); !ok {
		return f, false
	}
	return f, true
}

func (h *Handler) ListMaintenances(c *gin.Context) {
	sc, ok := h.resolveScope(c)
	if !ok {
		return
	}
	f, ok := eventFilter(c)
	if !ok {
		return
	}

	records, err := h.store.ListMaintenances(c.Request.Context(), sc, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.builder.MaintenanceList(c.Request.Context(), mw.CurrentUser(c), sc, records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func maintenanceNotFound(id int64) string {
	return fmt.Sprintf("maintenance %d not found", id)
}

func (h *Handler) GetMaintenance(c *gin.Context) {
	sc, ok := h.resolveScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	m, err := h.store.MaintenanceByID(c.Request.Context(), sc, id)
	if err != nil {
		renderStoreError(c, err, maintenanceNotFound(id))
		return
	}
	h.renderMaintenance(c, http.StatusOK, m)
}

// renderMaintenance attaches the computed organization display.
func (h *Handler) renderMaintenance(c *gin.Context, status int, m *model.Maintenance) {
	records, err := h.builder.MaintenanceRecords(c.Request.Context(), []model.Maintenance{*m})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(status, records[0])
}

func (h *Handler) CreateMaintenance(c *gin.Context) {
	if !h.requirePerm(c, model.PermMaintenanceAdd) {
		return
	}
	var m model.Maintenance
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m.ID = 0
	if err := h.store.CreateMaintenance(c.Request.Context(), &m); err != nil {
		renderStoreError(c, err, "")
		return
	}
	h.renderMaintenance(c, http.StatusCreated, &m)
}

func (h *Handler) UpdateMaintenance(c *gin.Context) {
	sc, ok := h.resolveScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.store.MaintenanceByID(c.Request.Context(), sc, id); err != nil {
		renderStoreError(c, err, maintenanceNotFound(id))
		return
	}
	if !h.requirePerm(c, model.PermMaintenanceChange) {
		return
	}

	var m model.Maintenance
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m.ID = id
	if err := h.store.UpdateMaintenance(c.Request.Context(), &m); err != nil {
		renderStoreError(c, err, maintenanceNotFound(id))
		return
	}
	h.renderMaintenance(c, http.StatusOK, &m)
}

func (h *Handler) DeleteMaintenance(c *gin.Context) {
	sc, ok := h.resolveScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.store.MaintenanceByID(c.Request.Context(), sc, id); err != nil {
		renderStoreError(c, err, maintenanceNotFound(id))
		return
	}
	if !h.requirePerm(c, model.PermMaintenanceDelete) {
		return
	}

	if err := h.store.DeleteMaintenance(c.Request.Context(), id); err != nil {
		renderStoreError(c, err, maintenanceNotFound(id))
		return
	}
	c.Status(http.StatusNoContent)
}
