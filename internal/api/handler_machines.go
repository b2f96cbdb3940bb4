package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-service-backend/internal/model"
	"fleet-service-backend/internal/mw"
	"fleet-service-backend/internal/scope"
)

// machineFilter reads the narrowing query parameters. Each one only ever
// intersects with the caller's scope.
func machineFilter(c *gin.Context) (scope.Filter, bool) {
	var f scope.Filter
	f.SerialSubstring = c.Query("serial_number")

	var ok bool
	if f.ServiceCompanyID, ok = queryID(c, "service_company_id"); !ok {
		return f, false
	}
	if f.ClientID, ok = queryID(c, "client_id"); !ok {
		return f, false
	}
	return f, true
}

// ListMachines serves the scoped machine list bundled with dictionaries and
// the caller's permission block.
func (h *Handler) ListMachines(c *gin.Context) {
	sc, ok := h.resolveScope(c)
	if !ok {
		return
	}
	f, ok := machineFilter(c)
	if !ok {
		return
	}

	machines, err := h.store.ListMachines(c.Request.Context(), sc, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.builder.MachineList(c.Request.Context(), mw.CurrentUser(c), machines)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func machineNotFound(id int64) string {
	return fmt.Sprintf("machine %d not found", id)
}

// GetMachine serves a single machine when it is inside the caller's scope;
// out-of-scope rows are indistinguishable from missing ones.
func (h *Handler) GetMachine(c *gin.Context) {
	sc, ok := h.resolveScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	m, err := h.store.MachineByID(c.Request.Context(), sc, id)
	if err != nil {
		renderStoreError(c, err, machineNotFound(id))
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) CreateMachine(c *gin.Context) {
	if !h.requirePerm(c, model.PermMachineAdd) {
		return
	}
	var m model.Machine
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m.ID = 0
	if err := h.store.CreateMachine(c.Request.Context(), &m); err != nil {
		renderStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) UpdateMachine(c *gin.Context) {
	sc, ok := h.resolveScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	// Visibility first: a row outside the caller's scope is a 404, an
	// in-scope row without the grant is a 403.
	if _, err := h.store.MachineByID(c.Request.Context(), sc, id); err != nil {
		renderStoreError(c, err, machineNotFound(id))
		return
	}
	if !h.requirePerm(c, model.PermMachineChange) {
		return
	}

	var m model.Machine
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m.ID = id
	if err := h.store.UpdateMachine(c.Request.Context(), &m); err != nil {
		renderStoreError(c, err, machineNotFound(id))
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMachine(c *gin.Context) {
	sc, ok := h.resolveScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.store.MachineByID(c.Request.Context(), sc, id); err != nil {
		renderStoreError(c, err, machineNotFound(id))
		return
	}
	if !h.requirePerm(c, model.PermMachineDelete) {
		return
	}

	if err := h.store.DeleteMachine(c.Request.Context(), id); err != nil {
		renderStoreError(c, err, machineNotFound(id))
		return
	}
	c.Status(http.StatusNoContent)
}
