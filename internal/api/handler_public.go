package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-service-backend/internal/mw"
)

// PublicMachineInfo is the unauthenticated lookup: exact serial-number match,
// limited machine fields plus the model catalogs. A miss is a 404, distinct
// from the empty lists scoping produces elsewhere.
func (h *Handler) PublicMachineInfo(c *gin.Context) {
	serial := c.Query("serial_number")
	if serial == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "serial_number query parameter is required"})
		return
	}

	machines, err := h.store.MachinesBySerial(c.Request.Context(), serial)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(machines) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("machine with serial number %s not found", serial)})
		return
	}

	resp, err := h.builder.PublicMachineInfo(c.Request.Context(), mw.CurrentUser(c), machines)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
