package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fleet-service-backend/config"
	"fleet-service-backend/internal/api"
	"fleet-service-backend/internal/db"
	"fleet-service-backend/internal/model"
	"fleet-service-backend/internal/store"
)

// TestFleetLifecycle walks the whole system end to end: bootstrap, catalog
// setup, machine registration, a service event and a claim, role-scoped
// reads along the way, and finally the cascading machine delete.
func TestFleetLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	// --- Test Setup ---

	// 1. In-memory SQLite database with the full schema.
	testDB, err := gorm.Open(sqlite.Open("file:lifecycle?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(testDB))

	st := store.NewGormStore(testDB)

	// 2. Server with the bootstrap superuser, as main would start it.
	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 60
	cfg.Auth.JWTSecret = "integration-secret"
	cfg.Auth.TokenTTL = time.Hour
	require.NoError(t, st.EnsureAdminUser(ctx, "root", "root-password"))

	router := api.NewRouter(st, cfg)
	server := httptest.NewServer(router)
	defer server.Close()

	client := server.Client()
	call := func(method, path, token string, body any) (*http.Response, []byte) {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req, err := http.NewRequest(method, server.URL+path, &buf)
		require.NoError(t, err)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var out bytes.Buffer
		_, err = out.ReadFrom(resp.Body)
		require.NoError(t, err)
		return resp, out.Bytes()
	}
	login := func(username, password string) string {
		t.Helper()
		resp, body := call(http.MethodPost, "/api/auth/login", "", gin.H{
			"username": username, "password": password,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		var parsed struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(body, &parsed))
		return parsed.Token
	}

	// --- Lifecycle ---

	// 3. The bootstrap superuser logs in and sets up the catalogs.
	rootToken := login("root", "root-password")

	refIDs := make(map[string]int64)
	for path, name := range map[string]string{
		"machine-models":       "FL-900",
		"engine-models":        "D-240",
		"transmission-models":  "TR-2",
		"drive-axle-models":    "DA-1",
		"steering-axle-models": "SA-1",
		"maintenance-types":    "Scheduled 250h",
		"failure-nodes":        "Hydraulics",
		"recovery-methods":     "Part replacement",
	} {
		resp, body := call(http.MethodPost, "/api/"+path, rootToken, gin.H{"name": name})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
		var ref model.Reference
		require.NoError(t, json.Unmarshal(body, &ref))
		refIDs[path] = ref.ID
	}

	// 4. Accounts: one service-company manager, one client.
	manager := &model.User{Username: "manager", FirstName: "Maria"}
	require.NoError(t, st.CreateUser(ctx, manager, "manager-password"))
	client1 := &model.User{Username: "client", FirstName: "Ivan"}
	require.NoError(t, st.CreateUser(ctx, client1, "client-password"))

	resp, body := call(http.MethodPost, "/api/service-companies", rootToken, gin.H{
		"name": "FleetCare", "manager_id": manager.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var company model.ServiceCompany
	require.NoError(t, json.Unmarshal(body, &company))

	// 5. The superuser registers a machine for the client.
	resp, body = call(http.MethodPost, "/api/machines", rootToken, gin.H{
		"serial_number":               "FL-900-0001",
		"model_id":                    refIDs["machine-models"],
		"engine_model_id":             refIDs["engine-models"],
		"engine_serial_number":        "ENG-1",
		"transmission_model_id":       refIDs["transmission-models"],
		"transmission_serial_number":  "TRN-1",
		"drive_axle_model_id":         refIDs["drive-axle-models"],
		"drive_axle_serial_number":    "DAX-1",
		"steering_axle_model_id":      refIDs["steering-axle-models"],
		"steering_axle_serial_number": "SAX-1",
		"shipment_date":               "2024-02-01T00:00:00Z",
		"consignee":                   "Ivan",
		"delivery_address":            "Plant 4, gate 2",
		"client_id":                   client1.ID,
		"service_company_id":          company.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var machine model.Machine
	require.NoError(t, json.Unmarshal(body, &machine))

	// 6. Anyone can look the machine up by serial number, but only the
	// limited shape comes back.
	resp, body = call(http.MethodGet, "/api/public-machine-info?serial_number=FL-900-0001", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ENG-1")
	assert.NotContains(t, string(body), "Plant 4")

	// 7. Manager and client both see the machine in their scoped lists.
	managerToken := login("manager", "manager-password")
	clientToken := login("client", "client-password")
	for _, token := range []string{managerToken, clientToken} {
		resp, body = call(http.MethodGet, "/api/machines", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var list struct {
			Machines []model.Machine `json:"machines"`
		}
		require.NoError(t, json.Unmarshal(body, &list))
		require.Len(t, list.Machines, 1)
		assert.Equal(t, "FL-900-0001", list.Machines[0].SerialNumber)
	}

	// 8. The manager records a maintenance once granted the capability.
	require.NoError(t, st.GrantPermission(ctx, manager.ID, model.PermMaintenanceAdd))
	resp, body = call(http.MethodPost, "/api/maintenances", managerToken, gin.H{
		"machine_id":          machine.ID,
		"maintenance_type_id": refIDs["maintenance-types"],
		"maintenance_date":    "2024-06-10T00:00:00Z",
		"operating_time":      250,
		"order_number":        "ORD-2024-001",
		"order_date":          "2024-06-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var maintenance struct {
		ID                  int64  `json:"id"`
		ServiceCompanyID    int64  `json:"service_company_id"`
		OrganizationDisplay string `json:"organization_display"`
	}
	require.NoError(t, json.Unmarshal(body, &maintenance))
	assert.Equal(t, company.ID, maintenance.ServiceCompanyID)
	assert.Equal(t, model.SelfService, maintenance.OrganizationDisplay)

	// 9. The client files a claim; downtime is derived from the dates.
	require.NoError(t, st.GrantPermission(ctx, client1.ID, model.PermClaimAdd))
	resp, body = call(http.MethodPost, "/api/claims", clientToken, gin.H{
		"machine_id":          machine.ID,
		"failure_date":        "2024-07-01T00:00:00Z",
		"operating_time":      400,
		"failure_node_id":     refIDs["failure-nodes"],
		"failure_description": "hydraulic pump failure",
		"recovery_method_id":  refIDs["recovery-methods"],
		"recovery_date":       "2024-07-08T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var claim struct {
		ID       int64 `json:"id"`
		Downtime int   `json:"downtime"`
	}
	require.NoError(t, json.Unmarshal(body, &claim))
	assert.Equal(t, 7, claim.Downtime)

	// 10. The manager sees the claim through the machine's company; without
	// the delete grant the machine itself is untouchable.
	resp, body = call(http.MethodGet, fmt.Sprintf("/api/claims/%d", claim.ID), managerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = call(http.MethodDelete, fmt.Sprintf("/api/machines/%d", machine.ID), managerToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// 11. The superuser deletes the machine; its events go with it.
	resp, _ = call(http.MethodDelete, fmt.Sprintf("/api/machines/%d", machine.ID), rootToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = call(http.MethodGet, fmt.Sprintf("/api/claims/%d", claim.ID), rootToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = call(http.MethodGet, fmt.Sprintf("/api/maintenances/%d", maintenance.ID), rootToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
