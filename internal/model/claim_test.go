package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClaimDowntime(t *testing.T) {
	c := Claim{FailureDate: date(2024, 1, 1), RecoveryDate: date(2024, 1, 5)}
	assert.Equal(t, 4, c.Downtime())

	c.RecoveryDate = c.FailureDate
	assert.Equal(t, 0, c.Downtime())

	// Inverted dates are rejected at write time, but an existing row still
	// yields a negative value rather than an error.
	c.RecoveryDate = date(2023, 12, 29)
	assert.Equal(t, -3, c.Downtime())
}

func TestMaintenanceOrganizationDisplay(t *testing.T) {
	m := Maintenance{}
	assert.Equal(t, SelfService, m.OrganizationDisplay(""))

	orgID := int64(7)
	m.OrganizationID = &orgID
	assert.Equal(t, "Heavy Repairs LLC", m.OrganizationDisplay("Heavy Repairs LLC"))
}
