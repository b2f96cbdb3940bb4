package model

import "time"

// SelfService is the organization display label for maintenance performed
// without an external organization.
const SelfService = "Self-service"

// Maintenance is a scheduled-service event for a machine. ServiceCompanyID is
// the scope key and always set; OrganizationID is whoever actually performed
// the work and may independently be nil (self-service) or any company.
type Maintenance struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	MachineID         int64     `gorm:"index;not null" json:"machine_id"`
	MaintenanceTypeID int64     `gorm:"not null" json:"maintenance_type_id"`
	MaintenanceDate   time.Time `gorm:"not null" json:"maintenance_date"`
	OperatingTime     int64     `gorm:"not null" json:"operating_time"`
	OrderNumber       string    `gorm:"size:255;not null" json:"order_number"`
	OrderDate         time.Time `gorm:"not null" json:"order_date"`
	OrganizationID    *int64    `json:"organization_id,omitempty"`
	ServiceCompanyID  int64     `gorm:"index;not null" json:"service_company_id"`
}

// OrganizationDisplay resolves the human-facing "who performed this" label
// given the referenced organization's name (empty when OrganizationID is nil).
func (m Maintenance) OrganizationDisplay(organizationName string) string {
	if m.OrganizationID == nil {
		return SelfService
	}
	return organizationName
}
