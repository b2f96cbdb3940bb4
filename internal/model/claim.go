package model

import "time"

// Claim is a failure/repair event for a machine.
type Claim struct {
	ID                 int64     `gorm:"primaryKey" json:"id"`
	MachineID          int64     `gorm:"index;not null" json:"machine_id"`
	FailureDate        time.Time `gorm:"not null" json:"failure_date"`
	OperatingTime      int64     `gorm:"not null" json:"operating_time"`
	FailureNodeID      int64     `gorm:"not null" json:"failure_node_id"`
	FailureDescription string    `gorm:"type:text;not null" json:"failure_description"`
	RecoveryMethodID   int64     `gorm:"not null" json:"recovery_method_id"`
	SparePartsUsed     string    `gorm:"type:text" json:"spare_parts_used"`
	RecoveryDate       time.Time `gorm:"not null" json:"recovery_date"`
	ServiceCompanyID   int64     `gorm:"index;not null" json:"service_company_id"`
}

// Downtime is the whole number of days between failure and recovery. It is
// computed on every read and never stored.
func (c Claim) Downtime() int {
	return int(c.RecoveryDate.Sub(c.FailureDate).Hours() / 24)
}
