package model

import "time"

// User is a backing identity: a client, a service-company manager or member,
// or an administrator.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:128;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	FirstName    string    `gorm:"size:128" json:"first_name"`
	IsSuperuser  bool      `gorm:"not null" json:"is_superuser"`
	IsStaff      bool      `gorm:"not null" json:"is_staff"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Permission is a capability grant row. Grants gate mutations and feed the
// permission block on list responses; they never affect row-level scoping.
type Permission struct {
	ID       int64  `gorm:"primaryKey"`
	UserID   int64  `gorm:"uniqueIndex:idx_permission_user_codename;not null"`
	Codename string `gorm:"uniqueIndex:idx_permission_user_codename;size:64;not null"`
}

// Grant codenames, one per entity and action.
const (
	PermMachineAdd        = "machine.add"
	PermMachineChange     = "machine.change"
	PermMachineDelete     = "machine.delete"
	PermMaintenanceAdd    = "maintenance.add"
	PermMaintenanceChange = "maintenance.change"
	PermMaintenanceDelete = "maintenance.delete"
	PermClaimAdd          = "claim.add"
	PermClaimChange       = "claim.change"
	PermClaimDelete       = "claim.delete"
)
