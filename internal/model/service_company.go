package model

// ServiceCompany is an organization that services a subset of the fleet.
// ManagerID is the scoping authority: the one user whose requests resolve to
// this company's records. The member roster is informational only.
type ServiceCompany struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ManagerID   *int64 `gorm:"uniqueIndex" json:"manager_id,omitempty"`

	// Associations
	Manager *User   `gorm:"foreignKey:ManagerID" json:"-"`
	Members []*User `gorm:"many2many:service_company_members;" json:"-"`
}
