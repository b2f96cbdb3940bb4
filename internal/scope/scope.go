// Package scope resolves which fleet records a requesting identity may see.
//
// Two distinct rules live here and must not be conflated: Resolve drives
// row-level visibility (managership only), while Classify drives the
// informational role shown in UI chrome (managership or roster membership).
package scope

import (
	"context"

	"fleet-service-backend/internal/model"
)

// Tier is the priority-ordered role classification driving visibility.
type Tier int

const (
	TierAnonymous Tier = iota
	TierAdmin
	TierManager
	TierClient
)

func (t Tier) String() string {
	switch t {
	case TierAdmin:
		return "admin"
	case TierManager:
		return "manager"
	case TierClient:
		return "client"
	}
	return "anonymous"
}

// Scope is the resolved visibility of one requesting identity.
// CompanyID is set for TierManager, UserID for TierClient.
type Scope struct {
	Tier      Tier
	CompanyID int64
	UserID    int64
}

// Policy selects the administrator gate. Both historical behaviors exist:
// superuser-only, and superuser-or-staff.
type Policy struct {
	StaffIsAdmin bool
}

// CompanyDirectory is the lookup surface Resolve and Classify need. Lookups
// return (nil, nil) on a miss; the resolver degrades to the next tier rather
// than erroring.
type CompanyDirectory interface {
	// CompanyByManager returns the company whose manager is the given user.
	CompanyByManager(ctx context.Context, userID int64) (*model.ServiceCompany, error)
	// CompanyOfMember returns the company the user manages or is rostered in.
	CompanyOfMember(ctx context.Context, userID int64) (*model.ServiceCompany, error)
}

// Resolve maps a requesting identity to its visibility scope. First matching
// tier wins: anonymous, administrator, company manager, client.
func Resolve(ctx context.Context, u *model.User, dir CompanyDirectory, p Policy) (Scope, error) {
	if u == nil || !u.IsActive {
		return Scope{Tier: TierAnonymous}, nil
	}
	if u.IsSuperuser || (p.StaffIsAdmin && u.IsStaff) {
		return Scope{Tier: TierAdmin, UserID: u.ID}, nil
	}
	company, err := dir.CompanyByManager(ctx, u.ID)
	if err != nil {
		return Scope{}, err
	}
	if company != nil {
		return Scope{Tier: TierManager, CompanyID: company.ID, UserID: u.ID}, nil
	}
	return Scope{Tier: TierClient, UserID: u.ID}, nil
}

// Filter narrows a scoped listing. Every field is an intersection with the
// tier's base set; a filter can never widen access. The zero value applies no
// narrowing.
type Filter struct {
	// SerialSubstring matches machine serial numbers case-insensitively.
	SerialSubstring string
	// MachineID restricts events to one machine.
	MachineID int64
	// ServiceCompanyID restricts machines to one servicing company.
	ServiceCompanyID int64
	// ClientID restricts machines to one owning client.
	ClientID int64
}

// Role labels for Classify.
const (
	RoleManager        = "manager"
	RoleServiceCompany = "service_company"
	RoleClient         = "client"
)

// AdminDisplayName is the fixed label shown for administrators.
const AdminDisplayName = "Administrator"

// Classification is the informational role of an identity, for display only.
type Classification struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// Classify buckets an identity for UI chrome. Unlike Resolve, it honors
// roster membership: a rostered user classifies as its company even though
// scoping still treats it as a client.
func Classify(ctx context.Context, u *model.User, dir CompanyDirectory, p Policy) (Classification, error) {
	if u.IsSuperuser || (p.StaffIsAdmin && u.IsStaff) {
		return Classification{Role: RoleManager, Name: AdminDisplayName}, nil
	}
	company, err := dir.CompanyOfMember(ctx, u.ID)
	if err != nil {
		return Classification{}, err
	}
	if company != nil {
		return Classification{Role: RoleServiceCompany, Name: company.Name}, nil
	}
	name := u.FirstName
	if name == "" {
		name = u.Username
	}
	return Classification{Role: RoleClient, Name: name}, nil
}
