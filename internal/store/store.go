package store

import (
	"context"

	"gorm.io/gorm"

	"fleet-service-backend/internal/model"
	"fleet-service-backend/internal/scope"
)

// Store defines the interface for all database operations. Scoped listings
// take the caller's resolved scope plus an optional narrowing filter; the
// filter only ever intersects with the scope's base set.
type Store interface {
	scope.CompanyDirectory

	DB() *gorm.DB

	// Users
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	UserByID(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, u *model.User, password string) error
	EnsureAdminUser(ctx context.Context, username, password string) error
	HasPermission(ctx context.Context, u *model.User, codename string) (bool, error)
	GrantPermission(ctx context.Context, userID int64, codename string) error

	// Reference catalogs
	ListReferences(ctx context.Context, kind model.ReferenceKind) ([]model.Reference, error)
	ReferenceByID(ctx context.Context, kind model.ReferenceKind, id int64) (*model.Reference, error)
	CreateReference(ctx context.Context, ref *model.Reference) error
	DeleteReference(ctx context.Context, kind model.ReferenceKind, id int64) error

	// Service companies
	ListCompanies(ctx context.Context) ([]model.ServiceCompany, error)
	CompanyByID(ctx context.Context, id int64) (*model.ServiceCompany, error)
	CreateCompany(ctx context.Context, company *model.ServiceCompany) error
	DeleteCompany(ctx context.Context, id int64) error
	OrganizationChoices(ctx context.Context) ([]string, error)

	// Machines
	ListMachines(ctx context.Context, sc scope.Scope, f scope.Filter) ([]model.Machine, error)
	MachineByID(ctx context.Context, sc scope.Scope, id int64) (*model.Machine, error)
	MachinesBySerial(ctx context.Context, serial string) ([]model.Machine, error)
	CreateMachine(ctx context.Context, m *model.Machine) error
	UpdateMachine(ctx context.Context, m *model.Machine) error
	DeleteMachine(ctx context.Context, id int64) error

	// Maintenance events
	ListMaintenances(ctx context.Context, sc scope.Scope, f scope.Filter) ([]model.Maintenance, error)
	MaintenanceByID(ctx context.Context, sc scope.Scope, id int64) (*model.Maintenance, error)
	CreateMaintenance(ctx context.Context, m *model.Maintenance) error
	UpdateMaintenance(ctx context.Context, m *model.Maintenance) error
	DeleteMaintenance(ctx context.Context, id int64) error

	// Claims
	ListClaims(ctx context.Context, sc scope.Scope, f scope.Filter) ([]model.Claim, error)
	ClaimByID(ctx context.Context, sc scope.Scope, id int64) (*model.Claim, error)
	CreateClaim(ctx context.Context, c *model.Claim) error
	UpdateClaim(ctx context.Context, c *model.Claim) error
	DeleteClaim(ctx context.Context, id int64) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}
