// Package view assembles list responses: scoped records bundled with the
// reference-catalog dictionaries a consuming client needs to render them,
// plus the caller's permission block.
package view

import (
	"context"

	"fleet-service-backend/internal/model"
	"fleet-service-backend/internal/scope"
	"fleet-service-backend/internal/store"
)

// Permissions is the capability block attached to every list response. It is
// computed from grants, independent of row-level scoping: a caller may see
// rows with all three flags false.
type Permissions struct {
	CanCreate bool `json:"can_create"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

// ClientSummary is the reduced user shape exposed in dictionaries. The name
// follows the display rule: managed company's name, else first name, else
// username.
type ClientSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MachineSummary identifies a machine in event dictionaries.
type MachineSummary struct {
	ID           int64  `json:"id"`
	SerialNumber string `json:"serial_number"`
}

type MachineDictionaries struct {
	Models             []model.Reference      `json:"models"`
	EngineModels       []model.Reference      `json:"engine_models"`
	TransmissionModels []model.Reference      `json:"transmission_models"`
	DriveAxleModels    []model.Reference      `json:"drive_axle_models"`
	SteeringAxleModels []model.Reference      `json:"steering_axle_models"`
	ServiceCompanies   []model.ServiceCompany `json:"service_companies"`
	Clients            []ClientSummary        `json:"clients"`
}

type MachineList struct {
	Machines     []model.Machine     `json:"machines"`
	Dictionaries MachineDictionaries `json:"dictionaries"`
	Permissions  Permissions         `json:"permissions"`
}

// PublicMachine is the limited shape served to anonymous serial lookups:
// machine identity, model selections and component serials only.
type PublicMachine struct {
	ID                       int64  `json:"id"`
	SerialNumber             string `json:"serial_number"`
	ModelID                  int64  `json:"model_id"`
	EngineModelID            int64  `json:"engine_model_id"`
	EngineSerialNumber       string `json:"engine_serial_number"`
	TransmissionModelID      int64  `json:"transmission_model_id"`
	TransmissionSerialNumber string `json:"transmission_serial_number"`
	DriveAxleModelID         int64  `json:"drive_axle_model_id"`
	DriveAxleSerialNumber    string `json:"drive_axle_serial_number"`
	SteeringAxleModelID      int64  `json:"steering_axle_model_id"`
	SteeringAxleSerialNumber string `json:"steering_axle_serial_number"`
}

type PublicDictionaries struct {
	Models             []model.Reference `json:"models"`
	EngineModels       []model.Reference `json:"engine_models"`
	TransmissionModels []model.Reference `json:"transmission_models"`
	DriveAxleModels    []model.Reference `json:"drive_axle_models"`
	SteeringAxleModels []model.Reference `json:"steering_axle_models"`
}

type PublicMachineInfo struct {
	Machines     []PublicMachine    `json:"machines"`
	Dictionaries PublicDictionaries `json:"dictionaries"`
	Permissions  Permissions        `json:"permissions"`
}

// MaintenanceRecord bundles a maintenance row with its computed display
// field; the display is recomputed on every read, never stored.
type MaintenanceRecord struct {
	model.Maintenance
	OrganizationDisplay string `json:"organization_display"`
}

type MaintenanceDictionaries struct {
	MaintenanceTypes    []model.Reference      `json:"maintenance_types"`
	ServiceCompanies    []model.ServiceCompany `json:"service_companies"`
	Machines            []MachineSummary       `json:"machines"`
	OrganizationChoices []string               `json:"organization_choices"`
}

type MaintenanceList struct {
	Maintenances []MaintenanceRecord     `json:"maintenances"`
	Dictionaries MaintenanceDictionaries `json:"dictionaries"`
	Permissions  Permissions             `json:"permissions"`
}

// ClaimRecord bundles a claim row with its computed downtime.
type ClaimRecord struct {
	model.Claim
	Downtime int `json:"downtime"`
}

type ClaimDictionaries struct {
	FailureNodes     []model.Reference      `json:"failure_nodes"`
	RecoveryMethods  []model.Reference      `json:"recovery_methods"`
	ServiceCompanies []model.ServiceCompany `json:"service_companies"`
	Machines         []MachineSummary       `json:"machines"`
}

type ClaimList struct {
	Claims       []ClaimRecord     `json:"claims"`
	Dictionaries ClaimDictionaries `json:"dictionaries"`
	Permissions  Permissions       `json:"permissions"`
}

// Builder assembles derived views. Every dictionary is read through the
// store on each call; nothing is cached between requests.
type Builder struct {
	st store.Store
}

func NewBuilder(st store.Store) *Builder {
	return &Builder{st: st}
}

// Permissions computes the capability block for one entity kind
// ("machine", "maintenance", "claim").
func (b *Builder) Permissions(ctx context.Context, u *model.User, entity string) (Permissions, error) {
	var p Permissions
	if u == nil {
		return p, nil
	}
	var err error
	if p.CanCreate, err = b.st.HasPermission(ctx, u, entity+".add"); err != nil {
		return p, err
	}
	if p.CanEdit, err = b.st.HasPermission(ctx, u, entity+".change"); err != nil {
		return p, err
	}
	if p.CanDelete, err = b.st.HasPermission(ctx, u, entity+".delete"); err != nil {
		return p, err
	}
	return p, nil
}

func (b *Builder) modelCatalogs(ctx context.Context) (PublicDictionaries, error) {
	var d PublicDictionaries
	var err error
	if d.Models, err = b.st.ListReferences(ctx, model.KindMachineModel); err != nil {
		return d, err
	}
	if d.EngineModels, err = b.st.ListReferences(ctx, model.KindEngineModel); err != nil {
		return d, err
	}
	if d.TransmissionModels, err = b.st.ListReferences(ctx, model.KindTransmissionModel); err != nil {
		return d, err
	}
	if d.DriveAxleModels, err = b.st.ListReferences(ctx, model.KindDriveAxleModel); err != nil {
		return d, err
	}
	if d.SteeringAxleModels, err = b.st.ListReferences(ctx, model.KindSteeringAxleModel); err != nil {
		return d, err
	}
	return d, nil
}

func (b *Builder) clientSummaries(ctx context.Context) ([]ClientSummary, error) {
	users, err := b.st.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	companies, err := b.st.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	companyByManager := make(map[int64]string, len(companies))
	for _, c := range companies {
		if c.ManagerID != nil {
			companyByManager[*c.ManagerID] = c.Name
		}
	}

	summaries := make([]ClientSummary, 0, len(users))
	for _, u := range users {
		name := companyByManager[u.ID]
		if name == "" {
			name = u.FirstName
		}
		if name == "" {
			name = u.Username
		}
		summaries = append(summaries, ClientSummary{ID: u.ID, Name: name})
	}
	return summaries, nil
}

func machineSummaries(machines []model.Machine) []MachineSummary {
	summaries := make([]MachineSummary, 0, len(machines))
	for _, m := range machines {
		summaries = append(summaries, MachineSummary{ID: m.ID, SerialNumber: m.SerialNumber})
	}
	return summaries
}

// MachineList bundles scoped machines with the full dictionaries and the
// caller's machine permission block.
func (b *Builder) MachineList(ctx context.Context, u *model.User, machines []model.Machine) (*MachineList, error) {
	catalogs, err := b.modelCatalogs(ctx)
	if err != nil {
		return nil, err
	}
	companies, err := b.st.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := b.clientSummaries(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := b.Permissions(ctx, u, "machine")
	if err != nil {
		return nil, err
	}

	if machines == nil {
		machines = []model.Machine{}
	}
	return &MachineList{
		Machines: machines,
		Dictionaries: MachineDictionaries{
			Models:             catalogs.Models,
			EngineModels:       catalogs.EngineModels,
			TransmissionModels: catalogs.TransmissionModels,
			DriveAxleModels:    catalogs.DriveAxleModels,
			SteeringAxleModels: catalogs.SteeringAxleModels,
			ServiceCompanies:   companies,
			Clients:            clients,
		},
		Permissions: perms,
	}, nil
}

// PublicMachineInfo bundles the limited machine shapes for the anonymous
// serial-number lookup.
func (b *Builder) PublicMachineInfo(ctx context.Context, u *model.User, machines []model.Machine) (*PublicMachineInfo, error) {
	catalogs, err := b.modelCatalogs(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := b.Permissions(ctx, u, "machine")
	if err != nil {
		return nil, err
	}

	limited := make([]PublicMachine, 0, len(machines))
	for _, m := range machines {
		limited = append(limited, PublicMachine{
			ID:                       m.ID,
			SerialNumber:             m.SerialNumber,
			ModelID:                  m.ModelID,
			EngineModelID:            m.EngineModelID,
			EngineSerialNumber:       m.EngineSerialNumber,
			TransmissionModelID:      m.TransmissionModelID,
			TransmissionSerialNumber: m.TransmissionSerialNumber,
			DriveAxleModelID:         m.DriveAxleModelID,
			DriveAxleSerialNumber:    m.DriveAxleSerialNumber,
			SteeringAxleModelID:      m.SteeringAxleModelID,
			SteeringAxleSerialNumber: m.SteeringAxleSerialNumber,
		})
	}

	return &PublicMachineInfo{Machines: limited, Dictionaries: catalogs, Permissions: perms}, nil
}

// MaintenanceRecords attaches the computed organization display to each row.
func (b *Builder) MaintenanceRecords(ctx context.Context, records []model.Maintenance) ([]MaintenanceRecord, error) {
	companies, err := b.st.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	nameByID := make(map[int64]string, len(companies))
	for _, c := range companies {
		nameByID[c.ID] = c.Name
	}

	out := make([]MaintenanceRecord, 0, len(records))
	for _, m := range records {
		var orgName string
		if m.OrganizationID != nil {
			orgName = nameByID[*m.OrganizationID]
		}
		out = append(out, MaintenanceRecord{
			Maintenance:         m,
			OrganizationDisplay: m.OrganizationDisplay(orgName),
		})
	}
	return out, nil
}

// MaintenanceList bundles scoped maintenance records with dictionaries,
// including the per-request organization choices list.
func (b *Builder) MaintenanceList(ctx context.Context, u *model.User, sc scope.Scope, records []model.Maintenance) (*MaintenanceList, error) {
	withDisplay, err := b.MaintenanceRecords(ctx, records)
	if err != nil {
		return nil, err
	}
	types, err := b.st.ListReferences(ctx, model.KindMaintenanceType)
	if err != nil {
		return nil, err
	}
	companies, err := b.st.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	machines, err := b.st.ListMachines(ctx, sc, scope.Filter{})
	if err != nil {
		return nil, err
	}
	choices, err := b.st.OrganizationChoices(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := b.Permissions(ctx, u, "maintenance")
	if err != nil {
		return nil, err
	}

	return &MaintenanceList{
		Maintenances: withDisplay,
		Dictionaries: MaintenanceDictionaries{
			MaintenanceTypes:    types,
			ServiceCompanies:    companies,
			Machines:            machineSummaries(machines),
			OrganizationChoices: choices,
		},
		Permissions: perms,
	}, nil
}

// ClaimRecords attaches the computed downtime to each row.
func ClaimRecords(records []model.Claim) []ClaimRecord {
	out := make([]ClaimRecord, 0, len(records))
	for _, c := range records {
		out = append(out, ClaimRecord{Claim: c, Downtime: c.Downtime()})
	}
	return out
}

// ClaimList bundles scoped claims with dictionaries and permissions.
func (b *Builder) ClaimList(ctx context.Context, u *model.User, sc scope.Scope, records []model.Claim) (*ClaimList, error) {
	nodes, err := b.st.ListReferences(ctx, model.KindFailureNode)
	if err != nil {
		return nil, err
	}
	methods, err := b.st.ListReferences(ctx, model.KindRecoveryMethod)
	if err != nil {
		return nil, err
	}
	companies, err := b.st.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	machines, err := b.st.ListMachines(ctx, sc, scope.Filter{})
	if err != nil {
		return nil, err
	}
	perms, err := b.Permissions(ctx, u, "claim")
	if err != nil {
		return nil, err
	}

	return &ClaimList{
		Claims: ClaimRecords(records),
		Dictionaries: ClaimDictionaries{
			FailureNodes:     nodes,
			RecoveryMethods:  methods,
			ServiceCompanies: companies,
			Machines:         machineSummaries(machines),
		},
		Permissions: perms,
	}, nil
}
