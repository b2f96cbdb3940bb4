package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fleet-service-backend/internal/model"
	"fleet-service-backend/internal/scope"
)

// scopedEvents narrows an event queryset through the parent machine: a
// manager sees events of machines its company services, a client sees events
// of its own machines. The table name qualifies the event-side columns.
func scopedEvents(q *gorm.DB, table string, sc scope.Scope, f scope.Filter) *gorm.DB {
	q = q.Joins(fmt.Sprintf("JOIN machines ON machines.id = %s.machine_id", table))
	switch sc.Tier {
	case scope.TierAdmin:
	case scope.TierManager:
		q = q.Where("machines.service_company_id = ?", sc.CompanyID)
	case scope.TierClient:
		q = q.Where("machines.client_id = ?", sc.UserID)
	default:
		q = q.Where("1 = 0")
	}

	if f.SerialSubstring != "" {
		q = q.Where("LOWER(machines.serial_number) LIKE ?", serialPattern(f.SerialSubstring))
	}
	if f.MachineID != 0 {
		q = q.Where(fmt.Sprintf("%s.machine_id = ?", table), f.MachineID)
	}
	return q
}

// fillServiceCompany defaults the record's scope key from its machine at
// creation time. A missing machine leaves the field unset; required-field
// validation then rejects the record.
func (s *gormStore) fillServiceCompany(ctx context.Context, machineID int64, serviceCompanyID *int64) error {
	if *serviceCompanyID != 0 || machineID == 0 {
		return nil
	}
	var m model.Machine
	err := s.db.WithContext(ctx).First(&m, machineID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up machine %d for default fill: %w", machineID, err)
	}
	*serviceCompanyID = m.ServiceCompanyID
	return nil
}

func (s *gormStore) machineExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Machine{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check machine %d: %w", id, err)
	}
	return count > 0, nil
}

// validateEventRefs covers the fields maintenance and claim records share.
func (s *gormStore) validateEventRefs(ctx context.Context, verr *ValidationError, machineID, serviceCompanyID, operatingTime int64) error {
	if machineID == 0 {
		verr.add("machine_id", "required")
	} else {
		exists, err := s.machineExists(ctx, machineID)
		if err != nil {
			return err
		}
		if !exists {
			verr.add("machine_id", "unknown machine")
		}
	}

	if serviceCompanyID == 0 {
		verr.add("service_company_id", "required")
	} else if _, err := s.CompanyByID(ctx, serviceCompanyID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		verr.add("service_company_id", "unknown service company")
	}

	if operatingTime < 0 {
		verr.add("operating_time", "must be non-negative")
	}
	return nil
}

// --- Maintenance ---

func (s *gormStore) ListMaintenances(ctx context.Context, sc scope.Scope, f scope.Filter) ([]model.Maintenance, error) {
	q := scopedEvents(s.db.WithContext(ctx).Model(&model.Maintenance{}), "maintenances", sc, f)

	var records []model.Maintenance
	if err := q.Order("maintenances.maintenance_date ASC, maintenances.id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list maintenances: %w", err)
	}
	return records, nil
}

func (s *gormStore) MaintenanceByID(ctx context.Context, sc scope.Scope, id int64) (*model.Maintenance, error) {
	q := scopedEvents(s.db.WithContext(ctx).Model(&model.Maintenance{}), "maintenances", sc, scope.Filter{})

	var m model.Maintenance
	err := q.Where("maintenances.id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up maintenance %d: %w", id, err)
	}
	return &m, nil
}

func (s *gormStore) validateMaintenance(ctx context.Context, m *model.Maintenance) error {
	verr := newValidationError()
	if err := s.validateEventRefs(ctx, verr, m.MachineID, m.ServiceCompanyID, m.OperatingTime); err != nil {
		return err
	}

	if m.MaintenanceTypeID == 0 {
		verr.add("maintenance_type_id", "required")
	} else {
		exists, err := s.referenceExists(ctx, model.KindMaintenanceType, m.MaintenanceTypeID)
		if err != nil {
			return err
		}
		if !exists {
			verr.add("maintenance_type_id", "unknown reference")
		}
	}

	if m.MaintenanceDate.IsZero() {
		verr.add("maintenance_date", "required")
	}
	if m.OrderNumber == "" {
		verr.add("order_number", "required")
	}
	if m.OrderDate.IsZero() {
		verr.add("order_date", "required")
	}

	if m.OrganizationID != nil {
		if _, err := s.CompanyByID(ctx, *m.OrganizationID); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			verr.add("organization_id", "unknown service company")
		}
	}

	return verr.orNil()
}

func (s *gormStore) CreateMaintenance(ctx context.Context, m *model.Maintenance) error {
	if err := s.fillServiceCompany(ctx, m.MachineID, &m.ServiceCompanyID); err != nil {
		return err
	}
	if err := s.validateMaintenance(ctx, m); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create maintenance: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateMaintenance(ctx context.Context, m *model.Maintenance) error {
	var existing model.Maintenance
	err := s.db.WithContext(ctx).First(&existing, m.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up maintenance %d: %w", m.ID, err)
	}

	if err := s.validateMaintenance(ctx, m); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("failed to update maintenance %d: %w", m.ID, err)
	}
	return nil
}

func (s *gormStore) DeleteMaintenance(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Maintenance{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete maintenance %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Claims ---

func (s *gormStore) ListClaims(ctx context.Context, sc scope.Scope, f scope.Filter) ([]model.Claim, error) {
	q := scopedEvents(s.db.WithContext(ctx).Model(&model.Claim{}), "claims", sc, f)

	var records []model.Claim
	if err := q.Order("claims.failure_date ASC, claims.id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	return records, nil
}

func (s *gormStore) ClaimByID(ctx context.Context, sc scope.Scope, id int64) (*model.Claim, error) {
	q := scopedEvents(s.db.WithContext(ctx).Model(&model.Claim{}), "claims", sc, scope.Filter{})

	var c model.Claim
	err := q.Where("claims.id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up claim %d: %w", id, err)
	}
	return &c, nil
}

func (s *gormStore) validateClaim(ctx context.Context, c *model.Claim) error {
	verr := newValidationError()
	if err := s.validateEventRefs(ctx, verr, c.MachineID, c.ServiceCompanyID, c.OperatingTime); err != nil {
		return err
	}

	if c.FailureNodeID == 0 {
		verr.add("failure_node_id", "required")
	} else {
		exists, err := s.referenceExists(ctx, model.KindFailureNode, c.FailureNodeID)
		if err != nil {
			return err
		}
		if !exists {
			verr.add("failure_node_id", "unknown reference")
		}
	}

	if c.RecoveryMethodID == 0 {
		verr.add("recovery_method_id", "required")
	} else {
		exists, err := s.referenceExists(ctx, model.KindRecoveryMethod, c.RecoveryMethodID)
		if err != nil {
			return err
		}
		if !exists {
			verr.add("recovery_method_id", "unknown reference")
		}
	}

	if c.FailureDate.IsZero() {
		verr.add("failure_date", "required")
	}
	if c.FailureDescription == "" {
		verr.add("failure_description", "required")
	}
	if c.RecoveryDate.IsZero() {
		verr.add("recovery_date", "required")
	} else if !c.FailureDate.IsZero() && c.RecoveryDate.Before(c.FailureDate) {
		verr.add("recovery_date", "must not precede failure_date")
	}

	return verr.orNil()
}

func (s *gormStore) CreateClaim(ctx context.Context, c *model.Claim) error {
	if err := s.fillServiceCompany(ctx, c.MachineID, &c.ServiceCompanyID); err != nil {
		return err
	}
	if err := s.validateClaim(ctx, c); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create claim: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateClaim(ctx context.Context, c *model.Claim) error {
	var existing model.Claim
	err := s.db.WithContext(ctx).First(&existing, c.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up claim %d: %w", c.ID, err)
	}

	if err := s.validateClaim(ctx, c); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("failed to update claim %d: %w", c.ID, err)
	}
	return nil
}

func (s *gormStore) DeleteClaim(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Claim{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete claim %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
