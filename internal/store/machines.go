package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"fleet-service-backend/internal/model"
	"fleet-service-backend/internal/scope"
)

// scopedMachines translates a resolved scope into the base machine queryset.
// Anonymous scopes get a query that can never match; probing callers see an
// empty list, not an error.
func (s *gormStore) scopedMachines(ctx context.Context, sc scope.Scope) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.Machine{})
	switch sc.Tier {
	case scope.TierAdmin:
		return q
	case scope.TierManager:
		return q.Where("service_company_id = ?", sc.CompanyID)
	case scope.TierClient:
		return q.Where("client_id = ?", sc.UserID)
	}
	return q.Where("1 = 0")
}

func serialPattern(substring string) string {
	return "%" + strings.ToLower(substring) + "%"
}

func (s *gormStore) ListMachines(ctx context.Context, sc scope.Scope, f scope.Filter) ([]model.Machine, error) {
	q := s.scopedMachines(ctx, sc)
	if f.SerialSubstring != "" {
		q = q.Where("LOWER(serial_number) LIKE ?", serialPattern(f.SerialSubstring))
	}
	if f.ServiceCompanyID != 0 {
		q = q.Where("service_company_id = ?", f.ServiceCompanyID)
	}
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}

	var machines []model.Machine
	if err := q.Order("shipment_date ASC, id ASC").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	return machines, nil
}

func (s *gormStore) MachineByID(ctx context.Context, sc scope.Scope, id int64) (*model.Machine, error) {
	var m model.Machine
	err := s.scopedMachines(ctx, sc).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up machine %d: %w", id, err)
	}
	return &m, nil
}

// MachinesBySerial is the public lookup: exact serial match, no scoping.
// Only limited fields of the result may be exposed to anonymous callers.
func (s *gormStore) MachinesBySerial(ctx context.Context, serial string) ([]model.Machine, error) {
	var machines []model.Machine
	err := s.db.WithContext(ctx).
		Where("serial_number = ?", serial).
		Find(&machines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up machines by serial %q: %w", serial, err)
	}
	return machines, nil
}

func (s *gormStore) validateMachine(ctx context.Context, m *model.Machine) error {
	verr := newValidationError()

	if m.SerialNumber == "" {
		verr.add("serial_number", "required")
	} else {
		var count int64
		err := s.db.WithContext(ctx).Model(&model.Machine{}).
			Where("serial_number = ? AND id <> ?", m.SerialNumber, m.ID).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check serial uniqueness: %w", err)
		}
		if count > 0 {
			verr.add("serial_number", "already exists")
		}
	}

	modelRefs := []struct {
		field string
		kind  model.ReferenceKind
		id    int64
	}{
		{"model_id", model.KindMachineModel, m.ModelID},
		{"engine_model_id", model.KindEngineModel, m.EngineModelID},
		{"transmission_model_id", model.KindTransmissionModel, m.TransmissionModelID},
		{"drive_axle_model_id", model.KindDriveAxleModel, m.DriveAxleModelID},
		{"steering_axle_model_id", model.KindSteeringAxleModel, m.SteeringAxleModelID},
	}
	for _, ref := range modelRefs {
		if ref.id == 0 {
			verr.add(ref.field, "required")
			continue
		}
		exists, err := s.referenceExists(ctx, ref.kind, ref.id)
		if err != nil {
			return err
		}
		if !exists {
			verr.add(ref.field, "unknown reference")
		}
	}

	if m.ShipmentDate.IsZero() {
		verr.add("shipment_date", "required")
	}
	if m.Consignee == "" {
		verr.add("consignee", "required")
	}
	if m.DeliveryAddress == "" {
		verr.add("delivery_address", "required")
	}

	if m.ClientID == 0 {
		verr.add("client_id", "required")
	} else if _, err := s.UserByID(ctx, m.ClientID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		verr.add("client_id", "unknown user")
	}

	if m.ServiceCompanyID == 0 {
		verr.add("service_company_id", "required")
	} else if _, err := s.CompanyByID(ctx, m.ServiceCompanyID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		verr.add("service_company_id", "unknown service company")
	}

	return verr.orNil()
}

func (s *gormStore) CreateMachine(ctx context.Context, m *model.Machine) error {
	if err := s.validateMachine(ctx, m); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create machine: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateMachine(ctx context.Context, m *model.Machine) error {
	var existing model.Machine
	err := s.db.WithContext(ctx).First(&existing, m.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up machine %d: %w", m.ID, err)
	}

	if err := s.validateMachine(ctx, m); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("failed to update machine %d: %w", m.ID, err)
	}
	return nil
}

// DeleteMachine removes the machine together with its maintenance and claim
// children in one transaction.
func (s *gormStore) DeleteMachine(ctx context.Context, id int64) error {
	var m model.Machine
	err := s.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up machine %d: %w", id, err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("machine_id = ?", id).Delete(&model.Maintenance{}).Error; err != nil {
			return fmt.Errorf("failed to delete maintenances of machine %d: %w", id, err)
		}
		if err := tx.Where("machine_id = ?", id).Delete(&model.Claim{}).Error; err != nil {
			return fmt.Errorf("failed to delete claims of machine %d: %w", id, err)
		}
		if err := tx.Delete(&model.Machine{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete machine %d: %w", id, err)
		}
		return nil
	})
}
