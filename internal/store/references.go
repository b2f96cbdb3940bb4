package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fleet-service-backend/internal/model"
)

// machineColumnByKind maps catalog kinds to the machine column referencing
// them. Kinds absent here are referenced by events instead.
var machineColumnByKind = map[model.ReferenceKind]string{
	model.KindMachineModel:      "model_id",
	model.KindEngineModel:       "engine_model_id",
	model.KindTransmissionModel: "transmission_model_id",
	model.KindDriveAxleModel:    "drive_axle_model_id",
	model.KindSteeringAxleModel: "steering_axle_model_id",
}

func (s *gormStore) ListReferences(ctx context.Context, kind model.ReferenceKind) ([]model.Reference, error) {
	var refs []model.Reference
	err := s.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("name ASC, id ASC").
		Find(&refs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s references: %w", kind, err)
	}
	return refs, nil
}

func (s *gormStore) ReferenceByID(ctx context.Context, kind model.ReferenceKind, id int64) (*model.Reference, error) {
	var ref model.Reference
	err := s.db.WithContext(ctx).Where("kind = ?", kind).First(&ref, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s %d: %w", kind, id, err)
	}
	return &ref, nil
}

func (s *gormStore) CreateReference(ctx context.Context, ref *model.Reference) error {
	verr := newValidationError()
	if ref.Kind == "" {
		verr.add("kind", "required")
	}
	if ref.Name == "" {
		verr.add("name", "required")
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&model.Reference{}).
		Where("kind = ? AND name = ?", ref.Kind, ref.Name).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check reference uniqueness: %w", err)
	}
	if count > 0 {
		verr.add("name", "already exists")
		return verr
	}

	if err := s.db.WithContext(ctx).Create(ref).Error; err != nil {
		return fmt.Errorf("failed to create reference: %w", err)
	}
	return nil
}

// DeleteReference rejects the delete while any machine or event still points
// at the row (protect-on-delete).
func (s *gormStore) DeleteReference(ctx context.Context, kind model.ReferenceKind, id int64) error {
	if _, err := s.ReferenceByID(ctx, kind, id); err != nil {
		return err
	}

	referenced, err := s.referenceInUse(ctx, kind, id)
	if err != nil {
		return err
	}
	if referenced {
		verr := newValidationError()
		verr.add("id", fmt.Sprintf("%s is still referenced and cannot be deleted", kind))
		return verr
	}

	err = s.db.WithContext(ctx).
		Where("kind = ?", kind).
		Delete(&model.Reference{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", kind, id, err)
	}
	return nil
}

func (s *gormStore) referenceInUse(ctx context.Context, kind model.ReferenceKind, id int64) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx)

	switch kind {
	case model.KindMaintenanceType:
		q = q.Model(&model.Maintenance{}).Where("maintenance_type_id = ?", id)
	case model.KindFailureNode:
		q = q.Model(&model.Claim{}).Where("failure_node_id = ?", id)
	case model.KindRecoveryMethod:
		q = q.Model(&model.Claim{}).Where("recovery_method_id = ?", id)
	default:
		column, ok := machineColumnByKind[kind]
		if !ok {
			return false, fmt.Errorf("unknown reference kind %q", kind)
		}
		q = q.Model(&model.Machine{}).Where(column+" = ?", id)
	}

	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count references to %s %d: %w", kind, id, err)
	}
	return count > 0, nil
}

// referenceExists is a validation helper for writes holding a catalog id.
func (s *gormStore) referenceExists(ctx context.Context, kind model.ReferenceKind, id int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Reference{}).
		Where("kind = ? AND id = ?", kind, id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s %d: %w", kind, id, err)
	}
	return count > 0, nil
}
