package model

// ReferenceKind discriminates the eight catalog tables of the original data
// model, which share an identical shape and live in one table here.
type ReferenceKind string

const (
	KindMachineModel      ReferenceKind = "machine_model"
	KindEngineModel       ReferenceKind = "engine_model"
	KindTransmissionModel ReferenceKind = "transmission_model"
	KindDriveAxleModel    ReferenceKind = "drive_axle_model"
	KindSteeringAxleModel ReferenceKind = "steering_axle_model"
	KindMaintenanceType   ReferenceKind = "maintenance_type"
	KindFailureNode       ReferenceKind = "failure_node"
	KindRecoveryMethod    ReferenceKind = "recovery_method"
)

// ReferenceKinds lists every catalog kind.
var ReferenceKinds = []ReferenceKind{
	KindMachineModel,
	KindEngineModel,
	KindTransmissionModel,
	KindDriveAxleModel,
	KindSteeringAxleModel,
	KindMaintenanceType,
	KindFailureNode,
	KindRecoveryMethod,
}

// Reference is a shared lookup entry (machine model, failure node, ...).
// Rows are protected: deletion is rejected while any machine or event still
// points at them.
type Reference struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	Kind        ReferenceKind `gorm:"size:32;not null;uniqueIndex:idx_reference_kind_name" json:"-"`
	Name        string        `gorm:"size:255;not null;uniqueIndex:idx_reference_kind_name" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
}
