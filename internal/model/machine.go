package model

import "time"

// Machine is a tracked piece of equipment. The serial number is globally
// unique; client and service company are required and protected references.
type Machine struct {
	ID                       int64     `gorm:"primaryKey" json:"id"`
	SerialNumber             string    `gorm:"uniqueIndex;size:255;not null" json:"serial_number"`
	ModelID                  int64     `gorm:"not null" json:"model_id"`
	EngineModelID            int64     `gorm:"not null" json:"engine_model_id"`
	EngineSerialNumber       string    `gorm:"size:255;not null" json:"engine_serial_number"`
	TransmissionModelID      int64     `gorm:"not null" json:"transmission_model_id"`
	TransmissionSerialNumber string    `gorm:"size:255;not null" json:"transmission_serial_number"`
	DriveAxleModelID         int64     `gorm:"not null" json:"drive_axle_model_id"`
	DriveAxleSerialNumber    string    `gorm:"size:255;not null" json:"drive_axle_serial_number"`
	SteeringAxleModelID      int64     `gorm:"not null" json:"steering_axle_model_id"`
	SteeringAxleSerialNumber string    `gorm:"size:255;not null" json:"steering_axle_serial_number"`
	ContractInfo             string    `gorm:"size:255" json:"contract_info"`
	ShipmentDate             time.Time `gorm:"not null" json:"shipment_date"`
	Consignee                string    `gorm:"size:255;not null" json:"consignee"`
	DeliveryAddress          string    `gorm:"type:text;not null" json:"delivery_address"`
	Equipment                string    `gorm:"type:text" json:"equipment"`
	ClientID                 int64     `gorm:"index;not null" json:"client_id"`
	ServiceCompanyID         int64     `gorm:"index;not null" json:"service_company_id"`
}
