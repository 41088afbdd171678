package model

import "time"

// Shipment is a shipment header. The supplier is referenced by code in
// the same form USDA reports and the historical Excel sheets use; the
// stored code must exist for a supplier under the SAME institution,
// which the store validates on every write.
type Shipment struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	InstitutionID uint `json:"institution_id" gorm:"not null;index"`

	SupplierCode string `json:"supplier_code" gorm:"type:varchar(50);not null;index"`

	ShipmentDate time.Time `json:"shipment_date" gorm:"not null"`
	ArrivalDate  time.Time `json:"arrival_date" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Shipment) TableName() string {
	return "shipments"
}

// ShipmentItem is one species line within a shipment, carrying the
// transit-quality counters from the historical Excel structure. The
// institution column is denormalized so cross-table tenant checks can
// compare it directly against the parent shipment's institution.
type ShipmentItem struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	InstitutionID uint `json:"institution_id" gorm:"not null;index"`

	ShipmentID uint `json:"shipment_id" gorm:"not null;uniqueIndex:unique_shipment_species"`
	SpeciesID  uint `json:"butterfly_species_id" gorm:"column:butterfly_species_id;not null;uniqueIndex:unique_shipment_species"`

	NumberReceived int `json:"number_received" gorm:"not null"`

	EmergedInTransit  int `json:"emerged_in_transit" gorm:"not null;default:0"`
	DamagedInTransit  int `json:"damaged_in_transit" gorm:"not null;default:0"`
	DiseasedInTransit int `json:"diseased_in_transit" gorm:"not null;default:0"`
	Parasite          int `json:"parasite" gorm:"not null;default:0"`
	NonEmergence      int `json:"non_emergence" gorm:"not null;default:0"`
	PoorEmergence     int `json:"poor_emergence" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ShipmentItem) TableName() string {
	return "shipment_items"
}
