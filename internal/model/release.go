package model

import "time"

// ReleaseEvent records butterflies released from a shipment.
// ReleasedBy is plain text on purpose: the audit record must survive
// the named user later leaving the institution.
type ReleaseEvent struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	InstitutionID uint `json:"institution_id" gorm:"not null;index"`

	ShipmentID uint `json:"shipment_id" gorm:"not null;index"`

	ReleaseDate time.Time `json:"release_date" gorm:"not null"`
	ReleasedBy  string    `json:"released_by" gorm:"type:varchar(100);not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (ReleaseEvent) TableName() string {
	return "release_events"
}

// ReleaseItem is one species quantity within a release event, tied back
// to the shipment line item it was released against.
type ReleaseItem struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	InstitutionID uint `json:"institution_id" gorm:"not null;index"`

	ReleaseEventID uint `json:"release_event_id" gorm:"not null;uniqueIndex:unique_release_shipment_item"`
	ShipmentItemID uint `json:"shipment_item_id" gorm:"not null;uniqueIndex:unique_release_shipment_item"`

	Quantity int `json:"quantity" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (ReleaseItem) TableName() string {
	return "release_items"
}
