package model

import "time"

// Supplier is the tenant-scoped supplier list. "Delete" normally means
// is_active=false; rows referenced by shipment supplier codes are never
// hard-deleted. The code is the USDA/Excel abbreviation (e.g. "LPS"),
// unique per institution only; two institutions may reuse the same
// code, which is why shipment references carry the institution too.
type Supplier struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	InstitutionID uint `json:"institution_id" gorm:"not null;index;uniqueIndex:unique_supplier_per_institution"`

	Name string `json:"name" gorm:"type:varchar(200);not null"`
	Code string `json:"code" gorm:"type:varchar(50);not null;uniqueIndex:unique_supplier_per_institution"`

	Country    string `json:"country" gorm:"type:varchar(100);not null"`
	WebsiteURL string `json:"website_url,omitempty" gorm:"type:varchar(300)"`

	// No column default: gorm drops zero-value fields from inserts when
	// one is set, which would turn explicit inactive rows active.
	IsActive bool `json:"is_active" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
