package model

import (
	"time"

	"gorm.io/datatypes"
)

// Institution is the multi-tenant root entity. Every operational table
// references an institution for data isolation; deleting an institution
// removes all rows it owns.
type Institution struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Slug string `json:"slug" gorm:"type:varchar(100);not null;uniqueIndex:unique_institution_slug"`

	Name            string `json:"name" gorm:"type:varchar(200);not null"`
	StreetAddress   string `json:"street_address" gorm:"type:varchar(200);not null"`
	ExtendedAddress string `json:"extended_address,omitempty" gorm:"type:varchar(200)"`
	City            string `json:"city" gorm:"type:varchar(100);not null"`
	StateProvince   string `json:"state_province" gorm:"type:varchar(100);not null"`
	PostalCode      string `json:"postal_code" gorm:"type:varchar(20);not null"`
	TimeZone        string `json:"time_zone,omitempty" gorm:"type:varchar(64)"`
	Country         string `json:"country" gorm:"type:varchar(100);not null"`

	PhoneNumber string `json:"phone_number,omitempty" gorm:"type:varchar(30)"`
	// EmailAddress is optional; uniqueness is enforced in the store for
	// non-empty values only, so email-less institutions never collide.
	EmailAddress string `json:"email_address,omitempty" gorm:"type:varchar(100);index"`

	IABESMember bool           `json:"iabes_member" gorm:"not null;default:false"`
	ThemeColors datatypes.JSON `json:"theme_colors,omitempty" gorm:"type:jsonb"`

	WebsiteURL       string         `json:"website_url,omitempty" gorm:"type:varchar(300)"`
	FacilityImageURL string         `json:"facility_image_url,omitempty" gorm:"type:varchar(300)"`
	LogoURL          string         `json:"logo_url,omitempty" gorm:"type:varchar(300)"`
	Description      string         `json:"description,omitempty" gorm:"type:text"`
	SocialLinks      datatypes.JSON `json:"social_links,omitempty" gorm:"type:jsonb"`
	StatsActive      bool           `json:"stats_active" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table name stable for reporting/export consumers
func (Institution) TableName() string {
	return "institutions"
}

// InstitutionNews is a tenant-scoped news entry. The front page shows
// the most recent active entry; older entries stay for history.
type InstitutionNews struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	InstitutionID uint `json:"institution_id" gorm:"not null;index"`

	Title    string `json:"title" gorm:"type:varchar(200);not null"`
	Content  string `json:"content" gorm:"type:text;not null"`
	ImageURL string `json:"image_url,omitempty" gorm:"type:varchar(300)"`

	IsActive bool `json:"is_active" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InstitutionNews) TableName() string {
	return "institution_news"
}
