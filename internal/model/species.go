package model

import (
	"time"

	"gorm.io/datatypes"
)

// Species is the single global butterfly catalog shared by every
// institution. It carries no institution column; tenants reference it
// read-only and it cannot be deleted while referenced.
type Species struct {
	ID uint `json:"id" gorm:"primaryKey"`

	ScientificName string `json:"scientific_name" gorm:"type:varchar(200);not null;uniqueIndex:unique_species_scientific_name"`
	CommonName     string `json:"common_name" gorm:"type:varchar(200);not null"`

	Family    string `json:"family" gorm:"type:varchar(100);not null"`
	SubFamily string `json:"sub_family" gorm:"type:varchar(100);not null"`

	LifespanDays int `json:"lifespan_days" gorm:"not null"`

	// Range holds the set of region tags the species occurs in.
	Range datatypes.JSON `json:"range" gorm:"type:jsonb;not null"`

	HostPlant string `json:"host_plant,omitempty" gorm:"type:text"`
	Habitat   string `json:"habitat,omitempty" gorm:"type:text"`
	FunFacts  string `json:"fun_facts,omitempty" gorm:"type:text"`

	ImgWingsOpen   string `json:"img_wings_open,omitempty" gorm:"type:varchar(300)"`
	ImgWingsClosed string `json:"img_wings_closed,omitempty" gorm:"type:varchar(300)"`
	ExtraImg1      string `json:"extra_img_1,omitempty" gorm:"type:varchar(300)"`
	ExtraImg2      string `json:"extra_img_2,omitempty" gorm:"type:varchar(300)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Species) TableName() string {
	return "butterfly_species"
}

// SpeciesInstitution joins the global catalog to an institution with
// optional per-institution overrides. Enabling a species here is what
// makes it visible on that institution's pages.
type SpeciesInstitution struct {
	ID uint `json:"id" gorm:"primaryKey"`

	SpeciesID     uint `json:"butterfly_species_id" gorm:"column:butterfly_species_id;not null;uniqueIndex:unique_institution_species"`
	InstitutionID uint `json:"institution_id" gorm:"not null;uniqueIndex:unique_institution_species"`

	CommonNameOverride string `json:"common_name_override,omitempty" gorm:"type:varchar(200)"`
	FunFactsOverride   string `json:"fun_facts_override,omitempty" gorm:"type:text"`
	HabitatOverride    string `json:"habitat_override,omitempty" gorm:"type:text"`
	HostPlantOverride  string `json:"host_plant_override,omitempty" gorm:"type:text"`
	ImageOverride      string `json:"image_override,omitempty" gorm:"type:varchar(300)"`
	LifespanOverride   *int   `json:"lifespan_override,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SpeciesInstitution) TableName() string {
	return "butterfly_species_institution"
}
