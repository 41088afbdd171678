package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Reiman-Gardens/flutr/internal/model"
)

// CreateSpecies adds an entry to the global catalog
func (s *Store) CreateSpecies(ctx context.Context, sp *model.Species) error {
	if sp.ScientificName == "" || sp.CommonName == "" {
		return ErrValidation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&model.Species{}).
			Where("scientific_name = ?", sp.ScientificName).
			Count(&count)
		if count > 0 {
			return conflict("unique_species_scientific_name")
		}
		return tx.Create(sp).Error
	})
}

// GetSpecies retrieves a catalog entry by ID
func (s *Store) GetSpecies(ctx context.Context, id uint) (*model.Species, error) {
	var sp model.Species
	err := s.db.WithContext(ctx).First(&sp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// SearchSpecies lists catalog entries, optionally filtered by a
// case-insensitive match on scientific or common name.
func (s *Store) SearchSpecies(ctx context.Context, query string) ([]model.Species, error) {
	db := s.db.WithContext(ctx).Model(&model.Species{})
	if query != "" {
		like := "%" + query + "%"
		db = db.Where("scientific_name LIKE ? OR common_name LIKE ?", like, like)
	}

	var species []model.Species
	if err := db.Order("scientific_name").Find(&species).Error; err != nil {
		return nil, err
	}
	return species, nil
}

// DeleteSpecies removes a catalog entry. The catalog is shared: the
// delete is blocked while any tenant row references the species, and a
// blocked delete leaves everything unchanged.
func (s *Store) DeleteSpecies(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sp model.Species
		if err := tx.First(&sp, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var links int64
		tx.Model(&model.SpeciesInstitution{}).
			Where("butterfly_species_id = ?", id).
			Count(&links)
		if links > 0 {
			return ErrDeleteBlocked
		}

		var items int64
		tx.Model(&model.ShipmentItem{}).
			Where("butterfly_species_id = ?", id).
			Count(&items)
		if items > 0 {
			return ErrDeleteBlocked
		}

		return tx.Delete(&model.Species{}, id).Error
	})
}

// EnableSpecies links a catalog species to an institution, optionally
// with override fields. Unique per (species, institution).
func (s *Store) EnableSpecies(ctx context.Context, link *model.SpeciesInstitution) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sp model.Species
		if err := tx.First(&sp, link.SpeciesID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var count int64
		tx.Model(&model.SpeciesInstitution{}).
			Where("butterfly_species_id = ? AND institution_id = ?", link.SpeciesID, link.InstitutionID).
			Count(&count)
		if count > 0 {
			return conflict("unique_institution_species")
		}

		return tx.Create(link).Error
	})
}

// ListEnabledSpecies returns the institution's species links
func (s *Store) ListEnabledSpecies(ctx context.Context, institutionID uint) ([]model.SpeciesInstitution, error) {
	var links []model.SpeciesInstitution
	err := s.db.WithContext(ctx).
		Where("institution_id = ?", institutionID).
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// DisableSpecies removes the link between a species and an institution
func (s *Store) DisableSpecies(ctx context.Context, institutionID, speciesID uint) error {
	res := s.db.WithContext(ctx).
		Where("butterfly_species_id = ? AND institution_id = ?", speciesID, institutionID).
		Delete(&model.SpeciesInstitution{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
