package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Reiman-Gardens/flutr/internal/model"
)

// CreateInstitution provisions a new tenant root
func (s *Store) CreateInstitution(ctx context.Context, inst *model.Institution) error {
	if inst.Slug == "" || inst.Name == "" {
		return ErrValidation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&model.Institution{}).Where("slug = ?", inst.Slug).Count(&count)
		if count > 0 {
			return conflict("unique_institution_slug")
		}
		if inst.EmailAddress != "" {
			tx.Model(&model.Institution{}).
				Where("email_address = ?", inst.EmailAddress).
				Count(&count)
			if count > 0 {
				return conflict("unique_institution_email")
			}
		}
		return tx.Create(inst).Error
	})
}

// GetInstitution retrieves an institution by ID
func (s *Store) GetInstitution(ctx context.Context, id uint) (*model.Institution, error) {
	var inst model.Institution
	err := s.db.WithContext(ctx).First(&inst, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// GetInstitutionBySlug retrieves an institution by its URL slug
func (s *Store) GetInstitutionBySlug(ctx context.Context, slug string) (*model.Institution, error) {
	var inst model.Institution
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&inst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// ListInstitutions returns all institutions ordered by name
func (s *Store) ListInstitutions(ctx context.Context) ([]model.Institution, error) {
	var insts []model.Institution
	if err := s.db.WithContext(ctx).Order("name").Find(&insts).Error; err != nil {
		return nil, err
	}
	return insts, nil
}

// UpdateInstitution saves changes to an institution's profile fields
func (s *Store) UpdateInstitution(ctx context.Context, inst *model.Institution) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&model.Institution{}).
			Where("slug = ? AND id != ?", inst.Slug, inst.ID).
			Count(&count)
		if count > 0 {
			return conflict("unique_institution_slug")
		}
		if inst.EmailAddress != "" {
			tx.Model(&model.Institution{}).
				Where("email_address = ? AND id != ?", inst.EmailAddress, inst.ID).
				Count(&count)
			if count > 0 {
				return conflict("unique_institution_email")
			}
		}
		return tx.Save(inst).Error
	})
}

// DeleteInstitution removes a tenant and every row it owns, children
// before parents, as one atomic unit.
func (s *Store) DeleteInstitution(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inst model.Institution
		if err := tx.First(&inst, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		for _, del := range []interface{}{
			&model.ReleaseItem{},
			&model.ReleaseEvent{},
			&model.ShipmentItem{},
			&model.Shipment{},
			&model.Supplier{},
			&model.SpeciesInstitution{},
			&model.InstitutionNews{},
			&model.User{},
		} {
			if err := tx.Where("institution_id = ?", id).Delete(del).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&model.Institution{}, id).Error
	})
}
