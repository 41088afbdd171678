package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Reiman-Gardens/flutr/internal/model"
)

// CreateSupplier adds a supplier for an institution. The code must be
// unique within that institution only.
func (s *Store) CreateSupplier(ctx context.Context, sup *model.Supplier) error {
	if sup.Name == "" || sup.Code == "" {
		return ErrValidation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&model.Supplier{}).
			Where("institution_id = ? AND code = ?", sup.InstitutionID, sup.Code).
			Count(&count)
		if count > 0 {
			return conflict("unique_supplier_per_institution")
		}
		return tx.Create(sup).Error
	})
}

// ensureSupplier finds the supplier with the given code under the
// institution, creating it inactive if absent. Runs inside the caller's
// transaction.
func ensureSupplier(tx *gorm.DB, institutionID uint, code, name, country string) (*model.Supplier, error) {
	var sup model.Supplier
	err := tx.Where("institution_id = ? AND code = ?", institutionID, code).First(&sup).Error
	if err == nil {
		return &sup, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sup = model.Supplier{
		InstitutionID: institutionID,
		Name:          name,
		Code:          code,
		Country:       country,
		IsActive:      false,
	}
	if err := tx.Create(&sup).Error; err != nil {
		return nil, err
	}
	return &sup, nil
}

// EnsureSupplier returns the supplier with the given code under the
// institution, creating it inactive if absent. Historical imports use
// this: a shipment referencing an unknown code gets a placeholder
// supplier rather than a rejected import.
func (s *Store) EnsureSupplier(ctx context.Context, institutionID uint, code, name, country string) (*model.Supplier, error) {
	if code == "" {
		return nil, ErrValidation
	}

	var sup *model.Supplier
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		sup, txErr = ensureSupplier(tx, institutionID, code, name, country)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return sup, nil
}

// GetSupplier retrieves a supplier by ID scoped to an institution
func (s *Store) GetSupplier(ctx context.Context, institutionID, id uint) (*model.Supplier, error) {
	var sup model.Supplier
	err := s.db.WithContext(ctx).
		Where("id = ? AND institution_id = ?", id, institutionID).
		First(&sup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sup, nil
}

// ListSuppliers returns the institution's suppliers. Inactive suppliers
// are included unless activeOnly is set.
func (s *Store) ListSuppliers(ctx context.Context, institutionID uint, activeOnly bool) ([]model.Supplier, error) {
	db := s.db.WithContext(ctx).Where("institution_id = ?", institutionID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}

	var suppliers []model.Supplier
	if err := db.Order("code").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// UpdateSupplier saves supplier changes. Renaming a code that shipments
// still store is blocked: historical rows must keep resolving.
func (s *Store) UpdateSupplier(ctx context.Context, sup *model.Supplier) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Supplier
		err := tx.Where("id = ? AND institution_id = ?", sup.ID, sup.InstitutionID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if sup.Code != existing.Code {
			var inUse int64
			tx.Model(&model.Shipment{}).
				Where("institution_id = ? AND supplier_code = ?", sup.InstitutionID, existing.Code).
				Count(&inUse)
			if inUse > 0 {
				return ErrDeleteBlocked
			}

			var count int64
			tx.Model(&model.Supplier{}).
				Where("institution_id = ? AND code = ? AND id != ?", sup.InstitutionID, sup.Code, sup.ID).
				Count(&count)
			if count > 0 {
				return conflict("unique_supplier_per_institution")
			}
		}

		sup.CreatedAt = existing.CreatedAt
		return tx.Save(sup).Error
	})
}

// DeactivateSupplier soft-deletes a supplier. Idempotent: deactivating
// an already-inactive supplier changes nothing, and shipments that
// store its code are untouched.
func (s *Store) DeactivateSupplier(ctx context.Context, institutionID, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&model.Supplier{}).
		Where("id = ? AND institution_id = ?", id, institutionID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish absent from already-inactive
		var count int64
		s.db.WithContext(ctx).Model(&model.Supplier{}).
			Where("id = ? AND institution_id = ?", id, institutionID).
			Count(&count)
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// DeleteSupplier hard-deletes a supplier. Blocked while any shipment of
// the institution stores the supplier's code; deactivate instead.
func (s *Store) DeleteSupplier(ctx context.Context, institutionID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sup model.Supplier
		err := tx.Where("id = ? AND institution_id = ?", id, institutionID).First(&sup).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var inUse int64
		tx.Model(&model.Shipment{}).
			Where("institution_id = ? AND supplier_code = ?", institutionID, sup.Code).
			Count(&inUse)
		if inUse > 0 {
			return ErrDeleteBlocked
		}

		return tx.Delete(&model.Supplier{}, id).Error
	})
}
