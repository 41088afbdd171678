package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Reiman-Gardens/flutr/internal/model"
)

// CreateShipment inserts a shipment header after validating that its
// supplier code resolves under the same institution. The lookup is
// scoped to (institution_id, code), so a code that only exists under
// another institution is indistinguishable from an absent one. An
// inactive supplier still validates: inactive is not absent.
func (s *Store) CreateShipment(ctx context.Context, shp *model.Shipment) error {
	if shp.SupplierCode == "" || shp.ShipmentDate.IsZero() || shp.ArrivalDate.IsZero() {
		return ErrValidation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sup model.Supplier
		err := tx.Where("institution_id = ? AND code = ?", shp.InstitutionID, shp.SupplierCode).
			First(&sup).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return tx.Create(shp).Error
	})
}

// ImportShipment records a historical shipment, creating an inactive
// placeholder supplier when the code is unknown. The placeholder and
// the shipment share one transaction: a failed import leaves no stray
// supplier behind.
func (s *Store) ImportShipment(ctx context.Context, shp *model.Shipment, supplierName, supplierCountry string) error {
	if shp.SupplierCode == "" || shp.ShipmentDate.IsZero() || shp.ArrivalDate.IsZero() {
		return ErrValidation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ensureSupplier(tx, shp.InstitutionID, shp.SupplierCode, supplierName, supplierCountry); err != nil {
			return err
		}
		return tx.Create(shp).Error
	})
}

// GetShipment retrieves a shipment scoped to an institution
func (s *Store) GetShipment(ctx context.Context, institutionID, id uint) (*model.Shipment, error) {
	var shp model.Shipment
	err := s.db.WithContext(ctx).
		Where("id = ? AND institution_id = ?", id, institutionID).
		First(&shp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &shp, nil
}

// ListShipments returns an institution's shipments, newest first
func (s *Store) ListShipments(ctx context.Context, institutionID uint) ([]model.Shipment, error) {
	var shipments []model.Shipment
	err := s.db.WithContext(ctx).
		Where("institution_id = ?", institutionID).
		Order("shipment_date desc").
		Find(&shipments).Error
	if err != nil {
		return nil, err
	}
	return shipments, nil
}

// DeleteShipment removes a shipment with its line items, release events
// and release items as one atomic unit.
func (s *Store) DeleteShipment(ctx context.Context, institutionID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shp model.Shipment
		err := tx.Where("id = ? AND institution_id = ?", id, institutionID).First(&shp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var eventIDs []uint
		tx.Model(&model.ReleaseEvent{}).
			Where("shipment_id = ? AND institution_id = ?", id, institutionID).
			Pluck("id", &eventIDs)
		if len(eventIDs) > 0 {
			if err := tx.Where("release_event_id IN ?", eventIDs).
				Delete(&model.ReleaseItem{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&model.ReleaseEvent{}, eventIDs).Error; err != nil {
				return err
			}
		}

		var itemIDs []uint
		tx.Model(&model.ShipmentItem{}).
			Where("shipment_id = ?", id).
			Pluck("id", &itemIDs)
		if len(itemIDs) > 0 {
			// A release item surviving the event cascade belongs to an
			// event of another shipment; restrict applies.
			var refs int64
			tx.Model(&model.ReleaseItem{}).
				Where("shipment_item_id IN ?", itemIDs).
				Count(&refs)
			if refs > 0 {
				return ErrDeleteBlocked
			}
			if err := tx.Delete(&model.ShipmentItem{}, itemIDs).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&model.Shipment{}, id).Error
	})
}

// AddShipmentItem inserts a line item after confirming the parent
// shipment exists and is owned by the same institution, and that the
// species exists in the global catalog.
func (s *Store) AddShipmentItem(ctx context.Context, item *model.ShipmentItem) error {
	if item.NumberReceived < 0 ||
		item.EmergedInTransit < 0 || item.DamagedInTransit < 0 ||
		item.DiseasedInTransit < 0 || item.Parasite < 0 ||
		item.NonEmergence < 0 || item.PoorEmergence < 0 {
		return ErrValidation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shp model.Shipment
		err := tx.First(&shp, item.ShipmentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if shp.InstitutionID != item.InstitutionID {
			return ErrTenantMismatch
		}

		var sp model.Species
		err = tx.First(&sp, item.SpeciesID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var count int64
		tx.Model(&model.ShipmentItem{}).
			Where("shipment_id = ? AND butterfly_species_id = ?", item.ShipmentID, item.SpeciesID).
			Count(&count)
		if count > 0 {
			return conflict("unique_shipment_species")
		}

		return tx.Create(item).Error
	})
}

// ListShipmentItems returns the line items of a shipment
func (s *Store) ListShipmentItems(ctx context.Context, institutionID, shipmentID uint) ([]model.ShipmentItem, error) {
	var items []model.ShipmentItem
	err := s.db.WithContext(ctx).
		Where("shipment_id = ? AND institution_id = ?", shipmentID, institutionID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteShipmentItem removes a line item. Blocked once release items
// reference it: released quantities are committed history.
func (s *Store) DeleteShipmentItem(ctx context.Context, institutionID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.ShipmentItem
		err := tx.Where("id = ? AND institution_id = ?", id, institutionID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var refs int64
		tx.Model(&model.ReleaseItem{}).
			Where("shipment_item_id = ?", id).
			Count(&refs)
		if refs > 0 {
			return ErrDeleteBlocked
		}

		return tx.Delete(&model.ShipmentItem{}, id).Error
	})
}
