package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Reiman-Gardens/flutr/internal/model"
)

// CreateReleaseEvent records a release against a shipment of the same
// institution. ReleasedBy is captured as plain text at write time.
func (s *Store) CreateReleaseEvent(ctx context.Context, ev *model.ReleaseEvent) error {
	if ev.ReleasedBy == "" || ev.ReleaseDate.IsZero() {
		return ErrValidation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shp model.Shipment
		err := tx.First(&shp, ev.ShipmentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if shp.InstitutionID != ev.InstitutionID {
			return ErrTenantMismatch
		}

		return tx.Create(ev).Error
	})
}

// GetReleaseEvent retrieves a release event scoped to an institution
func (s *Store) GetReleaseEvent(ctx context.Context, institutionID, id uint) (*model.ReleaseEvent, error) {
	var ev model.ReleaseEvent
	err := s.db.WithContext(ctx).
		Where("id = ? AND institution_id = ?", id, institutionID).
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListReleaseEvents returns an institution's release events, newest first
func (s *Store) ListReleaseEvents(ctx context.Context, institutionID uint) ([]model.ReleaseEvent, error) {
	var events []model.ReleaseEvent
	err := s.db.WithContext(ctx).
		Where("institution_id = ?", institutionID).
		Order("release_date desc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// DeleteReleaseEvent removes an event and its release items atomically
func (s *Store) DeleteReleaseEvent(ctx context.Context, institutionID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ev model.ReleaseEvent
		err := tx.Where("id = ? AND institution_id = ?", id, institutionID).First(&ev).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Where("release_event_id = ?", id).
			Delete(&model.ReleaseItem{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.ReleaseEvent{}, id).Error
	})
}

// AddReleaseItem inserts a release quantity after confirming both the
// release event and the shipment line item exist and are owned by the
// same institution as the new row. A shipment item that exists under a
// different institution is a tenant mismatch, not a missing row.
func (s *Store) AddReleaseItem(ctx context.Context, item *model.ReleaseItem) error {
	if item.Quantity <= 0 {
		return ErrValidation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ev model.ReleaseEvent
		err := tx.First(&ev, item.ReleaseEventID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if ev.InstitutionID != item.InstitutionID {
			return ErrTenantMismatch
		}

		var si model.ShipmentItem
		err = tx.First(&si, item.ShipmentItemID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if si.InstitutionID != item.InstitutionID {
			return ErrTenantMismatch
		}

		var count int64
		tx.Model(&model.ReleaseItem{}).
			Where("release_event_id = ? AND shipment_item_id = ?", item.ReleaseEventID, item.ShipmentItemID).
			Count(&count)
		if count > 0 {
			return conflict("unique_release_shipment_item")
		}

		return tx.Create(item).Error
	})
}

// ListReleaseItems returns the items of a release event
func (s *Store) ListReleaseItems(ctx context.Context, institutionID, eventID uint) ([]model.ReleaseItem, error) {
	var items []model.ReleaseItem
	err := s.db.WithContext(ctx).
		Where("release_event_id = ? AND institution_id = ?", eventID, institutionID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
