package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Reiman-Gardens/flutr/internal/model"
)

// CreateNews adds a news entry for an institution
func (s *Store) CreateNews(ctx context.Context, news *model.InstitutionNews) error {
	if news.Title == "" || news.Content == "" {
		return ErrValidation
	}
	return s.db.WithContext(ctx).Create(news).Error
}

// ListNews returns an institution's news entries, newest first.
// activeOnly limits to entries still flagged active.
func (s *Store) ListNews(ctx context.Context, institutionID uint, activeOnly bool) ([]model.InstitutionNews, error) {
	db := s.db.WithContext(ctx).Where("institution_id = ?", institutionID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}

	var entries []model.InstitutionNews
	if err := db.Order("created_at desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateNews saves changes to a news entry, scoped to the institution
func (s *Store) UpdateNews(ctx context.Context, news *model.InstitutionNews) error {
	var existing model.InstitutionNews
	err := s.db.WithContext(ctx).
		Where("id = ? AND institution_id = ?", news.ID, news.InstitutionID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	// The caller rebuilds the entry from request fields; keep the
	// original creation time so newest-first ordering holds.
	news.CreatedAt = existing.CreatedAt
	return s.db.WithContext(ctx).Save(news).Error
}

// DeleteNews removes a news entry
func (s *Store) DeleteNews(ctx context.Context, institutionID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND institution_id = ?", id, institutionID).
		Delete(&model.InstitutionNews{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
