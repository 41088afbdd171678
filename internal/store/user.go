package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Reiman-Gardens/flutr/internal/model"
)

// CreateUser adds a user under an institution. The role must belong to
// the closed role set and (institution_id, email) must be unique; the
// same email under a different institution is fine.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if user.Email == "" || user.Name == "" || user.PasswordHash == "" {
		return ErrValidation
	}
	if !model.ValidRole(user.Role) {
		return ErrValidation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inst model.Institution
		if err := tx.First(&inst, user.InstitutionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var count int64
		tx.Model(&model.User{}).
			Where("institution_id = ? AND email = ?", user.InstitutionID, user.Email).
			Count(&count)
		if count > 0 {
			return conflict("unique_user_email_per_institution")
		}

		return tx.Create(user).Error
	})
}

// GetUserByEmail looks a user up by email alone. Login is global by
// email: the institution is not known at login time, it comes back out
// of the stored row.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser retrieves a user by ID scoped to an institution
func (s *Store) GetUser(ctx context.Context, institutionID, id uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND institution_id = ?", id, institutionID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users of an institution
func (s *Store) ListUsers(ctx context.Context, institutionID uint) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).
		Where("institution_id = ?", institutionID).
		Order("name").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes a user from an institution
func (s *Store) DeleteUser(ctx context.Context, institutionID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND institution_id = ?", id, institutionID).
		Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
