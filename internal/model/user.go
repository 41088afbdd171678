package model

import "time"

// Roles are enforced at the application layer, not by a column
// constraint. The set is closed.
const (
	RoleSuperuser   = "superuser"
	RoleOrgAdmin    = "org_admin"
	RoleOrgEmployee = "org_employee"
)

// ValidRole reports whether role belongs to the closed role set
func ValidRole(role string) bool {
	switch role {
	case RoleSuperuser, RoleOrgAdmin, RoleOrgEmployee:
		return true
	}
	return false
}

// User is scoped to an institution. The same email may exist under
// different institutions, so uniqueness is on (institution_id, email).
type User struct {
	ID uint `json:"id" gorm:"primaryKey"`

	Name         string `json:"name" gorm:"type:varchar(100);not null"`
	Email        string `json:"email" gorm:"type:varchar(100);not null;uniqueIndex:unique_user_email_per_institution"`
	PasswordHash string `json:"-" gorm:"type:varchar(255);not null"`

	InstitutionID uint   `json:"institution_id" gorm:"not null;uniqueIndex:unique_user_email_per_institution"`
	Role          string `json:"role" gorm:"type:varchar(50);not null;default:'org_employee'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
