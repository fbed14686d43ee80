package models

import (
	"time"

	"gorm.io/gorm"
)

type ProfileRole string

const (
	RoleAdmin  ProfileRole = "admin"
	RoleMember ProfileRole = "member"
)

// Profile is a user. A profile belongs to at most one organization.
type Profile struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	OrganizationID *uint64        `gorm:"index" json:"organization_id"`
	Email          string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName       *string        `gorm:"type:varchar(255)" json:"full_name"`
	PasswordHash   string         `gorm:"type:varchar(255);not null" json:"-"`
	Role           ProfileRole    `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

// DisplayName returns the full name, or the email when no name is set.
func (p Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}

// IsAdmin reports whether the profile administers its organization.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
