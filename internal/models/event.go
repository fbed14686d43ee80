package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Description    *string        `gorm:"type:text" json:"description"`
	EventDate      *time.Time     `gorm:"type:date" json:"event_date"`
	Location       *string        `gorm:"type:varchar(255)" json:"location"`
	Status         string         `gorm:"type:varchar(20);not null;default:'planning'" json:"status"`
	CreatedByID    *uint64        `json:"created_by_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Sponsors []Sponsor `gorm:"foreignKey:EventID" json:"sponsors,omitempty"`
}
