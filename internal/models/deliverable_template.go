package models

import "time"

// DeliverableTemplate describes a deliverable that is provisioned for every sponsor
// buying a given package tier. Templates with no organization are global.
type DeliverableTemplate struct {
	ID              uint64      `gorm:"primarykey" json:"id"`
	OrganizationID  *uint64     `gorm:"index" json:"organization_id"`
	PackageTier     PackageTier `gorm:"type:varchar(20);not null;index" json:"package_tier"`
	Title           string      `gorm:"type:varchar(255);not null" json:"title"`
	Description     *string     `gorm:"type:text" json:"description"`
	DaysBeforeEvent int         `gorm:"not null;default:0" json:"days_before_event"`
	Priority        Priority    `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	IsActive        bool        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time   `json:"created_at"`
}
