package models

import (
	"time"

	"gorm.io/gorm"
)

type PackageTier string

const (
	PackageBronze   PackageTier = "bronze"
	PackageSilver   PackageTier = "silver"
	PackageGold     PackageTier = "gold"
	PackagePlatinum PackageTier = "platinum"
	PackageCustom   PackageTier = "custom"
)

// Valid reports whether t is a known package tier.
func (t PackageTier) Valid() bool {
	switch t {
	case PackageBronze, PackageSilver, PackageGold, PackagePlatinum, PackageCustom:
		return true
	}
	return false
}

type Sponsor struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	EventID        uint64         `gorm:"not null;index" json:"event_id"`
	CompanyName    string         `gorm:"type:varchar(255);not null" json:"company_name"`
	ContactName    *string        `gorm:"type:varchar(255)" json:"contact_name"`
	ContactEmail   *string        `gorm:"type:varchar(255)" json:"contact_email"`
	PackageTier    *PackageTier   `gorm:"type:varchar(20)" json:"package_tier"`
	ContractValue  *int64         `json:"contract_value"`
	PaymentStatus  *string        `gorm:"type:varchar(20)" json:"payment_status"`
	Notes          *string        `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}
