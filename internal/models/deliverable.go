package models

import (
	"time"

	"gorm.io/gorm"
)

type DeliverableStatus string

const (
	StatusPending    DeliverableStatus = "pending"
	StatusInProgress DeliverableStatus = "in_progress"
	StatusCompleted  DeliverableStatus = "completed"
	StatusBlocked    DeliverableStatus = "blocked"
	StatusCancelled  DeliverableStatus = "cancelled"
	// StatusOverdue is an explicitly stored status. It is independent of the derived
	// risk tier; most overdue deliverables are still stored as pending or in_progress.
	StatusOverdue DeliverableStatus = "overdue"
)

// Valid reports whether s is a known status.
func (s DeliverableStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBlocked, StatusCancelled, StatusOverdue:
		return true
	}
	return false
}

// Terminal reports whether no further work (or reminding) is expected.
func (s DeliverableStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// OpenStatuses are the statuses of deliverables that still need attention.
var OpenStatuses = []DeliverableStatus{StatusPending, StatusInProgress, StatusBlocked, StatusOverdue}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Deliverable struct {
	ID                    uint64            `gorm:"primarykey" json:"id"`
	SponsorID             uint64            `gorm:"not null;index" json:"sponsor_id"`
	Title                 string            `gorm:"type:varchar(255);not null" json:"title"`
	Description           *string           `gorm:"type:text" json:"description"`
	DueDate               time.Time         `gorm:"type:date;not null;index" json:"due_date"`
	Status                DeliverableStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Priority              Priority          `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	AssigneeID            *uint64           `gorm:"index" json:"assignee_id"`
	CompletionNotes       *string           `gorm:"type:text" json:"completion_notes"`
	CompletionEvidenceURL *string           `gorm:"type:varchar(1024)" json:"completion_evidence_url"`
	LastNotifiedAt        *time.Time        `json:"last_notified_at"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
	DeletedAt             gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relations. Both may be missing from a query result; consumers must check.
	Sponsor  *Sponsor `gorm:"foreignKey:SponsorID" json:"sponsor,omitempty"`
	Assignee *Profile `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

// BeforeSave stores the due date as a bare calendar date.
func (d *Deliverable) BeforeSave(tx *gorm.DB) error {
	d.DueDate = DateOnly(d.DueDate)
	return nil
}

// OrganizationID resolves the owning organization through the sponsor.
func (d Deliverable) OrganizationID() (uint64, bool) {
	if d.Sponsor == nil {
		return 0, false
	}
	return d.Sponsor.OrganizationID, true
}

// SponsorName returns the sponsor's company name, or "" when the sponsor is not loaded.
func (d Deliverable) SponsorName() string {
	if d.Sponsor == nil {
		return ""
	}
	return d.Sponsor.CompanyName
}

// EventName returns the event name, or "" when sponsor or event is not loaded.
func (d Deliverable) EventName() string {
	if d.Sponsor == nil || d.Sponsor.Event == nil {
		return ""
	}
	return d.Sponsor.Event.Name
}

// DateOnly keeps the calendar date of t (as read in t's own location) at UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
