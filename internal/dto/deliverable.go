package dto

import (
	"time"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/risk"
	"github.com/yukikurage/sponsor-deliverables-api/internal/services"
	"github.com/yukikurage/sponsor-deliverables-api/internal/utils"
)

// DeliverableDTO represents a deliverable in API responses. RiskTier and
// DaysUntilDue are derived at response time.
type DeliverableDTO struct {
	ID                    uint64                   `json:"id"`
	SponsorID             uint64                   `json:"sponsor_id"`
	Title                 string                   `json:"title"`
	Description           *string                  `json:"description"`
	DueDate               string                   `json:"due_date"`
	Status                models.DeliverableStatus `json:"status"`
	Priority              models.Priority          `json:"priority"`
	RiskTier              risk.Tier                `json:"risk_tier"`
	DaysUntilDue          int                      `json:"days_until_due"`
	AssigneeID            *uint64                  `json:"assignee_id"`
	CompletionNotes       *string                  `json:"completion_notes"`
	CompletionEvidenceURL *string                  `json:"completion_evidence_url"`
	LastNotifiedAt        *time.Time               `json:"last_notified_at"`
	SponsorName           string                   `json:"sponsor_name,omitempty"`
	EventName             string                   `json:"event_name,omitempty"`
	Assignee              *ProfileSummaryDTO       `json:"assignee,omitempty"`
	CreatedAt             time.Time                `json:"created_at"`
	UpdatedAt             time.Time                `json:"updated_at"`
}

// DeliverableListResponse represents a paginated list of deliverables
type DeliverableListResponse struct {
	Deliverables []DeliverableDTO         `json:"deliverables"`
	Pagination   utils.PaginationResponse `json:"pagination"`
}

// RiskDashboardDTO groups open deliverables by urgency
type RiskDashboardDTO struct {
	Overdue  []DeliverableDTO `json:"overdue"`
	DueSoon  []DeliverableDTO `json:"due_soon"`
	Blocked  []DeliverableDTO `json:"blocked"`
	Upcoming []DeliverableDTO `json:"upcoming"`
	Counts   RiskCountsDTO    `json:"counts"`
}

// RiskCountsDTO holds the size of each dashboard bucket
type RiskCountsDTO struct {
	Overdue  int `json:"overdue"`
	DueSoon  int `json:"due_soon"`
	Blocked  int `json:"blocked"`
	Upcoming int `json:"upcoming"`
}

// GeneratedDeliverableDTO is an AI draft that has not been saved
type GeneratedDeliverableDTO struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     *string         `json:"due_date"`
	Priority    models.Priority `json:"priority"`
}

// ToDeliverableDTO converts a Deliverable model to DeliverableDTO as seen at now
func ToDeliverableDTO(d models.Deliverable, now time.Time) DeliverableDTO {
	dto := DeliverableDTO{
		ID:                    d.ID,
		SponsorID:             d.SponsorID,
		Title:                 d.Title,
		Description:           d.Description,
		DueDate:               FormatDate(d.DueDate),
		Status:                d.Status,
		Priority:              d.Priority,
		RiskTier:              risk.ClassifyDeliverable(d, now),
		DaysUntilDue:          risk.DaysUntilDue(d.DueDate, now),
		AssigneeID:            d.AssigneeID,
		CompletionNotes:       d.CompletionNotes,
		CompletionEvidenceURL: d.CompletionEvidenceURL,
		LastNotifiedAt:        d.LastNotifiedAt,
		SponsorName:           d.SponsorName(),
		EventName:             d.EventName(),
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
	if d.Assignee != nil {
		assignee := ToProfileSummaryDTO(*d.Assignee)
		dto.Assignee = &assignee
	}
	return dto
}

// ToDeliverableDTOs converts a slice of deliverables
func ToDeliverableDTOs(deliverables []models.Deliverable, now time.Time) []DeliverableDTO {
	out := make([]DeliverableDTO, len(deliverables))
	for i, d := range deliverables {
		out[i] = ToDeliverableDTO(d, now)
	}
	return out
}

// ToRiskDashboardDTO converts dashboard buckets
func ToRiskDashboardDTO(b risk.Buckets, now time.Time) RiskDashboardDTO {
	return RiskDashboardDTO{
		Overdue:  ToDeliverableDTOs(b.Overdue, now),
		DueSoon:  ToDeliverableDTOs(b.DueSoon, now),
		Blocked:  ToDeliverableDTOs(b.Blocked, now),
		Upcoming: ToDeliverableDTOs(b.Upcoming, now),
		Counts: RiskCountsDTO{
			Overdue:  len(b.Overdue),
			DueSoon:  len(b.DueSoon),
			Blocked:  len(b.Blocked),
			Upcoming: len(b.Upcoming),
		},
	}
}

// ToGeneratedDeliverableDTO converts an AI draft
func ToGeneratedDeliverableDTO(g services.GeneratedDeliverable) GeneratedDeliverableDTO {
	return GeneratedDeliverableDTO{
		Title:       g.Title,
		Description: g.Description,
		DueDate:     FormatOptionalDate(g.DueDate),
		Priority:    g.Priority,
	}
}
