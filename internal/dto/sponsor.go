package dto

import (
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
)

// EventDTO represents an event in API responses
type EventDTO struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	EventDate   *string `json:"event_date"`
	Location    *string `json:"location"`
	Status      string  `json:"status"`
}

// SponsorDTO represents a sponsor in API responses
type SponsorDTO struct {
	ID            uint64              `json:"id"`
	EventID       uint64              `json:"event_id"`
	CompanyName   string              `json:"company_name"`
	ContactName   *string             `json:"contact_name"`
	ContactEmail  *string             `json:"contact_email"`
	PackageTier   *models.PackageTier `json:"package_tier"`
	ContractValue *int64              `json:"contract_value"`
	Notes         *string             `json:"notes"`
	Event         *EventDTO           `json:"event,omitempty"`
}

// SponsorCreatedResponse is returned when a sponsor is created with provisioned deliverables
type SponsorCreatedResponse struct {
	Sponsor      SponsorDTO       `json:"sponsor"`
	Deliverables []DeliverableDTO `json:"deliverables"`
}

// ToEventDTO converts an Event model to EventDTO
func ToEventDTO(e models.Event) EventDTO {
	return EventDTO{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		EventDate:   FormatOptionalDate(e.EventDate),
		Location:    e.Location,
		Status:      e.Status,
	}
}

// ToEventDTOs converts a slice of events
func ToEventDTOs(events []models.Event) []EventDTO {
	out := make([]EventDTO, len(events))
	for i, e := range events {
		out[i] = ToEventDTO(e)
	}
	return out
}

// ToSponsorDTO converts a Sponsor model to SponsorDTO
func ToSponsorDTO(s models.Sponsor) SponsorDTO {
	dto := SponsorDTO{
		ID:            s.ID,
		EventID:       s.EventID,
		CompanyName:   s.CompanyName,
		ContactName:   s.ContactName,
		ContactEmail:  s.ContactEmail,
		PackageTier:   s.PackageTier,
		ContractValue: s.ContractValue,
		Notes:         s.Notes,
	}
	if s.Event != nil {
		event := ToEventDTO(*s.Event)
		dto.Event = &event
	}
	return dto
}

// ToSponsorDTOs converts a slice of sponsors
func ToSponsorDTOs(sponsors []models.Sponsor) []SponsorDTO {
	out := make([]SponsorDTO, len(sponsors))
	for i, s := range sponsors {
		out[i] = ToSponsorDTO(s)
	}
	return out
}
