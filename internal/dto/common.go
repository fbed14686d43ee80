package dto

import (
	"time"

	"github.com/yukikurage/sponsor-deliverables-api/internal/constants"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
)

// ProfileDTO represents a profile in API responses
type ProfileDTO struct {
	ID             uint64             `json:"id"`
	Email          string             `json:"email"`
	FullName       *string            `json:"full_name"`
	Role           models.ProfileRole `json:"role"`
	OrganizationID *uint64            `json:"organization_id"`
}

// ProfileSummaryDTO is the short form embedded in other resources
type ProfileSummaryDTO struct {
	ID          uint64 `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	InviteCode string `json:"invite_code,omitempty"`
}

// ToProfileDTO converts a Profile model to ProfileDTO
func ToProfileDTO(p models.Profile) ProfileDTO {
	return ProfileDTO{
		ID:             p.ID,
		Email:          p.Email,
		FullName:       p.FullName,
		Role:           p.Role,
		OrganizationID: p.OrganizationID,
	}
}

// ToProfileSummaryDTO converts a Profile model to ProfileSummaryDTO
func ToProfileSummaryDTO(p models.Profile) ProfileSummaryDTO {
	return ProfileSummaryDTO{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName(),
	}
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization, includeInviteCode bool) OrganizationDTO {
	dto := OrganizationDTO{
		ID:   org.ID,
		Name: org.Name,
		Slug: org.Slug,
	}
	if includeInviteCode {
		dto.InviteCode = org.InviteCode
	}
	return dto
}

// FormatDate renders a calendar date in the wire layout
func FormatDate(t time.Time) string {
	return t.Format(constants.DateLayout)
}

// FormatOptionalDate renders an optional calendar date; nil stays nil
func FormatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}

// ParseDate parses a calendar date in the wire layout
func ParseDate(s string) (time.Time, error) {
	return time.Parse(constants.DateLayout, s)
}

// ParseOptionalDate parses an optional calendar date; nil and "" both mean unset
func ParseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
