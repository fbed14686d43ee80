package dto

import (
	"time"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
)

// OrganizationMemberDTO represents a member in an organization
type OrganizationMemberDTO struct {
	Profile  ProfileSummaryDTO  `json:"profile"`
	Role     models.ProfileRole `json:"role"`
	IsActive bool               `json:"is_active"`
	JoinedAt time.Time          `json:"joined_at"`
}

// OrganizationDetailDTO represents detailed organization information
type OrganizationDetailDTO struct {
	OrganizationDTO
	Members  []OrganizationMemberDTO `json:"members"`
	YourRole models.ProfileRole      `json:"your_role"`
}

// ToOrganizationMemberDTO converts a member profile to DTO
func ToOrganizationMemberDTO(member models.Profile) OrganizationMemberDTO {
	return OrganizationMemberDTO{
		Profile:  ToProfileSummaryDTO(member),
		Role:     member.Role,
		IsActive: member.IsActive,
		JoinedAt: member.CreatedAt,
	}
}

// ToOrganizationDetailDTO converts organization with members to detailed DTO.
// The invite code is only shown to admins.
func ToOrganizationDetailDTO(org models.Organization, members []models.Profile, yourRole models.ProfileRole) OrganizationDetailDTO {
	memberDTOs := make([]OrganizationMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToOrganizationMemberDTO(member)
	}

	return OrganizationDetailDTO{
		OrganizationDTO: ToOrganizationDTO(org, yourRole == models.RoleAdmin),
		Members:         memberDTOs,
		YourRole:        yourRole,
	}
}
