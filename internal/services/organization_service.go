package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/repository"
	"github.com/yukikurage/sponsor-deliverables-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound       = errors.New("organization not found")
	ErrInvalidOrganizationName    = errors.New("organization name cannot be empty")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrInvalidInviteCode          = errors.New("invalid invite code")
	ErrAlreadyOrganizationMember  = errors.New("profile is already a member of this organization")
	ErrCannotRemoveYourself       = errors.New("cannot remove yourself from the organization")
	ErrOrganizationMemberNotFound = errors.New("organization member not found")
	ErrLastAdmin                  = errors.New("organization must keep at least one admin")
	ErrInvalidRole                = errors.New("invalid role")
)

// OrganizationService provides business logic for organization operations.
type OrganizationService struct {
	orgRepo     repository.OrganizationRepository
	profileRepo repository.ProfileRepository
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, profileRepo repository.ProfileRepository) *OrganizationService {
	return &OrganizationService{
		orgRepo:     orgRepo,
		profileRepo: profileRepo,
	}
}

// CreateOrganization creates a new organization and moves the profile into it as admin.
func (s *OrganizationService) CreateOrganization(ctx context.Context, profileID uint64, name string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidOrganizationName
	}

	profile, err := s.findProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCanLeave(ctx, profile); err != nil {
		return nil, err
	}

	org, err := newOrganization(ctx, s.orgRepo, name)
	if err != nil {
		return nil, err
	}
	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	profile.OrganizationID = &org.ID
	profile.Role = models.RoleAdmin
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to add admin to organization: %w", err)
	}

	return org, nil
}

// GetOrganizationWithMembers returns an organization and all of its members.
func (s *OrganizationService) GetOrganizationWithMembers(ctx context.Context, orgID uint64) (*models.Organization, []models.Profile, error) {
	org, err := s.findOrganization(ctx, orgID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.orgRepo.ListMembers(ctx, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list organization members: %w", err)
	}

	return org, members, nil
}

// UpdateOrganizationName updates an organization's name. The slug is kept stable.
func (s *OrganizationService) UpdateOrganizationName(ctx context.Context, orgID uint64, name string) (*models.Organization, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidOrganizationName
	}

	org, err := s.findOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	org.Name = strings.TrimSpace(name)
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return org, nil
}

// DeleteOrganization removes an organization with its events, sponsors and deliverables.
func (s *OrganizationService) DeleteOrganization(ctx context.Context, orgID uint64) error {
	if _, err := s.findOrganization(ctx, orgID); err != nil {
		return err
	}

	if err := s.orgRepo.Delete(ctx, orgID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	return nil
}

// JoinOrganizationByInvite moves a profile into the organization owning inviteCode.
func (s *OrganizationService) JoinOrganizationByInvite(ctx context.Context, profileID uint64, inviteCode string) (*models.Organization, error) {
	org, err := s.orgRepo.FindByInviteCode(ctx, utils.NormalizeInviteCode(inviteCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to find organization by invite code: %w", err)
	}

	profile, err := s.findProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.OrganizationID != nil && *profile.OrganizationID == org.ID {
		return nil, ErrAlreadyOrganizationMember
	}
	if err := s.ensureCanLeave(ctx, profile); err != nil {
		return nil, err
	}

	profile.OrganizationID = &org.ID
	profile.Role = models.RoleMember
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to add member to organization: %w", err)
	}

	return org, nil
}

// RegenerateInviteCode generates a new invite code for the organization.
func (s *OrganizationService) RegenerateInviteCode(ctx context.Context, orgID uint64) (*models.Organization, error) {
	org, err := s.findOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	org.InviteCode = code
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}

	return org, nil
}

// RemoveMember detaches a member from the organization.
func (s *OrganizationService) RemoveMember(ctx context.Context, orgID, actorID, targetID uint64) error {
	if targetID == actorID {
		return ErrCannotRemoveYourself
	}

	target, err := s.findMember(ctx, orgID, targetID)
	if err != nil {
		return err
	}

	target.OrganizationID = nil
	target.Role = models.RoleMember
	if err := s.profileRepo.Update(ctx, target); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// UpdateMemberRole promotes or demotes a member. The last admin cannot be demoted.
func (s *OrganizationService) UpdateMemberRole(ctx context.Context, orgID, targetID uint64, role models.ProfileRole) (*models.Profile, error) {
	if role != models.RoleAdmin && role != models.RoleMember {
		return nil, ErrInvalidRole
	}

	target, err := s.findMember(ctx, orgID, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == role {
		return target, nil
	}
	if target.IsAdmin() {
		if err := s.ensureAnotherAdmin(ctx, orgID); err != nil {
			return nil, err
		}
	}

	target.Role = role
	if err := s.profileRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}

	return target, nil
}

func (s *OrganizationService) findOrganization(ctx context.Context, orgID uint64) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}

func (s *OrganizationService) findProfile(ctx context.Context, profileID uint64) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return profile, nil
}

func (s *OrganizationService) findMember(ctx context.Context, orgID, profileID uint64) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationMemberNotFound
		}
		return nil, fmt.Errorf("failed to find organization member: %w", err)
	}
	if profile.OrganizationID == nil || *profile.OrganizationID != orgID {
		return nil, ErrOrganizationMemberNotFound
	}
	return profile, nil
}

// ensureCanLeave stops the only admin of an organization with other members from leaving it.
func (s *OrganizationService) ensureCanLeave(ctx context.Context, profile *models.Profile) error {
	if profile.OrganizationID == nil || !profile.IsAdmin() {
		return nil
	}

	members, err := s.orgRepo.ListMembers(ctx, *profile.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to list organization members: %w", err)
	}
	if len(members) <= 1 {
		return nil
	}
	return s.ensureAnotherAdmin(ctx, *profile.OrganizationID)
}

func (s *OrganizationService) ensureAnotherAdmin(ctx context.Context, orgID uint64) error {
	admins, err := s.profileRepo.CountAdmins(ctx, orgID)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}
