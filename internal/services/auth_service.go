package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/yukikurage/sponsor-deliverables-api/internal/constants"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/repository"
	"github.com/yukikurage/sponsor-deliverables-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileInactive      = errors.New("profile is deactivated")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create profile")
	ErrFailedToCreateOrg    = errors.New("failed to create organization")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	profileRepo repository.ProfileRepository
	orgRepo     repository.OrganizationRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(profileRepo repository.ProfileRepository, orgRepo repository.OrganizationRepository) *AuthService {
	return &AuthService{
		profileRepo: profileRepo,
		orgRepo:     orgRepo,
	}
}

// SignupInput represents the required information to create a new profile.
type SignupInput struct {
	Email            string
	Password         string
	FullName         string
	OrganizationName string
}

// Signup creates a new profile administering a fresh organization.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.Profile, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.profileRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	profile := &models.Profile{
		Email:        email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}
	if name := strings.TrimSpace(input.FullName); name != "" {
		profile.FullName = &name
	}

	orgName := strings.TrimSpace(input.OrganizationName)
	if orgName == "" {
		orgName = fmt.Sprintf("%s's Organization", profile.DisplayName())
	}
	org, err := newOrganization(ctx, s.orgRepo, orgName)
	if err != nil {
		return nil, err
	}

	if err := s.profileRepo.CreateWithOrganization(ctx, profile, org); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateProfile):
			return nil, ErrFailedToCreateUser
		case errors.Is(err, repository.ErrCreateOrganization):
			return nil, ErrFailedToCreateOrg
		default:
			return nil, fmt.Errorf("failed to complete signup: %w", err)
		}
	}

	return profile, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated profile.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !profile.IsActive {
		return nil, ErrProfileInactive
	}

	return profile, nil
}

// GetProfile retrieves a profile by ID.
func (s *AuthService) GetProfile(ctx context.Context, id uint64) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return profile, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// newOrganization builds an unsaved organization with a unique slug and a fresh invite code.
func newOrganization(ctx context.Context, orgRepo repository.OrganizationRepository, name string) (*models.Organization, error) {
	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	base := utils.Slugify(name)
	slug := base
	for i := 2; ; i++ {
		exists, err := orgRepo.SlugExists(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("failed to check organization slug: %w", err)
		}
		if !exists {
			break
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}

	return &models.Organization{
		Name:       name,
		Slug:       slug,
		InviteCode: inviteCode,
	}, nil
}
