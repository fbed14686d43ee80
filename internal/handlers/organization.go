package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsor-deliverables-api/internal/dto"
	apierrors "github.com/yukikurage/sponsor-deliverables-api/internal/errors"
	"github.com/yukikurage/sponsor-deliverables-api/internal/middleware"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/services"
)

type OrganizationHandler struct {
	orgService *services.OrganizationService
}

func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
	}
}

// CreateOrganization creates a new organization and moves the caller into it as admin
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	profileID, exists := middleware.GetProfileID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateOrgRequest struct {
		Name string `json:"name" binding:"required,max=255"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	org, err := h.orgService.CreateOrganization(c.Request.Context(), profileID, req.Name)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(*org, true))
}

// GetOrganization returns the caller's organization with its members
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	profile, _ := middleware.GetProfile(c)

	org, members, err := h.orgService.GetOrganizationWithMembers(c.Request.Context(), *profile.OrganizationID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDetailDTO(*org, members, profile.Role))
}

// UpdateOrganization updates the organization name
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	orgID, _ := middleware.GetOrganizationID(c)

	type UpdateOrgRequest struct {
		Name string `json:"name" binding:"required,max=255"`
	}

	var req UpdateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	org, err := h.orgService.UpdateOrganizationName(c.Request.Context(), orgID, req.Name)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org, true))
}

// DeleteOrganization deletes the organization with everything it owns
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	orgID, _ := middleware.GetOrganizationID(c)

	if err := h.orgService.DeleteOrganization(c.Request.Context(), orgID); err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Organization deleted successfully",
	})
}

// JoinOrganization moves the caller into the organization owning the invite code
func (h *OrganizationHandler) JoinOrganization(c *gin.Context) {
	profileID, exists := middleware.GetProfileID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type JoinRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	org, err := h.orgService.JoinOrganizationByInvite(c.Request.Context(), profileID, req.InviteCode)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Successfully joined organization",
		"organization": dto.ToOrganizationDTO(*org, false),
	})
}

// RegenerateInviteCode generates a new invite code for the organization
func (h *OrganizationHandler) RegenerateInviteCode(c *gin.Context) {
	orgID, _ := middleware.GetOrganizationID(c)

	org, err := h.orgService.RegenerateInviteCode(c.Request.Context(), orgID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org, true))
}

// RemoveMember removes a member from the organization
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	profile, _ := middleware.GetProfile(c)

	targetID, err := strconv.ParseUint(c.Param("profile_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid profile ID")
		return
	}

	if err := h.orgService.RemoveMember(c.Request.Context(), *profile.OrganizationID, profile.ID, targetID); err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// UpdateMemberRole promotes or demotes a member
func (h *OrganizationHandler) UpdateMemberRole(c *gin.Context) {
	orgID, _ := middleware.GetOrganizationID(c)

	targetID, err := strconv.ParseUint(c.Param("profile_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid profile ID")
		return
	}

	type UpdateRoleRequest struct {
		Role models.ProfileRole `json:"role" binding:"required"`
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	member, err := h.orgService.UpdateMemberRole(c.Request.Context(), orgID, targetID, req.Role)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationMemberDTO(*member))
}

func respondOrganizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidOrganizationName),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrCannotRemoveYourself):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidInviteCode),
		errors.Is(err, services.ErrOrganizationNotFound),
		errors.Is(err, services.ErrOrganizationMemberNotFound),
		errors.Is(err, services.ErrProfileNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAlreadyOrganizationMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrLastAdmin):
		apierrors.InvalidOperation(c, err.Error())
	case errors.Is(err, services.ErrInviteCodeGenerationFailed):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
