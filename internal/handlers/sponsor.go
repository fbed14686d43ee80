package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsor-deliverables-api/internal/clock"
	"github.com/yukikurage/sponsor-deliverables-api/internal/dto"
	apierrors "github.com/yukikurage/sponsor-deliverables-api/internal/errors"
	"github.com/yukikurage/sponsor-deliverables-api/internal/middleware"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/services"
)

type SponsorHandler struct {
	sponsorService *services.SponsorService
	clock          clock.Clock
}

func NewSponsorHandler(sponsorService *services.SponsorService, clk clock.Clock) *SponsorHandler {
	return &SponsorHandler{
		sponsorService: sponsorService,
		clock:          clk,
	}
}

// ListSponsors returns the organization's sponsors, optionally for one event
func (h *SponsorHandler) ListSponsors(c *gin.Context) {
	orgID, _ := middleware.GetOrganizationID(c)

	eventID, ok := optionalIDQuery(c, "event_id")
	if !ok {
		return
	}

	sponsors, err := h.sponsorService.ListSponsors(c.Request.Context(), orgID, eventID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch sponsors")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sponsors": dto.ToSponsorDTOs(sponsors),
	})
}

// GetSponsor returns one sponsor with its event
func (h *SponsorHandler) GetSponsor(c *gin.Context) {
	orgID, _ := middleware.GetOrganizationID(c)

	sponsorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid sponsor ID")
		return
	}

	sponsor, err := h.sponsorService.GetSponsor(c.Request.Context(), orgID, sponsorID)
	if err != nil {
		respondSponsorError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSponsorDTO(*sponsor))
}

// CreateSponsor creates a sponsor and returns the deliverables provisioned for its package
func (h *SponsorHandler) CreateSponsor(c *gin.Context) {
	orgID, _ := middleware.GetOrganizationID(c)

	type CreateSponsorRequest struct {
		EventID       uint64              `json:"event_id" binding:"required"`
		CompanyName   string              `json:"company_name" binding:"required,max=255"`
		ContactName   *string             `json:"contact_name" binding:"omitempty,max=255"`
		ContactEmail  *string             `json:"contact_email" binding:"omitempty,email"`
		PackageTier   *models.PackageTier `json:"package_tier"`
		ContractValue *int64              `json:"contract_value" binding:"omitempty,min=0"`
		Notes         *string             `json:"notes"`
	}

	var req CreateSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	sponsor, deliverables, err := h.sponsorService.CreateSponsor(c.Request.Context(), services.CreateSponsorInput{
		OrganizationID: orgID,
		EventID:        req.EventID,
		CompanyName:    req.CompanyName,
		ContactName:    req.ContactName,
		ContactEmail:   req.ContactEmail,
		PackageTier:    req.PackageTier,
		ContractValue:  req.ContractValue,
		Notes:          req.Notes,
	})
	if err != nil {
		respondSponsorError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SponsorCreatedResponse{
		Sponsor:      dto.ToSponsorDTO(*sponsor),
		Deliverables: dto.ToDeliverableDTOs(deliverables, h.clock.Now()),
	})
}

func respondSponsorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCompanyNameRequired),
		errors.Is(err, services.ErrInvalidPackageTier):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrSponsorNotFound),
		errors.Is(err, services.ErrEventNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

// optionalIDQuery parses an optional numeric query parameter. On a malformed value it
// writes a 400 response and returns false.
func optionalIDQuery(c *gin.Context, name string) (*uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}
