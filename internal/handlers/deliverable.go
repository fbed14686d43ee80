package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsor-deliverables-api/internal/constants"
	"github.com/yukikurage/sponsor-deliverables-api/internal/dto"
	apierrors "github.com/yukikurage/sponsor-deliverables-api/internal/errors"
	"github.com/yukikurage/sponsor-deliverables-api/internal/middleware"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/services"
	"github.com/yukikurage/sponsor-deliverables-api/internal/utils"
)

type DeliverableHandler struct {
	deliverableService *services.DeliverableService
}

func NewDeliverableHandler(deliverableService *services.DeliverableService) *DeliverableHandler {
	return &DeliverableHandler{
		deliverableService: deliverableService,
	}
}

// ListDeliverables returns the organization's deliverables.
// Filters: event_id, sponsor_id, assignee_id ("me" for the caller), status
// (comma separated), due_from, due_to, sort=due_date, page, limit.
func (h *DeliverableHandler) ListDeliverables(c *gin.Context) {
	profile, _ := middleware.GetProfile(c)
	params := utils.GetPaginationParams(c)

	input := services.ListDeliverablesInput{
		OrganizationID: *profile.OrganizationID,
		SortByDueDate:  c.Query("sort") == "due_date",
		Page:           params.Page,
		PageSize:       params.Limit,
	}

	var ok bool
	if input.EventID, ok = optionalIDQuery(c, "event_id"); !ok {
		return
	}
	if input.SponsorID, ok = optionalIDQuery(c, "sponsor_id"); !ok {
		return
	}
	if c.Query("assignee_id") == "me" {
		input.AssigneeID = &profile.ID
	} else if input.AssigneeID, ok = optionalIDQuery(c, "assignee_id"); !ok {
		return
	}

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			input.Statuses = append(input.Statuses, models.DeliverableStatus(strings.TrimSpace(s)))
		}
	}

	var err error
	if input.DueFrom, err = dateQuery(c, "due_from"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.DueTo, err = dateQuery(c, "due_to"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	deliverables, total, err := h.deliverableService.ListDeliverables(c.Request.Context(), input)
	if err != nil {
		respondDeliverableError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeliverableListResponse{
		Deliverables: dto.ToDeliverableDTOs(deliverables, h.deliverableService.Now()),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetDeliverable returns a specific deliverable.
// The deliverable is already loaded by RequireDeliverableAccess.
func (h *DeliverableHandler) GetDeliverable(c *gin.Context) {
	d, ok := middleware.GetDeliverable(c)
	if !ok {
		apierrors.InternalError(c, "Deliverable not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToDeliverableDTO(*d, h.deliverableService.Now()))
}

// CreateDeliverable creates a deliverable for one of the organization's sponsors
func (h *DeliverableHandler) CreateDeliverable(c *gin.Context) {
	orgID, _ := middleware.GetOrganizationID(c)

	type CreateDeliverableRequest struct {
		SponsorID   uint64          `json:"sponsor_id" binding:"required"`
		Title       string          `json:"title" binding:"required,max=255"`
		Description *string         `json:"description"`
		DueDate     string          `json:"due_date" binding:"required"`
		Priority    models.Priority `json:"priority"`
		AssigneeID  *uint64         `json:"assignee_id"`
	}

	var req CreateDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	due, err := dto.ParseDate(req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, "due_date must be YYYY-MM-DD")
		return
	}

	d, err := h.deliverableService.CreateDeliverable(c.Request.Context(), services.CreateDeliverableInput{
		OrganizationID: orgID,
		SponsorID:      req.SponsorID,
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        &due,
		Priority:       req.Priority,
		AssigneeID:     req.AssigneeID,
	})
	if err != nil {
		respondDeliverableError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDeliverableDTO(*d, h.deliverableService.Now()))
}

// UpdateDeliverable applies a partial update to a deliverable
func (h *DeliverableHandler) UpdateDeliverable(c *gin.Context) {
	d, ok := middleware.GetDeliverable(c)
	if !ok {
		apierrors.InternalError(c, "Deliverable not found in context")
		return
	}
	orgID, _ := middleware.GetOrganizationID(c)

	type UpdateDeliverableRequest struct {
		Title                 *string                   `json:"title" binding:"omitempty,max=255"`
		Description           *string                   `json:"description"`
		DueDate               *string                   `json:"due_date"`
		Status                *models.DeliverableStatus `json:"status"`
		Priority              *models.Priority          `json:"priority"`
		CompletionNotes       *string                   `json:"completion_notes"`
		CompletionEvidenceURL *string                   `json:"completion_evidence_url" binding:"omitempty,url"`
	}

	var req UpdateDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	due, err := dto.ParseOptionalDate(req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, "due_date must be YYYY-MM-DD")
		return
	}

	updated, err := h.deliverableService.UpdateDeliverable(c.Request.Context(), orgID, d.ID, services.UpdateDeliverableInput{
		Title:                 req.Title,
		Description:           req.Description,
		DueDate:               due,
		Status:                req.Status,
		Priority:              req.Priority,
		CompletionNotes:       req.CompletionNotes,
		CompletionEvidenceURL: req.CompletionEvidenceURL,
	})
	if err != nil {
		respondDeliverableError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDeliverableDTO(*updated, h.deliverableService.Now()))
}

// AssignDeliverable sets the assignee. A null assignee_id clears it.
func (h *DeliverableHandler) AssignDeliverable(c *gin.Context) {
	d, ok := middleware.GetDeliverable(c)
	if !ok {
		apierrors.InternalError(c, "Deliverable not found in context")
		return
	}
	orgID, _ := middleware.GetOrganizationID(c)

	type AssignRequest struct {
		AssigneeID *uint64 `json:"assignee_id"`
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	updated, err := h.deliverableService.AssignDeliverable(c.Request.Context(), orgID, d.ID, req.AssigneeID)
	if err != nil {
		respondDeliverableError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDeliverableDTO(*updated, h.deliverableService.Now()))
}

// DeleteDeliverable deletes a deliverable
func (h *DeliverableHandler) DeleteDeliverable(c *gin.Context) {
	d, ok := middleware.GetDeliverable(c)
	if !ok {
		apierrors.InternalError(c, "Deliverable not found in context")
		return
	}
	orgID, _ := middleware.GetOrganizationID(c)

	if err := h.deliverableService.DeleteDeliverable(c.Request.Context(), orgID, d.ID); err != nil {
		respondDeliverableError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Deliverable deleted successfully",
	})
}

// GenerateDeliverables drafts deliverables from sponsorship contract text using AI.
// Drafts are returned for review and are not saved.
func (h *DeliverableHandler) GenerateDeliverables(c *gin.Context) {
	orgID, _ := middleware.GetOrganizationID(c)

	type GenerateRequest struct {
		SponsorID uint64 `json:"sponsor_id" binding:"required"`
		Text      string `json:"text" binding:"required,min=1,max=20000"`
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	drafts, err := h.deliverableService.GenerateDeliverables(c.Request.Context(), services.GenerateDeliverablesInput{
		OrganizationID: orgID,
		SponsorID:      req.SponsorID,
		Text:           req.Text,
	})
	if err != nil {
		respondDeliverableError(c, err)
		return
	}

	out := make([]dto.GeneratedDeliverableDTO, len(drafts))
	for i, draft := range drafts {
		out[i] = dto.ToGeneratedDeliverableDTO(draft)
	}

	c.JSON(http.StatusOK, gin.H{
		"deliverables": out,
	})
}

// GetRiskDashboard groups the organization's open deliverables by urgency
func (h *DeliverableHandler) GetRiskDashboard(c *gin.Context) {
	orgID, _ := middleware.GetOrganizationID(c)

	buckets, err := h.deliverableService.RiskDashboard(c.Request.Context(), orgID)
	if err != nil {
		respondDeliverableError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRiskDashboardDTO(buckets, h.deliverableService.Now()))
}

func respondDeliverableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrDueDateRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidAssignee):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrDeliverableNotFound),
		errors.Is(err, services.ErrSponsorNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidStatusTransition):
		apierrors.InvalidOperation(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoDeliverables),
		errors.Is(err, services.ErrAINoValidDeliverables):
		apierrors.InvalidOperation(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

func dateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(constants.DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return &t, nil
}
