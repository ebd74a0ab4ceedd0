package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

type applicationService interface {
	List(ctx context.Context, p *models.Principal, page models.PageRequest) ([]models.VolunteerApplication, *models.Pagination, error)
	Get(ctx context.Context, p *models.Principal, id string) (*models.VolunteerApplication, error)
	Create(ctx context.Context, p *models.Principal, req dto.CreateApplicationRequest) (*models.VolunteerApplication, error)
	UpdateStatus(ctx context.Context, p *models.Principal, id string, req dto.UpdateApplicationRequest) (*models.VolunteerApplication, error)
	Withdraw(ctx context.Context, p *models.Principal, id string) error
	IssueCertificate(ctx context.Context, p *models.Principal, id string) (*dto.CertificateIssueResponse, error)
}

// ApplicationHandler exposes volunteer application endpoints.
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler constructs an application handler.
func NewApplicationHandler(svc applicationService) *ApplicationHandler {
	return &ApplicationHandler{service: svc}
}

// List godoc
// @Summary List applications
// @Description NGOs see applications to their events, volunteers their own
// @Tags Applications
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /api/applications/ [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	items, pagination, err := h.service.List(c.Request.Context(), principalFromContext(c), pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /api/applications/{id}/ [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.service.Get(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Create godoc
// @Summary Apply to event
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.CreateApplicationRequest true "Application"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /api/applications/ [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req dto.CreateApplicationRequest
	if !bindJSON(c, &req, "invalid application payload") {
		return
	}
	app, err := h.service.Create(c.Request.Context(), principalFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// UpdateStatus godoc
// @Summary Review application
// @Description Only status is writable, by the NGO owning the event
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.UpdateApplicationRequest true "Status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /api/applications/{id}/ [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateApplicationRequest
	if !bindJSON(c, &req, "invalid application payload") {
		return
	}
	app, err := h.service.UpdateStatus(c.Request.Context(), principalFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Withdraw godoc
// @Summary Withdraw pending application
// @Tags Applications
// @Param id path string true "Application ID"
// @Success 204
// @Security BearerAuth
// @Router /api/applications/{id}/ [delete]
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	if err := h.service.Withdraw(c.Request.Context(), principalFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// IssueCertificate godoc
// @Summary Issue participation certificate
// @Description Queues PDF generation. certificate_url is set once the job finishes.
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Security BearerAuth
// @Router /api/applications/{id}/certificate/ [post]
func (h *ApplicationHandler) IssueCertificate(c *gin.Context) {
	res, err := h.service.IssueCertificate(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, res)
}
