package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

type donationService interface {
	List(ctx context.Context, p *models.Principal, page models.PageRequest) ([]models.Donation, *models.Pagination, error)
	Get(ctx context.Context, p *models.Principal, id string) (*models.Donation, error)
	Create(ctx context.Context, p *models.Principal, req dto.CreateDonationRequest) (*models.Donation, error)
	Export(ctx context.Context, p *models.Principal, format dto.ExportFormat) (*dto.ExportFile, error)
}

// DonationHandler exposes donation endpoints. Donations are immutable once recorded.
type DonationHandler struct {
	service donationService
}

// NewDonationHandler constructs a donation handler.
func NewDonationHandler(svc donationService) *DonationHandler {
	return &DonationHandler{service: svc}
}

// List godoc
// @Summary List donations
// @Description NGOs see donations received, donors the donations they made
// @Tags Donations
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /api/donations/ [get]
func (h *DonationHandler) List(c *gin.Context) {
	items, pagination, err := h.service.List(c.Request.Context(), principalFromContext(c), pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get donation
// @Tags Donations
// @Produce json
// @Param id path string true "Donation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /api/donations/{id}/ [get]
func (h *DonationHandler) Get(c *gin.Context) {
	donation, err := h.service.Get(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donation, nil)
}

// Create godoc
// @Summary Donate to an NGO
// @Description The donor is always the caller. transaction_id is generated when omitted.
// @Tags Donations
// @Accept json
// @Produce json
// @Param payload body dto.CreateDonationRequest true "Donation"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /api/donations/ [post]
func (h *DonationHandler) Create(c *gin.Context) {
	var req dto.CreateDonationRequest
	if !bindJSON(c, &req, "invalid donation payload") {
		return
	}
	donation, err := h.service.Create(c.Request.Context(), principalFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, donation)
}

// Export godoc
// @Summary Export donations
// @Tags Donations
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /api/donations/export/ [get]
func (h *DonationHandler) Export(c *gin.Context) {
	format := dto.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(dto.ExportCSV))))
	file, err := h.service.Export(c.Request.Context(), principalFromContext(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
