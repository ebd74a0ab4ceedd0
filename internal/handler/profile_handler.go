package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

type profileService interface {
	List(ctx context.Context, p *models.Principal, page models.PageRequest) ([]dto.ProfileResponse, *models.Pagination, error)
	Get(ctx context.Context, p *models.Principal, id string) (*dto.ProfileResponse, error)
	Update(ctx context.Context, p *models.Principal, id string, req dto.UpdateProfileRequest, partial bool) (*dto.ProfileResponse, error)
	Delete(ctx context.Context, p *models.Principal, id string) error
}

// ProfileHandler exposes account profiles.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(svc profileService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// List godoc
// @Summary List profiles
// @Description Administrators see every account, everyone else only their own
// @Tags Profile
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /api/profile/ [get]
func (h *ProfileHandler) List(c *gin.Context) {
	items, pagination, err := h.service.List(c.Request.Context(), principalFromContext(c), pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get profile
// @Tags Profile
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /api/profile/{id}/ [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Update godoc
// @Summary Replace profile
// @Description Role changes are applied for administrators only and ignored otherwise
// @Tags Profile
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body dto.UpdateProfileRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /api/profile/{id}/ [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// Patch godoc
// @Summary Update profile fields
// @Tags Profile
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body dto.UpdateProfileRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /api/profile/{id}/ [patch]
func (h *ProfileHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

func (h *ProfileHandler) update(c *gin.Context, partial bool) {
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}
	profile, err := h.service.Update(c.Request.Context(), principalFromContext(c), c.Param("id"), req, partial)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Delete godoc
// @Summary Delete account
// @Tags Profile
// @Param id path string true "User ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /api/profile/{id}/ [delete]
func (h *ProfileHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), principalFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
