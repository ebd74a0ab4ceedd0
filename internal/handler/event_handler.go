package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/middleware"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/service"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

type eventService interface {
	List(ctx context.Context, page models.PageRequest) (*service.EventPage, error)
	ListMine(ctx context.Context, p *models.Principal, page models.PageRequest) ([]models.Event, *models.Pagination, error)
	Get(ctx context.Context, p *models.Principal, id string) (*models.Event, error)
	Create(ctx context.Context, p *models.Principal, req dto.EventRequest) (*models.Event, error)
	Update(ctx context.Context, p *models.Principal, id string, req dto.EventRequest, partial bool) (*models.Event, error)
	Delete(ctx context.Context, p *models.Principal, id string) error
}

// EventHandler exposes event endpoints.
type EventHandler struct {
	service eventService
}

// NewEventHandler constructs an event handler.
func NewEventHandler(svc eventService) *EventHandler {
	return &EventHandler{service: svc}
}

// List godoc
// @Summary List published events
// @Description Newest event date first. Drafts are never listed here.
// @Tags Events
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /api/events/ [get]
func (h *EventHandler) List(c *gin.Context) {
	page, err := h.service.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, page.CacheHit)
	response.JSON(c, http.StatusOK, dto.NewEventResponses(page.Items), page.Pagination, middleware.ExtractMeta(c))
}

// Mine godoc
// @Summary List own events
// @Description Every event owned by the calling NGO, published or not
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /api/events/mine/ [get]
func (h *EventHandler) Mine(c *gin.Context) {
	events, pagination, err := h.service.ListMine(c.Request.Context(), principalFromContext(c), pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewEventResponses(events), pagination)
}

// Get godoc
// @Summary Get event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/events/{id}/ [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.service.Get(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewEventResponse(event), nil)
}

// Create godoc
// @Summary Create event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.EventRequest true "Event"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /api/events/ [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.EventRequest
	if !bindJSON(c, &req, "invalid event payload") {
		return
	}
	event, err := h.service.Create(c.Request.Context(), principalFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewEventResponse(event))
}

// Update godoc
// @Summary Replace event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.EventRequest true "Event"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /api/events/{id}/ [put]
func (h *EventHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// Patch godoc
// @Summary Update event fields
// @Description Send is_published to publish or unpublish
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.EventRequest true "Event"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /api/events/{id}/ [patch]
func (h *EventHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

func (h *EventHandler) update(c *gin.Context, partial bool) {
	var req dto.EventRequest
	if !bindJSON(c, &req, "invalid event payload") {
		return
	}
	event, err := h.service.Update(c.Request.Context(), principalFromContext(c), c.Param("id"), req, partial)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewEventResponse(event), nil)
}

// Delete godoc
// @Summary Delete event
// @Description Removes the event and every application to it
// @Tags Events
// @Param id path string true "Event ID"
// @Success 204
// @Security BearerAuth
// @Router /api/events/{id}/ [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), principalFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
