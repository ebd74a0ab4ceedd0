package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/middleware"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/service"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type eventServiceMock struct {
	page        *service.EventPage
	event       *models.Event
	err         error
	lastPage    models.PageRequest
	lastPartial bool
	lastActor   *models.Principal
	updated     bool
}

func (m *eventServiceMock) List(_ context.Context, page models.PageRequest) (*service.EventPage, error) {
	m.lastPage = page
	return m.page, m.err
}

func (m *eventServiceMock) ListMine(_ context.Context, p *models.Principal, page models.PageRequest) ([]models.Event, *models.Pagination, error) {
	m.lastActor = p
	return nil, page.Pagination(0), m.err
}

func (m *eventServiceMock) Get(_ context.Context, p *models.Principal, _ string) (*models.Event, error) {
	m.lastActor = p
	return m.event, m.err
}

func (m *eventServiceMock) Create(_ context.Context, p *models.Principal, _ dto.EventRequest) (*models.Event, error) {
	m.lastActor = p
	return m.event, m.err
}

func (m *eventServiceMock) Update(_ context.Context, p *models.Principal, _ string, _ dto.EventRequest, partial bool) (*models.Event, error) {
	m.updated = true
	m.lastActor = p
	m.lastPartial = partial
	return m.event, m.err
}

func (m *eventServiceMock) Delete(_ context.Context, p *models.Principal, _ string) error {
	m.lastActor = p
	return m.err
}

func TestEventHandlerListReadsPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &eventServiceMock{page: &service.EventPage{
		Items:      []models.Event{{ID: "e1", CreatedBy: "ngo-1", IsPublished: true}},
		Pagination: &models.Pagination{Page: 2, PageSize: 5, TotalCount: 6},
		CacheHit:   true,
	}}
	handler := NewEventHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/events/?page=2&page_size=500", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, mockSvc.lastPage.Page)
	assert.Equal(t, models.MaxPageSize, mockSvc.lastPage.PageSize)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Contains(t, w.Body.String(), `"ngo":"ngo-1"`)
}

func TestEventHandlerPatchIsPartial(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &eventServiceMock{event: &models.Event{ID: "e1"}}
	handler := NewEventHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPatch, "/api/events/e1/", bytes.NewBufferString(`{"is_published":true}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "e1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "ngo-1", Role: models.RoleNGO})

	handler.Patch(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.lastPartial)
	require.NotNil(t, mockSvc.lastActor)
	assert.Equal(t, "ngo-1", mockSvc.lastActor.UserID)
}

func TestEventHandlerInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &eventServiceMock{}
	handler := NewEventHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPut, "/api/events/e1/", bytes.NewBufferString(`{"title":`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.updated)
}

func TestEventHandlerMapsServiceErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEventHandler(&eventServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "only the owning NGO can modify this event")})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/events/e1/", nil)

	handler.Delete(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "only the owning NGO")
}
