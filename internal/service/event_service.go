package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

const eventListCachePattern = "list:*"

type cachedEventPage struct {
	Items []models.Event `json:"items"`
	Total int            `json:"total"`
}

// EventService manages NGO events and their visibility.
type EventService struct {
	repo      eventRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	audit     auditor
	// generation advances on every mutation so a list read that raced one
	// does not leave its page in the cache.
	generation atomic.Int64
}

// EventServiceDeps groups optional collaborators of EventService.
type EventServiceDeps struct {
	Cache   *CacheService
	Audit   auditRepository
	Metrics *MetricsService
}

// NewEventService constructs an EventService.
func NewEventService(repo eventRepository, validate *validator.Validate, logger *zap.Logger, deps EventServiceDeps) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &EventService{
		repo:      repo,
		cache:     deps.Cache,
		validator: validate,
		logger:    logger,
		metrics:   deps.Metrics,
		audit:     auditor{repo: deps.Audit, logger: logger},
	}
}

// EventPage is one page of the public listing.
type EventPage struct {
	Items      []models.Event
	Pagination *models.Pagination
	CacheHit   bool
}

// List returns published events ordered by date, newest first.
func (s *EventService) List(ctx context.Context, page models.PageRequest) (*EventPage, error) {
	key := fmt.Sprintf("list:page=%d:size=%d", page.Page, page.PageSize)
	var cached cachedEventPage
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &EventPage{Items: cached.Items, Pagination: page.Pagination(cached.Total), CacheHit: true}, nil
	}

	gen := s.generation.Load()
	events, total, err := s.repo.List(ctx, EventScope(page))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	s.storePage(ctx, key, gen, cachedEventPage{Items: events, Total: total})
	return &EventPage{Items: events, Pagination: page.Pagination(total)}, nil
}

// ListMine returns every event owned by the NGO, published or not.
func (s *EventService) ListMine(ctx context.Context, p *models.Principal, page models.PageRequest) ([]models.Event, *models.Pagination, error) {
	if err := Authorize(p, ActionEventListOwn); err != nil {
		return nil, nil, err
	}
	events, total, err := s.repo.List(ctx, OwnEventScope(p, page))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, page.Pagination(total), nil
}

// Get returns an event visible to p.
func (s *EventService) Get(ctx context.Context, p *models.Principal, id string) (*models.Event, error) {
	if err := Authorize(p, ActionEventRead); err != nil {
		return nil, err
	}
	return s.loadVisible(ctx, p, id)
}

// Create stores a new event owned by the calling NGO.
func (s *EventService) Create(ctx context.Context, p *models.Principal, req dto.EventRequest) (*models.Event, error) {
	if err := Authorize(p, ActionEventCreate); err != nil {
		return nil, err
	}
	if err := s.validateRequest(req, false); err != nil {
		return nil, err
	}

	event := &models.Event{CreatedBy: p.UserID, CreatedByUsername: p.Username}
	if err := applyEventRequest(event, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	s.invalidate(ctx)
	s.metrics.RecordDomainEvent("event_created")
	s.audit.record(ctx, p.UserID, models.AuditActionEventCreate, "event", event.ID, map[string]interface{}{"title": event.Title, "is_published": event.IsPublished})
	return event, nil
}

// Update replaces (partial=false) or patches the event. Only the owner may write.
func (s *EventService) Update(ctx context.Context, p *models.Principal, id string, req dto.EventRequest, partial bool) (*models.Event, error) {
	if err := Authorize(p, ActionEventUpdate); err != nil {
		return nil, err
	}
	if err := s.validateRequest(req, partial); err != nil {
		return nil, err
	}

	event, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := applyEventRequest(event, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}

	s.invalidate(ctx)
	s.audit.record(ctx, p.UserID, models.AuditActionEventUpdate, "event", event.ID, map[string]interface{}{"title": event.Title, "is_published": event.IsPublished})
	return event, nil
}

// Delete removes an owned event together with its applications.
func (s *EventService) Delete(ctx context.Context, p *models.Principal, id string) error {
	if err := Authorize(p, ActionEventDelete); err != nil {
		return err
	}
	if _, err := s.loadOwned(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return eventNotFound()
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}

	s.invalidate(ctx)
	s.audit.record(ctx, p.UserID, models.AuditActionEventDelete, "event", id, nil)
	return nil
}

func (s *EventService) loadVisible(ctx context.Context, p *models.Principal, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eventNotFound()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if !EventVisible(p, event) {
		return nil, eventNotFound()
	}
	return event, nil
}

// loadOwned distinguishes invisible events (404) from visible events of another NGO (403).
func (s *EventService) loadOwned(ctx context.Context, p *models.Principal, id string) (*models.Event, error) {
	event, err := s.loadVisible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if event.CreatedBy != p.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owning NGO can modify this event")
	}
	return event, nil
}

func (s *EventService) validateRequest(req dto.EventRequest, partial bool) error {
	if !partial {
		if missing := req.Missing(); len(missing) > 0 {
			details := make(map[string]string, len(missing))
			for _, field := range missing {
				details[field] = "this field is required"
			}
			return appErrors.Validation("invalid event payload", details)
		}
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.FromValidation(err, "invalid event payload")
	}
	return nil
}

func (s *EventService) invalidate(ctx context.Context) {
	s.generation.Add(1)
	_ = s.cache.Invalidate(ctx, eventListCachePattern)
}

// storePage caches a page read at generation gen. A mutation that lands after
// the read either stops the write or removes it again once written.
func (s *EventService) storePage(ctx context.Context, key string, gen int64, page cachedEventPage) {
	if !s.cache.Enabled() || s.generation.Load() != gen {
		return
	}
	_ = s.cache.Set(ctx, key, page, 0)
	if s.generation.Load() != gen {
		_ = s.cache.Invalidate(ctx, key)
	}
}

// applyEventRequest copies present fields onto event and checks cross-field rules.
func applyEventRequest(event *models.Event, req dto.EventRequest) error {
	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Date != nil {
		date, err := parseEventDate(*req.Date)
		if err != nil {
			return appErrors.Validation("invalid event payload", map[string]string{"date": "date must use YYYY-MM-DD or RFC 3339 format"})
		}
		event.Date = date
	}
	if req.StartTime != nil {
		event.StartTime = normalizeClock(*req.StartTime)
	}
	if req.EndTime != nil {
		event.EndTime = normalizeClock(*req.EndTime)
	}
	if req.Location != nil {
		event.Location = strings.TrimSpace(*req.Location)
	}
	if req.IsPublished != nil {
		event.IsPublished = *req.IsPublished
	}

	if event.Title == "" {
		return appErrors.Validation("invalid event payload", map[string]string{"title": "this field may not be blank"})
	}
	if event.StartTime != "" && event.EndTime != "" && event.EndTime <= event.StartTime {
		return appErrors.Validation("invalid event payload", map[string]string{"end_time": "end time must be after start time"})
	}
	return nil
}

func parseEventDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func eventNotFound() *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, "event not found")
}
