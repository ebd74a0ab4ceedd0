package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

const eventSelect = `SELECT e.id, e.title, e.description, e.date, e.start_time, e.end_time, e.location, e.created_by, u.username AS created_by_username, e.is_published, e.created_at, e.updated_at FROM events e JOIN users u ON u.id = e.created_by`

// EventRepository persists events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns published events, or every event of filter.OwnerID when set,
// newest date first.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	where := ` WHERE e.is_published = TRUE`
	var args []interface{}
	if filter.OwnerID != "" {
		where = ` WHERE e.created_by = $1`
		args = append(args, filter.OwnerID)
	}

	page := filter.Page
	if page.PageSize == 0 {
		page = models.NewPageRequest(page.Page, 0)
	}
	listQuery := fmt.Sprintf("%s%s ORDER BY e.date DESC, e.created_at DESC LIMIT %d OFFSET %d", eventSelect, where, page.PageSize, page.Offset())

	events := make([]models.Event, 0)
	if err := r.db.SelectContext(ctx, &events, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM events e"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// FindByID returns an event regardless of publish state.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.GetContext(ctx, &event, eventSelect+` WHERE e.id = $1`, id); err != nil {
		err = translate(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &event, nil
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	const query = `INSERT INTO events (id, title, description, date, start_time, end_time, location, created_by, is_published, created_at, updated_at) VALUES (:id, :title, :description, :date, :start_time, :end_time, :location, :created_by, :is_published, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", translate(err))
	}
	return nil
}

// Update persists the writable event fields. Ownership never changes.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE events SET title = :title, description = :description, date = :date, start_time = :start_time, end_time = :end_time, location = :location, is_published = :is_published, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes an event and, through the foreign key, its applications.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if err = translate(err); errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
