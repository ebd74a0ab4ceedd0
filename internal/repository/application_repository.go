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

const applicationSelect = `SELECT a.id, a.event_id, e.title AS event_title, e.created_by AS event_owner_id, a.volunteer_id, u.username AS volunteer_username, a.message, a.status, a.applied_at, a.reviewed_at, a.certificate_issued, a.certificate_url FROM volunteer_applications a JOIN events e ON e.id = a.event_id JOIN users u ON u.id = a.volunteer_id`

// ApplicationRepository persists volunteer applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs an application repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func applicationScope(filter models.ApplicationFilter) (string, []interface{}) {
	switch {
	case filter.EventOwnerID != "":
		return ` WHERE e.created_by = $1`, []interface{}{filter.EventOwnerID}
	case filter.VolunteerID != "":
		return ` WHERE a.volunteer_id = $1`, []interface{}{filter.VolunteerID}
	default:
		return ` WHERE FALSE`, nil
	}
}

// List returns applications in scope, most recent first.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.VolunteerApplication, int, error) {
	where, args := applicationScope(filter)
	page := filter.Page
	if page.PageSize == 0 {
		page = models.NewPageRequest(page.Page, 0)
	}
	listQuery := fmt.Sprintf("%s%s ORDER BY a.applied_at DESC LIMIT %d OFFSET %d", applicationSelect, where, page.PageSize, page.Offset())

	items := make([]models.VolunteerApplication, 0)
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM volunteer_applications a JOIN events e ON e.id = a.event_id` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return items, total, nil
}

// FindByID returns an application with its event and volunteer details.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.VolunteerApplication, error) {
	var app models.VolunteerApplication
	if err := r.db.GetContext(ctx, &app, applicationSelect+` WHERE a.id = $1`, id); err != nil {
		err = translate(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return &app, nil
}

// Exists reports whether the volunteer already applied to the event.
func (r *ApplicationRepository) Exists(ctx context.Context, eventID, volunteerID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM volunteer_applications WHERE event_id = $1 AND volunteer_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, eventID, volunteerID); err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	return exists, nil
}

// Create inserts an application. A second application for the same pair yields ErrDuplicate.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.VolunteerApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now().UTC()
	}
	const query = `INSERT INTO volunteer_applications (id, event_id, volunteer_id, message, status, applied_at, certificate_issued) VALUES (:id, :event_id, :volunteer_id, :message, :status, :applied_at, :certificate_issued)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", translate(err))
	}
	return nil
}

// UpdateStatus records a review decision. Only pending rows are changed.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, reviewedAt time.Time) error {
	const query = `UPDATE volunteer_applications SET status = $2, reviewed_at = $3 WHERE id = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, id, status, reviewedAt)
	if err != nil {
		if err = translate(err); errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("update application status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetCertificate marks the certificate as issued with its download URL.
func (r *ApplicationRepository) SetCertificate(ctx context.Context, id, url string) error {
	const query = `UPDATE volunteer_applications SET certificate_issued = TRUE, certificate_url = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, url); err != nil {
		return fmt.Errorf("set certificate: %w", err)
	}
	return nil
}

// Delete removes a pending application.
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM volunteer_applications WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		if err = translate(err); errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("delete application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
