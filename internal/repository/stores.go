package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

// UserStore persists accounts, refresh tokens and audit entries.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// EventStore persists events.
type EventStore interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

// ApplicationStore persists volunteer applications.
type ApplicationStore interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.VolunteerApplication, int, error)
	FindByID(ctx context.Context, id string) (*models.VolunteerApplication, error)
	Exists(ctx context.Context, eventID, volunteerID string) (bool, error)
	Create(ctx context.Context, app *models.VolunteerApplication) error
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, reviewedAt time.Time) error
	SetCertificate(ctx context.Context, id, url string) error
	Delete(ctx context.Context, id string) error
}

// DonationStore persists donations.
type DonationStore interface {
	List(ctx context.Context, filter models.DonationFilter) ([]models.Donation, int, error)
	ListAll(ctx context.Context, filter models.DonationFilter) ([]models.Donation, error)
	FindByID(ctx context.Context, id string) (*models.Donation, error)
	Create(ctx context.Context, donation *models.Donation) error
}

// ContactStore persists contact form submissions.
type ContactStore interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
}

// Stores bundles one backend's repositories.
type Stores struct {
	Users        UserStore
	Events       EventStore
	Applications ApplicationStore
	Donations    DonationStore
	Contacts     ContactStore
}

// NewPostgresStores wires the SQL repositories onto a single connection pool.
func NewPostgresStores(db *sqlx.DB) Stores {
	return Stores{
		Users:        NewUserRepository(db),
		Events:       NewEventRepository(db),
		Applications: NewApplicationRepository(db),
		Donations:    NewDonationRepository(db),
		Contacts:     NewContactRepository(db),
	}
}

// DBPinger adapts a connection pool to readiness checks.
type DBPinger struct {
	DB *sqlx.DB
}

// Ping checks the database connection.
func (p DBPinger) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}
