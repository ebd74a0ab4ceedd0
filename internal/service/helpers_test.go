package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/repository/memory"
)

type fixture struct {
	store     *memory.Store
	ngo       *models.User
	otherNGO  *models.User
	volunteer *models.User
	corporate *models.User
	admin     *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	f := &fixture{store: store}
	f.ngo = seed(t, store, "helping-hands", models.RoleNGO, false)
	f.otherNGO = seed(t, store, "green-earth", models.RoleNGO, false)
	f.volunteer = seed(t, store, "vera", models.RoleVolunteer, false)
	f.corporate = seed(t, store, "acme", models.RoleCorporate, false)
	f.admin = seed(t, store, "root", models.RoleVolunteer, true)
	return f
}

func seed(t *testing.T, store *memory.Store, username string, role models.UserRole, admin bool) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: role, IsAdmin: admin, Active: true}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) events() *EventService {
	return NewEventService(f.store.Events(), nil, zap.NewNop(), EventServiceDeps{Audit: f.store.Users()})
}

func (f *fixture) applications(certs certificateIssuer) *ApplicationService {
	return NewApplicationService(f.store.Applications(), f.store.Events(), nil, zap.NewNop(), ApplicationServiceDeps{Certificates: certs, Audit: f.store.Users()})
}

func (f *fixture) donations() *DonationService {
	return NewDonationService(f.store.Donations(), f.store.Users(), nil, zap.NewNop(), DonationServiceDeps{Audit: f.store.Users()})
}

func (f *fixture) profiles() *ProfileService {
	return NewProfileService(f.store.Users(), nil, zap.NewNop())
}

// publishedEvent creates an event through the service as f.ngo.
func (f *fixture) publishedEvent(t *testing.T, title string, date string) *models.Event {
	t.Helper()
	return f.createEvent(t, f.ngo, title, date, true)
}

func (f *fixture) createEvent(t *testing.T, owner *models.User, title, date string, published bool) *models.Event {
	t.Helper()
	event, err := f.events().Create(context.Background(), owner.Principal(), eventRequest(title, date, published))
	require.NoError(t, err)
	return event
}

func eventRequest(title, date string, published bool) dto.EventRequest {
	return dto.EventRequest{
		Title:       strPtr(title),
		Description: strPtr("Help out at " + title),
		Date:        strPtr(date),
		StartTime:   strPtr("09:00"),
		EndTime:     strPtr("12:30"),
		Location:    strPtr("Community hall"),
		IsPublished: boolPtr(published),
	}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

type stubIssuer struct {
	calls   []string
	err     error
	expired string
}

func (s *stubIssuer) LinkActive(url *string) bool {
	return url != nil && *url != s.expired
}

func (s *stubIssuer) Enqueue(_ context.Context, applicationID, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.calls = append(s.calls, applicationID)
	return "job-" + applicationID, nil
}

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
