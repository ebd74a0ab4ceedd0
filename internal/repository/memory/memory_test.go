package memory

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/repository"
)

func seedUser(t *testing.T, s *Store, username string, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{Username: username, Role: role, Active: true}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestUsernameUniqueIgnoringCase(t *testing.T) {
	s := New()
	seedUser(t, s, "Alice", models.RoleVolunteer)

	err := s.Users().Create(context.Background(), &models.User{Username: "alice", Role: models.RoleVolunteer})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	exists, err := s.Users().ExistsByUsername(context.Background(), "ALICE")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestEventListOrderingAndVisibility(t *testing.T) {
	s := New()
	ctx := context.Background()
	ngo := seedUser(t, s, "helpers", models.RoleNGO)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	older := &models.Event{Title: "older", Date: day, CreatedBy: ngo.ID, IsPublished: true}
	newer := &models.Event{Title: "newer", Date: day.AddDate(0, 0, 7), CreatedBy: ngo.ID, IsPublished: true}
	draft := &models.Event{Title: "draft", Date: day.AddDate(0, 1, 0), CreatedBy: ngo.ID}
	for _, e := range []*models.Event{older, newer, draft} {
		require.NoError(t, s.Events().Create(ctx, e))
	}

	public, total, err := s.Events().List(ctx, models.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"newer", "older"}, []string{public[0].Title, public[1].Title})
	assert.Equal(t, "helpers", public[0].CreatedByUsername)

	mine, total, err := s.Events().List(ctx, models.EventFilter{OwnerID: ngo.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "draft", mine[0].Title)
}

func TestDeleteEventCascadesApplications(t *testing.T) {
	s := New()
	ctx := context.Background()
	ngo := seedUser(t, s, "helpers", models.RoleNGO)
	vol := seedUser(t, s, "vol", models.RoleVolunteer)

	event := &models.Event{Title: "cleanup", CreatedBy: ngo.ID, IsPublished: true}
	require.NoError(t, s.Events().Create(ctx, event))
	app := &models.VolunteerApplication{EventID: event.ID, VolunteerID: vol.ID, Status: models.ApplicationPending}
	require.NoError(t, s.Applications().Create(ctx, app))

	dup := &models.VolunteerApplication{EventID: event.ID, VolunteerID: vol.ID, Status: models.ApplicationPending}
	assert.ErrorIs(t, s.Applications().Create(ctx, dup), repository.ErrDuplicate)

	require.NoError(t, s.Events().Delete(ctx, event.ID))
	_, err := s.Applications().FindByID(ctx, app.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteDonorKeepsDonation(t *testing.T) {
	s := New()
	ctx := context.Background()
	ngo := seedUser(t, s, "helpers", models.RoleNGO)
	corp := seedUser(t, s, "acme", models.RoleCorporate)

	donorID := corp.ID
	d := &models.Donation{DonorID: &donorID, NGOID: ngo.ID, Amount: decimal.NewFromInt(10), TransactionID: "TX-1"}
	require.NoError(t, s.Donations().Create(ctx, d))
	assert.ErrorIs(t, s.Donations().Create(ctx, &models.Donation{NGOID: ngo.ID, Amount: decimal.NewFromInt(1), TransactionID: "TX-1"}), repository.ErrDuplicate)

	require.NoError(t, s.Users().Delete(ctx, corp.ID))
	got, err := s.Donations().FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DonorID)
	assert.Nil(t, got.DonorUsername)
	assert.Equal(t, "helpers", got.NGOUsername)
}

func TestApplicationStatusUpdateRequiresPending(t *testing.T) {
	s := New()
	ctx := context.Background()
	ngo := seedUser(t, s, "helpers", models.RoleNGO)
	vol := seedUser(t, s, "vol", models.RoleVolunteer)
	event := &models.Event{Title: "cleanup", CreatedBy: ngo.ID, IsPublished: true}
	require.NoError(t, s.Events().Create(ctx, event))
	app := &models.VolunteerApplication{EventID: event.ID, VolunteerID: vol.ID, Status: models.ApplicationPending}
	require.NoError(t, s.Applications().Create(ctx, app))

	now := time.Now()
	require.NoError(t, s.Applications().UpdateStatus(ctx, app.ID, models.ApplicationApproved, now))
	assert.ErrorIs(t, s.Applications().UpdateStatus(ctx, app.ID, models.ApplicationRejected, now), sql.ErrNoRows)
	assert.ErrorIs(t, s.Applications().Delete(ctx, app.ID), sql.ErrNoRows)

	listed, total, err := s.Applications().List(ctx, models.ApplicationFilter{EventOwnerID: ngo.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "cleanup", listed[0].EventTitle)
	assert.Equal(t, "vol", listed[0].VolunteerUsername)
}
