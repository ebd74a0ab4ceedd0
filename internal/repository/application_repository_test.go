package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

var applicationRowColumns = []string{"id", "event_id", "event_title", "event_owner_id", "volunteer_id", "volunteer_username", "message", "status", "applied_at", "reviewed_at", "certificate_issued", "certificate_url"}

func TestApplicationListScopes(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.created_by = $1 ORDER BY a.applied_at DESC")).
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows(applicationRowColumns).
			AddRow("a1", "e1", "Beach cleanup", "n1", "v1", "vol", nil, "pending", now, nil, false, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM volunteer_applications a JOIN events e ON e.id = a.event_id WHERE e.created_by = $1")).
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.ApplicationFilter{EventOwnerID: "n1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.ApplicationPending, items[0].Status)
	assert.Equal(t, 1, total)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE FALSE ORDER BY a.applied_at DESC")).
		WillReturnRows(sqlmock.NewRows(applicationRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE FALSE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	items, total, err = repo.List(context.Background(), models.ApplicationFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO volunteer_applications").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_applications_event_volunteer"})

	err := repo.Create(context.Background(), &models.VolunteerApplication{EventID: "e1", VolunteerID: "v1", Status: models.ApplicationPending})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationUpdateStatusOnlyPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE volunteer_applications SET status = $2, reviewed_at = $3 WHERE id = $1 AND status = 'pending'")).
		WithArgs("a1", string(models.ApplicationApproved), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "a1", models.ApplicationApproved, time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationSetCertificate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("SET certificate_issued = TRUE, certificate_url = $2 WHERE id = $1")).
		WithArgs("a1", "/api/certificates/tok").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetCertificate(context.Background(), "a1", "/api/certificates/tok"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
