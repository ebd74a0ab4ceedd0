package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

var donationRowColumns = []string{"id", "donor_id", "donor_username", "ngo_id", "ngo_username", "amount", "donated_at", "message", "transaction_id"}

func TestDonationListByDonor(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDonationRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE d.donor_id = $1 ORDER BY d.donated_at DESC")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(donationRowColumns).
			AddRow("d1", "c1", "acme", "n1", "helpers", "100.50", now, nil, "TX-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM donations d WHERE d.donor_id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.DonationFilter{DonorID: "c1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, decimal.RequireFromString("100.50").Equal(items[0].Amount))
	assert.Equal(t, "helpers", items[0].NGOUsername)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonationListAllCapsRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDonationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE d.ngo_id = $1 ORDER BY d.donated_at DESC LIMIT 10000")).
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows(donationRowColumns))

	items, err := repo.ListAll(context.Background(), models.DonationFilter{NGOID: "n1"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonationCreateDuplicateTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDonationRepository(db)

	mock.ExpectExec("INSERT INTO donations").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_donations_transaction_id"})

	err := repo.Create(context.Background(), &models.Donation{NGOID: "n1", Amount: decimal.NewFromInt(5), TransactionID: "TX-1"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContactRepository(db)

	mock.ExpectExec("INSERT INTO contact_messages").WillReturnResult(sqlmock.NewResult(1, 1))

	msg := &models.ContactMessage{Name: "Sam", Email: "sam@example.com", Message: "Hello there, team!"}
	require.NoError(t, repo.Create(context.Background(), msg))
	assert.NotEmpty(t, msg.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
