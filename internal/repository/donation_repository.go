package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

const donationSelect = `SELECT d.id, d.donor_id, du.username AS donor_username, d.ngo_id, nu.username AS ngo_username, d.amount, d.donated_at, d.message, d.transaction_id FROM donations d LEFT JOIN users du ON du.id = d.donor_id JOIN users nu ON nu.id = d.ngo_id`

// maxExportRows bounds an export to keep rendering in memory predictable.
const maxExportRows = 10000

// DonationRepository persists donations. Rows are never updated.
type DonationRepository struct {
	db *sqlx.DB
}

// NewDonationRepository constructs a donation repository.
func NewDonationRepository(db *sqlx.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func donationScope(filter models.DonationFilter) (string, []interface{}) {
	switch {
	case filter.NGOID != "":
		return ` WHERE d.ngo_id = $1`, []interface{}{filter.NGOID}
	case filter.DonorID != "":
		return ` WHERE d.donor_id = $1`, []interface{}{filter.DonorID}
	default:
		return ` WHERE FALSE`, nil
	}
}

// List returns donations in scope, most recent first.
func (r *DonationRepository) List(ctx context.Context, filter models.DonationFilter) ([]models.Donation, int, error) {
	where, args := donationScope(filter)
	page := filter.Page
	if page.PageSize == 0 {
		page = models.NewPageRequest(page.Page, 0)
	}
	listQuery := fmt.Sprintf("%s%s ORDER BY d.donated_at DESC LIMIT %d OFFSET %d", donationSelect, where, page.PageSize, page.Offset())

	items := make([]models.Donation, 0)
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list donations: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM donations d"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count donations: %w", err)
	}
	return items, total, nil
}

// ListAll returns every donation in scope for export.
func (r *DonationRepository) ListAll(ctx context.Context, filter models.DonationFilter) ([]models.Donation, error) {
	where, args := donationScope(filter)
	query := fmt.Sprintf("%s%s ORDER BY d.donated_at DESC LIMIT %d", donationSelect, where, maxExportRows)
	items := make([]models.Donation, 0)
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("export donations: %w", err)
	}
	return items, nil
}

// FindByID returns a donation with donor and recipient usernames.
func (r *DonationRepository) FindByID(ctx context.Context, id string) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.GetContext(ctx, &donation, donationSelect+` WHERE d.id = $1`, id); err != nil {
		err = translate(err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find donation: %w", err)
	}
	return &donation, nil
}

// Create inserts a donation. A reused transaction id yields ErrDuplicate.
func (r *DonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	if donation.ID == "" {
		donation.ID = uuid.NewString()
	}
	const query = `INSERT INTO donations (id, donor_id, ngo_id, amount, donated_at, message, transaction_id) VALUES (:id, :donor_id, :ngo_id, :amount, :donated_at, :message, :transaction_id)`
	if _, err := r.db.NamedExecContext(ctx, query, donation); err != nil {
		return fmt.Errorf("create donation: %w", translate(err))
	}
	return nil
}
