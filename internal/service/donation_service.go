package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/repository"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/export"
)

type donationRepository interface {
	List(ctx context.Context, filter models.DonationFilter) ([]models.Donation, int, error)
	ListAll(ctx context.Context, filter models.DonationFilter) ([]models.Donation, error)
	FindByID(ctx context.Context, id string) (*models.Donation, error)
	Create(ctx context.Context, donation *models.Donation) error
}

type donationUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type datasetExporter interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
	Extension() string
}

var (
	// amounts are stored as NUMERIC(10,2)
	maxDonationAmount = decimal.New(1, 8)
	donationHeaders   = []string{"Transaction ID", "Donor", "NGO", "Amount", "Donated At", "Message"}
)

// DonationService records and reports donations.
type DonationService struct {
	repo      donationRepository
	users     donationUserLookup
	exporters map[dto.ExportFormat]datasetExporter
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	audit     auditor
	now       func() time.Time
}

// DonationServiceDeps groups optional collaborators of DonationService.
type DonationServiceDeps struct {
	Audit   auditRepository
	Metrics *MetricsService
}

// NewDonationService constructs a DonationService.
func NewDonationService(repo donationRepository, users donationUserLookup, validate *validator.Validate, logger *zap.Logger, deps DonationServiceDeps) *DonationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &DonationService{
		repo:  repo,
		users: users,
		exporters: map[dto.ExportFormat]datasetExporter{
			dto.ExportCSV: export.NewCSVExporter(),
			dto.ExportPDF: export.NewPDFExporter(),
		},
		validator: validate,
		logger:    logger,
		metrics:   deps.Metrics,
		audit:     auditor{repo: deps.Audit, logger: logger},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns donations p gave or received.
func (s *DonationService) List(ctx context.Context, p *models.Principal, page models.PageRequest) ([]models.Donation, *models.Pagination, error) {
	if err := Authorize(p, ActionDonationList); err != nil {
		return nil, nil, err
	}
	items, total, err := s.repo.List(ctx, DonationScope(p, page))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list donations")
	}
	return items, page.Pagination(total), nil
}

// Get returns a donation in scope.
func (s *DonationService) Get(ctx context.Context, p *models.Principal, id string) (*models.Donation, error) {
	if err := Authorize(p, ActionDonationRead); err != nil {
		return nil, err
	}
	donation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, donationNotFound()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donation")
	}
	if !DonationInScope(p, donation) {
		return nil, donationNotFound()
	}
	return donation, nil
}

// Create records a donation from p to an NGO. The donor is always the caller.
func (s *DonationService) Create(ctx context.Context, p *models.Principal, req dto.CreateDonationRequest) (*models.Donation, error) {
	if err := Authorize(p, ActionDonationCreate); err != nil {
		return nil, err
	}
	req.TransactionID = strings.TrimSpace(req.TransactionID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid donation payload")
	}
	if msg := amountProblem(req.Amount); msg != "" {
		return nil, appErrors.Validation("invalid donation payload", map[string]string{"amount": msg})
	}

	ngo, err := s.users.FindByID(ctx, req.NGOID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recipient")
	}
	if ngo == nil || ngo.Role != models.RoleNGO {
		return nil, appErrors.Validation("invalid donation payload", map[string]string{"ngo": "recipient must be an NGO account"})
	}

	txID := req.TransactionID
	if txID == "" {
		txID = "TXN-" + strings.ToUpper(uuid.NewString())
	}
	donorID, donorUsername := p.UserID, p.Username
	donation := &models.Donation{
		DonorID:       &donorID,
		DonorUsername: &donorUsername,
		NGOID:         ngo.ID,
		NGOUsername:   ngo.Username,
		Amount:        req.Amount,
		DonatedAt:     s.now(),
		Message:       req.Message,
		TransactionID: txID,
	}
	if err := s.repo.Create(ctx, donation); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			e := appErrors.Clone(appErrors.ErrConflict, "a donation with this transaction id already exists")
			e.Details = map[string]string{"transaction_id": "donation with this transaction id already exists"}
			return nil, e
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record donation")
	}

	s.metrics.RecordDomainEvent("donation_created")
	s.audit.record(ctx, p.UserID, models.AuditActionDonationCreate, "donation", donation.ID, map[string]string{
		"ngo":            donation.NGOID,
		"amount":         donation.Amount.StringFixed(2),
		"transaction_id": donation.TransactionID,
	})
	return donation, nil
}

// Export renders every donation in scope as CSV or PDF.
func (s *DonationService) Export(ctx context.Context, p *models.Principal, format dto.ExportFormat) (*dto.ExportFile, error) {
	if err := Authorize(p, ActionDonationExport); err != nil {
		return nil, err
	}
	if format == "" {
		format = dto.ExportCSV
	}
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, appErrors.Validation("invalid export format", map[string]string{"format": "must be one of: csv pdf"})
	}

	items, err := s.repo.ListAll(ctx, DonationScope(p, models.PageRequest{}))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donations")
	}

	data := export.Dataset{Headers: donationHeaders, Rows: make([]map[string]string, 0, len(items))}
	for _, d := range items {
		data.Rows = append(data.Rows, map[string]string{
			"Transaction ID": d.TransactionID,
			"Donor":          derefOr(d.DonorUsername, "(deleted account)"),
			"NGO":            d.NGOUsername,
			"Amount":         d.Amount.StringFixed(2),
			"Donated At":     d.DonatedAt.UTC().Format(time.RFC3339),
			"Message":        derefOr(d.Message, ""),
		})
	}

	body, err := exporter.Render(data, "Donations")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("donations-%s.%s", s.now().Format("20060102"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}

func amountProblem(amount decimal.Decimal) string {
	switch {
	case !amount.IsPositive():
		return "ensure this value is greater than 0"
	case !amount.Equal(amount.Round(2)):
		return "ensure that there are no more than 2 decimal places"
	case amount.GreaterThanOrEqual(maxDonationAmount):
		return "ensure that there are no more than 10 digits in total"
	default:
		return ""
	}
}

func derefOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func donationNotFound() *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, "donation not found")
}
