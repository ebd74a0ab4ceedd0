package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/repository"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type applicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.VolunteerApplication, int, error)
	FindByID(ctx context.Context, id string) (*models.VolunteerApplication, error)
	Exists(ctx context.Context, eventID, volunteerID string) (bool, error)
	Create(ctx context.Context, app *models.VolunteerApplication) error
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, reviewedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type applicationEventLookup interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

type certificateIssuer interface {
	Enqueue(ctx context.Context, applicationID, requestedBy string) (string, error)
	LinkActive(url *string) bool
}

// ApplicationService coordinates volunteer applications and their review.
type ApplicationService struct {
	repo         applicationRepository
	events       applicationEventLookup
	certificates certificateIssuer
	validator    *validator.Validate
	logger       *zap.Logger
	metrics      *MetricsService
	audit        auditor
	now          func() time.Time
}

// ApplicationServiceDeps groups optional collaborators of ApplicationService.
type ApplicationServiceDeps struct {
	Certificates certificateIssuer
	Audit        auditRepository
	Metrics      *MetricsService
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(repo applicationRepository, events applicationEventLookup, validate *validator.Validate, logger *zap.Logger, deps ApplicationServiceDeps) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &ApplicationService{
		repo:         repo,
		events:       events,
		certificates: deps.Certificates,
		validator:    validate,
		logger:       logger,
		metrics:      deps.Metrics,
		audit:        auditor{repo: deps.Audit, logger: logger},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// List returns the applications p is party to.
func (s *ApplicationService) List(ctx context.Context, p *models.Principal, page models.PageRequest) ([]models.VolunteerApplication, *models.Pagination, error) {
	if err := Authorize(p, ActionApplicationList); err != nil {
		return nil, nil, err
	}
	items, total, err := s.repo.List(ctx, ApplicationScope(p, page))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return items, page.Pagination(total), nil
}

// Get returns an application in scope.
func (s *ApplicationService) Get(ctx context.Context, p *models.Principal, id string) (*models.VolunteerApplication, error) {
	if err := Authorize(p, ActionApplicationRead); err != nil {
		return nil, err
	}
	return s.load(ctx, p, id)
}

// Create submits an application for a published event on behalf of the volunteer.
func (s *ApplicationService) Create(ctx context.Context, p *models.Principal, req dto.CreateApplicationRequest) (*models.VolunteerApplication, error) {
	if err := Authorize(p, ActionApplicationCreate); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid application payload")
	}

	event, err := s.events.FindByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eventNotFound()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if !event.IsPublished {
		return nil, eventNotFound()
	}

	exists, err := s.repo.Exists(ctx, event.ID, p.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check application")
	}
	if exists {
		return nil, alreadyApplied()
	}

	app := &models.VolunteerApplication{
		EventID:           event.ID,
		EventTitle:        event.Title,
		EventOwnerID:      event.CreatedBy,
		VolunteerID:       p.UserID,
		VolunteerUsername: p.Username,
		Message:           req.Message,
		Status:            models.ApplicationPending,
		AppliedAt:         s.now(),
	}
	if err := s.repo.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, alreadyApplied()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}
	s.metrics.RecordDomainEvent("application_created")
	return app, nil
}

// UpdateStatus records an NGO review decision for an application on one of its events.
func (s *ApplicationService) UpdateStatus(ctx context.Context, p *models.Principal, id string, req dto.UpdateApplicationRequest) (*models.VolunteerApplication, error) {
	if err := Authorize(p, ActionApplicationReview); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid application payload")
	}

	app, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := app.Status.CanTransition(req.Status); err != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, err.Error())
	}
	if app.Status == req.Status {
		return app, nil
	}

	reviewedAt := s.now()
	if err := s.repo.UpdateStatus(ctx, app.ID, req.Status, reviewedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "application was already reviewed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}
	app.Status = req.Status
	app.ReviewedAt = &reviewedAt

	s.metrics.RecordDomainEvent("application_" + string(req.Status))
	s.audit.record(ctx, p.UserID, models.AuditActionApplicationReview, "application", app.ID, map[string]string{"status": string(app.Status)})
	return app, nil
}

// Withdraw deletes the volunteer's own pending application.
func (s *ApplicationService) Withdraw(ctx context.Context, p *models.Principal, id string) error {
	if err := Authorize(p, ActionApplicationWithdraw); err != nil {
		return err
	}
	app, err := s.load(ctx, p, id)
	if err != nil {
		return err
	}
	if app.Status != models.ApplicationPending {
		return appErrors.Clone(appErrors.ErrConflict, "only pending applications can be withdrawn")
	}
	if err := s.repo.Delete(ctx, app.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "only pending applications can be withdrawn")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to withdraw application")
	}
	return nil
}

// IssueCertificate queues certificate generation for an approved application.
// A certificate whose download link has expired may be issued again.
func (s *ApplicationService) IssueCertificate(ctx context.Context, p *models.Principal, id string) (*dto.CertificateIssueResponse, error) {
	if err := Authorize(p, ActionCertificateIssue); err != nil {
		return nil, err
	}
	app, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationApproved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "certificates are only issued for approved applications")
	}
	if app.CertificateIssued && (s.certificates == nil || s.certificates.LinkActive(app.CertificateURL)) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "certificate already issued")
	}
	if s.certificates == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "certificate issuing is not configured")
	}

	jobID, err := s.certificates.Enqueue(ctx, app.ID, p.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.CertificateIssueResponse{ApplicationID: app.ID, JobID: jobID, Status: "queued"}, nil
}

func (s *ApplicationService) load(ctx context.Context, p *models.Principal, id string) (*models.VolunteerApplication, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, applicationNotFound()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if !ApplicationInScope(p, app) {
		return nil, applicationNotFound()
	}
	return app, nil
}

func applicationNotFound() *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, "application not found")
}

func alreadyApplied() *appErrors.Error {
	return appErrors.Clone(appErrors.ErrConflict, "you have already applied to this event")
}
