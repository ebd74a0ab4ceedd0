package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/export"
	"github.com/noah-isme/volunteer-hub-api/pkg/jobs"
	"github.com/noah-isme/volunteer-hub-api/pkg/storage"
)

// CertificateQueueName labels the certificate worker pool in logs and metrics.
const CertificateQueueName = "certificates"

const certificateURLPrefix = "/api/certificates/"

// CertificateJob asks the worker pool to produce a certificate for an application.
type CertificateJob struct {
	ApplicationID string
	RequestedBy   string
}

type certificateApplicationRepository interface {
	FindByID(ctx context.Context, id string) (*models.VolunteerApplication, error)
	SetCertificate(ctx context.Context, id, url string) error
}

type certificateEventLookup interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

type certificateUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type certificateRenderer interface {
	Render(cert export.Certificate) ([]byte, error)
}

type certificateStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type certificateQueue interface {
	Enqueue(job jobs.Job[CertificateJob]) error
}

// CertificateService renders, stores and signs volunteer certificates.
type CertificateService struct {
	apps     certificateApplicationRepository
	events   certificateEventLookup
	users    certificateUserLookup
	renderer certificateRenderer
	store    certificateStore
	signer   *storage.Signer
	queue    certificateQueue
	metrics  *MetricsService
	logger   *zap.Logger
	issuer   string
	now      func() time.Time
}

// CertificateServiceDeps groups the collaborators of CertificateService.
type CertificateServiceDeps struct {
	Applications certificateApplicationRepository
	Events       certificateEventLookup
	Users        certificateUserLookup
	Renderer     certificateRenderer
	Store        certificateStore
	Signer       *storage.Signer
	Metrics      *MetricsService
	Logger       *zap.Logger
	IssuerName   string
}

// NewCertificateService constructs a CertificateService. Attach a queue before enqueueing.
func NewCertificateService(deps CertificateServiceDeps) *CertificateService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = export.NewCertificateRenderer()
	}
	return &CertificateService{
		apps:     deps.Applications,
		events:   deps.Events,
		users:    deps.Users,
		renderer: renderer,
		store:    deps.Store,
		signer:   deps.Signer,
		metrics:  deps.Metrics,
		logger:   logger,
		issuer:   deps.IssuerName,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AttachQueue sets the queue used by Enqueue. The queue's handler is normally Process.
func (s *CertificateService) AttachQueue(q certificateQueue) {
	s.queue = q
}

// Enqueue schedules certificate generation and returns the job id.
func (s *CertificateService) Enqueue(ctx context.Context, applicationID, requestedBy string) (string, error) {
	if s.queue == nil {
		return "", appErrors.Clone(appErrors.ErrUnavailable, "certificate queue is not running")
	}
	job := jobs.Job[CertificateJob]{
		ID:       uuid.NewString(),
		Payload:  CertificateJob{ApplicationID: applicationID, RequestedBy: requestedBy},
		Enqueued: s.now(),
	}
	if err := s.queue.Enqueue(job); err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			return "", appErrors.Clone(appErrors.ErrUnavailable, "certificate queue is busy, try again later")
		}
		return "", appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "certificate queue is not running")
	}
	s.logger.Info("certificate queued", zap.String("job_id", job.ID), zap.String("application_id", applicationID))
	return job.ID, nil
}

// Process is the queue handler: render, store, sign, then mark the application.
func (s *CertificateService) Process(ctx context.Context, job jobs.Job[CertificateJob]) (err error) {
	defer func() { s.metrics.RecordJob(CertificateQueueName, err) }()

	app, err := s.apps.FindByID(ctx, job.Payload.ApplicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("certificate skipped, application gone", zap.String("application_id", job.Payload.ApplicationID))
			return nil
		}
		return fmt.Errorf("load application: %w", err)
	}
	if app.Status != models.ApplicationApproved || (app.CertificateIssued && s.LinkActive(app.CertificateURL)) {
		return nil
	}

	event, err := s.events.FindByID(ctx, app.EventID)
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}
	volunteer, err := s.users.FindByID(ctx, app.VolunteerID)
	if err != nil {
		return fmt.Errorf("load volunteer: %w", err)
	}
	organisation := event.CreatedByUsername
	if ngo, err := s.users.FindByID(ctx, event.CreatedBy); err == nil {
		organisation = ngo.DisplayName()
	}

	pdf, err := s.renderer.Render(export.Certificate{
		Reference:     app.ID,
		VolunteerName: volunteer.DisplayName(),
		EventTitle:    event.Title,
		EventDate:     event.Date,
		Location:      event.Location,
		Organisation:  organisation,
		Issuer:        s.issuer,
		IssuedAt:      s.now(),
	})
	if err != nil {
		return fmt.Errorf("render certificate: %w", err)
	}

	stored, err := s.store.Save(path.Join(app.VolunteerID, app.ID+".pdf"), pdf)
	if err != nil {
		return err
	}
	token, _, err := s.signer.Sign(app.VolunteerID, stored)
	if err != nil {
		return fmt.Errorf("sign certificate: %w", err)
	}
	if err := s.apps.SetCertificate(ctx, app.ID, certificateURLPrefix+token); err != nil {
		return err
	}
	s.metrics.RecordDomainEvent("certificate_issued")
	s.logger.Info("certificate issued", zap.String("application_id", app.ID), zap.String("job_id", job.ID))
	return nil
}

// LinkActive reports whether a stored certificate URL still verifies. An expired
// link lets the certificate be issued again.
func (s *CertificateService) LinkActive(url *string) bool {
	if url == nil || !strings.HasPrefix(*url, certificateURLPrefix) {
		return false
	}
	_, err := s.signer.Verify(strings.TrimPrefix(*url, certificateURLPrefix))
	return err == nil
}

// Open resolves a signed token to the stored certificate. Invalid or expired tokens are not found.
func (s *CertificateService) Open(token string) (*os.File, string, error) {
	ref, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidToken) || errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify certificate link")
	}
	f, err := s.store.Open(ref.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open certificate")
	}
	return f, path.Base(ref.Path), nil
}
