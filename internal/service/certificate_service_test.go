package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/export"
	"github.com/noah-isme/volunteer-hub-api/pkg/jobs"
	"github.com/noah-isme/volunteer-hub-api/pkg/storage"
)

type fakeRenderer struct {
	mu    sync.Mutex
	certs []export.Certificate
}

func (r *fakeRenderer) Render(cert export.Certificate) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.certs = append(r.certs, cert)
	return []byte("%PDF-fake " + cert.Reference), nil
}

type recordingQueue struct {
	jobs []jobs.Job[CertificateJob]
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job[CertificateJob]) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func newCertificateService(t *testing.T, f *fixture, renderer *fakeRenderer, ttl time.Duration) *CertificateService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewCertificateService(CertificateServiceDeps{
		Applications: f.store.Applications(),
		Events:       f.store.Events(),
		Users:        f.store.Users(),
		Renderer:     renderer,
		Store:        store,
		Signer:       storage.NewSigner("test-secret", ttl),
		Logger:       zap.NewNop(),
		IssuerName:   "Volunteer Hub",
	})
}

func (f *fixture) approvedApplication(t *testing.T) *models.VolunteerApplication {
	t.Helper()
	svc := f.applications(nil)
	app := f.apply(t, svc, f.publishedEvent(t, "Beach cleanup", "2026-11-01"))
	_, err := svc.UpdateStatus(context.Background(), f.ngo.Principal(), app.ID, dto.UpdateApplicationRequest{Status: models.ApplicationApproved})
	require.NoError(t, err)
	return app
}

func TestCertificateProcessStoresAndSigns(t *testing.T) {
	f := newFixture(t)
	renderer := &fakeRenderer{}
	svc := newCertificateService(t, f, renderer, time.Hour)
	app := f.approvedApplication(t)
	ctx := context.Background()

	job := jobs.Job[CertificateJob]{ID: "job-1", Payload: CertificateJob{ApplicationID: app.ID, RequestedBy: f.ngo.ID}}
	require.NoError(t, svc.Process(ctx, job))

	require.Len(t, renderer.certs, 1)
	cert := renderer.certs[0]
	assert.Equal(t, app.ID, cert.Reference)
	assert.Equal(t, "vera", cert.VolunteerName)
	assert.Equal(t, "Beach cleanup", cert.EventTitle)
	assert.Equal(t, "Volunteer Hub", cert.Issuer)

	stored, err := f.store.Applications().FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.True(t, stored.CertificateIssued)
	require.NotNil(t, stored.CertificateURL)
	require.True(t, strings.HasPrefix(*stored.CertificateURL, "/api/certificates/"))

	token := strings.TrimPrefix(*stored.CertificateURL, "/api/certificates/")
	file, name, err := svc.Open(token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, app.ID+".pdf", name)
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake "+app.ID, string(body))

	require.NoError(t, svc.Process(ctx, job))
	assert.Len(t, renderer.certs, 1)
}

func TestCertificateProcessSkipsIneligible(t *testing.T) {
	f := newFixture(t)
	renderer := &fakeRenderer{}
	svc := newCertificateService(t, f, renderer, time.Hour)
	pending := f.apply(t, f.applications(nil), f.publishedEvent(t, "Food drive", "2026-11-01"))

	require.NoError(t, svc.Process(context.Background(), jobs.Job[CertificateJob]{Payload: CertificateJob{ApplicationID: pending.ID}}))
	require.NoError(t, svc.Process(context.Background(), jobs.Job[CertificateJob]{Payload: CertificateJob{ApplicationID: "missing"}}))
	assert.Empty(t, renderer.certs)
}

func TestCertificateOpenRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	svc := newCertificateService(t, f, &fakeRenderer{}, time.Hour)
	app := f.approvedApplication(t)
	require.NoError(t, svc.Process(context.Background(), jobs.Job[CertificateJob]{Payload: CertificateJob{ApplicationID: app.ID}}))

	stored := f.volunteer.ID + "/" + app.ID + ".pdf"
	forged, _, err := storage.NewSigner("someone-else", time.Hour).Sign(f.volunteer.ID, stored)
	require.NoError(t, err)
	_, _, err = svc.Open(forged)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, _, err = svc.Open("garbage")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	missing, _, err := storage.NewSigner("test-secret", time.Hour).Sign(f.volunteer.ID, f.volunteer.ID+"/missing.pdf")
	require.NoError(t, err)
	_, _, err = svc.Open(missing)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCertificateReissuedAfterLinkExpires(t *testing.T) {
	f := newFixture(t)
	renderer := &fakeRenderer{}
	svc := newCertificateService(t, f, renderer, 2*time.Second)
	app := f.approvedApplication(t)
	ctx := context.Background()
	q := &recordingQueue{}
	svc.AttachQueue(q)

	require.NoError(t, svc.Process(ctx, jobs.Job[CertificateJob]{Payload: CertificateJob{ApplicationID: app.ID}}))
	stored, err := f.store.Applications().FindByID(ctx, app.ID)
	require.NoError(t, err)
	first := *stored.CertificateURL
	assert.True(t, svc.LinkActive(&first))

	_, err = f.applications(svc).IssueCertificate(ctx, f.ngo.Principal(), app.ID)
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	require.Eventually(t, func() bool { return !svc.LinkActive(&first) }, 5*time.Second, 50*time.Millisecond)
	_, _, err = svc.Open(strings.TrimPrefix(first, "/api/certificates/"))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	res, err := f.applications(svc).IssueCertificate(ctx, f.ngo.Principal(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, "queued", res.Status)
	require.Len(t, q.jobs, 1)

	require.NoError(t, svc.Process(ctx, q.jobs[0]))
	assert.Len(t, renderer.certs, 2)
	stored, err = f.store.Applications().FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, *stored.CertificateURL)
	assert.True(t, svc.LinkActive(stored.CertificateURL))
}

func TestCertificateEnqueue(t *testing.T) {
	f := newFixture(t)
	svc := newCertificateService(t, f, &fakeRenderer{}, time.Hour)
	ctx := context.Background()

	_, err := svc.Enqueue(ctx, "app-1", f.ngo.ID)
	assert.ErrorIs(t, err, appErrors.ErrUnavailable)

	q := &recordingQueue{}
	svc.AttachQueue(q)
	id, err := svc.Enqueue(ctx, "app-1", f.ngo.ID)
	require.NoError(t, err)
	require.Len(t, q.jobs, 1)
	assert.Equal(t, id, q.jobs[0].ID)
	assert.Equal(t, "app-1", q.jobs[0].Payload.ApplicationID)

	q.err = jobs.ErrQueueFull
	_, err = svc.Enqueue(ctx, "app-2", f.ngo.ID)
	assert.ErrorIs(t, err, appErrors.ErrUnavailable)
}

func TestCertificateQueueEndToEnd(t *testing.T) {
	f := newFixture(t)
	svc := newCertificateService(t, f, &fakeRenderer{}, time.Hour)
	app := f.approvedApplication(t)

	queue := jobs.NewQueue[CertificateJob](CertificateQueueName, svc.Process, jobs.QueueConfig{Workers: 1, BufferSize: 4, Logger: zap.NewNop()})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()
	svc.AttachQueue(queue)

	res, err := f.applications(svc).IssueCertificate(context.Background(), f.ngo.Principal(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, "queued", res.Status)

	require.Eventually(t, func() bool {
		stored, err := f.store.Applications().FindByID(context.Background(), app.ID)
		return err == nil && stored.CertificateIssued
	}, 2*time.Second, 10*time.Millisecond)
}
