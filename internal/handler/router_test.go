package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/repository/memory"
	"github.com/noah-isme/volunteer-hub-api/internal/service"
	"github.com/noah-isme/volunteer-hub-api/pkg/jobs"
	"github.com/noah-isme/volunteer-hub-api/pkg/middleware/ratelimit"
	"github.com/noah-isme/volunteer-hub-api/pkg/storage"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Pagination *models.Pagination `json:"pagination"`
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	store := memory.New()
	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	authSvc := service.NewAuthService(store.Users(), validate, logger, service.AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: time.Hour,
		Issuer:             "volunteer-hub-test",
	})
	profileSvc := service.NewProfileService(store.Users(), validate, logger)

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	certSvc := service.NewCertificateService(service.CertificateServiceDeps{
		Applications: store.Applications(),
		Events:       store.Events(),
		Users:        store.Users(),
		Store:        files,
		Signer:       storage.NewSigner("cert-secret", time.Hour),
		Metrics:      metrics,
		Logger:       logger,
		IssuerName:   "Volunteer Hub",
	})
	queue := jobs.NewQueue[service.CertificateJob](service.CertificateQueueName, certSvc.Process, jobs.QueueConfig{Workers: 1, BufferSize: 8, Logger: logger})
	ctx, cancel := context.WithCancel(context.Background())
	queue.Start(ctx)
	t.Cleanup(func() {
		cancel()
		queue.Stop()
	})
	certSvc.AttachQueue(queue)

	eventSvc := service.NewEventService(store.Events(), validate, logger, service.EventServiceDeps{Audit: store.Users(), Metrics: metrics})
	appSvc := service.NewApplicationService(store.Applications(), store.Events(), validate, logger, service.ApplicationServiceDeps{Certificates: certSvc, Audit: store.Users(), Metrics: metrics})
	donationSvc := service.NewDonationService(store.Donations(), store.Users(), validate, logger, service.DonationServiceDeps{Audit: store.Users(), Metrics: metrics})
	contactSvc := service.NewContactService(store.Contacts(), validate, logger)

	router := NewRouter(RouterDeps{
		Logger:       logger,
		Tokens:       authSvc,
		Limiter:      limiter,
		Metrics:      metrics,
		Audit:        store.Users(),
		Auth:         NewAuthHandler(authSvc, profileSvc),
		Profiles:     NewProfileHandler(profileSvc),
		Events:       NewEventHandler(eventSvc),
		Applications: NewApplicationHandler(appSvc),
		Certificates: NewCertificateHandler(certSvc),
		Donations:    NewDonationHandler(donationSvc),
		Contact:      NewContactHandler(contactSvc),
		Health:       NewMetricsHandler(metrics, nil, logger),
	})
	return &testServer{t: t, router: router, store: store}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:4000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) decode(w *httptest.ResponseRecorder, dst interface{}) envelope {
	s.t.Helper()
	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if dst != nil && len(env.Data) > 0 {
		require.NoError(s.t, json.Unmarshal(env.Data, dst))
	}
	return env
}

type account struct {
	ID    string
	Token string
}

// signUp registers a user over HTTP and logs in.
func (s *testServer) signUp(username, role string) account {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/users/", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "s3cure-password",
		"role":     role,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var profile struct {
		ID string `json:"id"`
	}
	s.decode(w, &profile)

	w = s.do(http.MethodPost, "/auth/jwt/create/", "", map[string]string{"username": username, "password": "s3cure-password"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	s.decode(w, &tokens)
	return account{ID: profile.ID, Token: tokens.AccessToken}
}

type eventBody struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsPublished bool   `json:"is_published"`
	NGO         string `json:"ngo"`
}

func (s *testServer) createEvent(owner account, title, date string, published bool) eventBody {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/events/", owner.Token, map[string]interface{}{
		"title":        title,
		"description":  "Join us for " + title,
		"date":         date,
		"start_time":   "09:00",
		"end_time":     "12:00",
		"location":     "Harbour front",
		"is_published": published,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var event eventBody
	s.decode(w, &event)
	return event
}

func (s *testServer) listEvents(token string) []eventBody {
	s.t.Helper()
	w := s.do(http.MethodGet, "/api/events/", token, nil)
	require.Equal(s.t, http.StatusOK, w.Code)
	var events []eventBody
	s.decode(w, &events)
	return events
}

func TestScenarioPublishFlowAndOrdering(t *testing.T) {
	s := newTestServer(t, nil)
	ngo := s.signUp("harbour-care", "ngo")
	volunteer := s.signUp("vera", "volunteer")

	e1 := s.createEvent(ngo, "Harbour cleanup", "2026-11-01", false)
	assert.Equal(t, ngo.ID, e1.NGO)
	assert.Empty(t, s.listEvents(""))
	assert.Empty(t, s.listEvents(volunteer.Token))

	w := s.do(http.MethodGet, "/api/events/"+e1.ID+"/", volunteer.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/api/events/"+e1.ID+"/", ngo.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPatch, "/api/events/"+e1.ID+"/", ngo.Token, map[string]bool{"is_published": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	events := s.listEvents("")
	require.Len(t, events, 1)
	assert.Equal(t, e1.ID, events[0].ID)

	e2 := s.createEvent(ngo, "Food bank shift", "2026-12-05", true)
	events = s.listEvents(volunteer.Token)
	require.Len(t, events, 2)
	assert.Equal(t, e2.ID, events[0].ID)
	assert.Equal(t, e1.ID, events[1].ID)

	w = s.do(http.MethodGet, "/api/events/mine/", volunteer.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodPost, "/api/events/", volunteer.Token, map[string]string{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestScenarioApplicationReview(t *testing.T) {
	s := newTestServer(t, nil)
	ngo := s.signUp("harbour-care", "ngo")
	otherNGO := s.signUp("green-earth", "ngo")
	volunteer := s.signUp("vera", "volunteer")
	corporate := s.signUp("acme", "corporate")
	event := s.createEvent(ngo, "Harbour cleanup", "2026-11-01", true)

	w := s.do(http.MethodPost, "/api/applications/", volunteer.Token, map[string]string{"event": event.ID, "message": "happy to help"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var app struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		Volunteer string `json:"volunteer"`
	}
	s.decode(w, &app)
	assert.Equal(t, "pending", app.Status)
	assert.Equal(t, volunteer.ID, app.Volunteer)

	w = s.do(http.MethodPost, "/api/applications/", volunteer.Token, map[string]string{"event": event.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/applications/", corporate.Token, map[string]string{"event": event.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPatch, "/api/applications/"+app.ID+"/", otherNGO.Token, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPatch, "/api/applications/"+app.ID+"/", ngo.Token, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/applications/", volunteer.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var apps []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	env := s.decode(w, &apps)
	require.Len(t, apps, 1)
	assert.Equal(t, "approved", apps[0].Status)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.TotalCount)

	w = s.do(http.MethodPatch, "/api/applications/"+app.ID+"/", ngo.Token, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestScenarioCertificateIssue(t *testing.T) {
	s := newTestServer(t, nil)
	ngo := s.signUp("harbour-care", "ngo")
	volunteer := s.signUp("vera", "volunteer")
	event := s.createEvent(ngo, "Harbour cleanup", "2026-11-01", true)

	w := s.do(http.MethodPost, "/api/applications/", volunteer.Token, map[string]string{"event": event.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var app struct {
		ID string `json:"id"`
	}
	s.decode(w, &app)

	w = s.do(http.MethodPost, "/api/applications/"+app.ID+"/certificate/", ngo.Token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPatch, "/api/applications/"+app.ID+"/", ngo.Token, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/applications/"+app.ID+"/certificate/", volunteer.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/applications/"+app.ID+"/certificate/", ngo.Token, nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var url string
	require.Eventually(t, func() bool {
		w := s.do(http.MethodGet, "/api/applications/"+app.ID+"/", volunteer.Token, nil)
		var got struct {
			CertificateIssued bool    `json:"certificate_issued"`
			CertificateURL    *string `json:"certificate_url"`
		}
		s.decode(w, &got)
		if got.CertificateIssued && got.CertificateURL != nil {
			url = *got.CertificateURL
			return true
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	w = s.do(http.MethodGet, url, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = s.do(http.MethodGet, "/api/certificates/not.a.real.token", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScenarioDonationTransactionConflict(t *testing.T) {
	s := newTestServer(t, nil)
	ngo := s.signUp("harbour-care", "ngo")
	corporate := s.signUp("acme", "corporate")

	payload := map[string]interface{}{"ngo": ngo.ID, "amount": "250.00", "transaction_id": "T1", "donor": ngo.ID}
	w := s.do(http.MethodPost, "/api/donations/", corporate.Token, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var donation struct {
		ID    string `json:"id"`
		Donor string `json:"donor"`
	}
	s.decode(w, &donation)
	assert.Equal(t, corporate.ID, donation.Donor)

	w = s.do(http.MethodPost, "/api/donations/", corporate.Token, payload)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/donations/", ngo.Token, map[string]interface{}{"ngo": ngo.ID, "amount": "5"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, "/api/donations/"+donation.ID+"/", corporate.Token, payload)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	env := s.decode(w, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, "METHOD_NOT_ALLOWED", env.Error.Code)

	w = s.do(http.MethodGet, "/api/donations/export/?format=csv", ngo.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "T1")
}

func TestRoleChangeDroppedOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	volunteer := s.signUp("vera", "volunteer")

	w := s.do(http.MethodPatch, "/api/profile/"+volunteer.ID+"/", volunteer.Token, map[string]string{"role": "ngo", "first_name": "Vera"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/auth/users/me/", volunteer.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Role      string `json:"role"`
		FirstName string `json:"first_name"`
	}
	s.decode(w, &me)
	assert.Equal(t, "volunteer", me.Role)
	assert.Equal(t, "Vera", me.FirstName)

	w = s.do(http.MethodDelete, "/api/profile/"+volunteer.ID+"/", volunteer.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRegistrationAndUsernameProbe(t *testing.T) {
	s := newTestServer(t, nil)
	s.signUp("Vera", "")

	w := s.do(http.MethodPost, "/auth/check_user/", "", map[string]string{"username": "vera"})
	require.Equal(t, http.StatusOK, w.Code)
	var probe struct {
		Username string `json:"username"`
		Exists   bool   `json:"exists"`
	}
	s.decode(w, &probe)
	assert.True(t, probe.Exists)

	w = s.do(http.MethodPost, "/auth/check_user/", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/auth/users/", "", map[string]string{
		"username": "mallory", "email": "m@example.com", "password": "s3cure-password", "role": "admin",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := s.decode(w, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid role", env.Error.Details["role"])

	w = s.do(http.MethodPost, "/auth/users/", "", map[string]string{
		"username": "VERA", "email": "v2@example.com", "password": "s3cure-password",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTokenLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	s.signUp("vera", "volunteer")

	w := s.do(http.MethodPost, "/auth/jwt/create/", "", map[string]string{"username": "vera", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/jwt/create/", "", map[string]string{"username": "vera", "password": "s3cure-password"})
	require.Equal(t, http.StatusOK, w.Code)
	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	s.decode(w, &pair)

	w = s.do(http.MethodPost, "/auth/jwt/verify/", "", map[string]string{"token": pair.AccessToken})
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/auth/jwt/verify/", "", map[string]string{"token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/jwt/refresh/", "", map[string]string{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/auth/jwt/refresh/", "", map[string]string{"refresh_token": pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/applications/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContactAndRateLimit(t *testing.T) {
	s := newTestServer(t, ratelimit.New(0.001, 1, nil))

	w := s.do(http.MethodPost, "/contact/", "", map[string]string{
		"name": "Sam", "email": "sam@example.com", "message": "Could we volunteer as a team?",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, s.store.ContactMessages(), 1)
	assert.Equal(t, "192.0.2.10", s.store.ContactMessages()[0].IPAddress)

	w = s.do(http.MethodPost, "/contact/", "", map[string]string{
		"name": "Sam", "email": "sam@example.com", "message": "Second message in a row",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/ready", "", nil).Code)

	w := s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	w = s.do(http.MethodGet, "/api/nowhere/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	env := s.decode(w, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
