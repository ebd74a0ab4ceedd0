package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/service"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

var tokens = stubValidator{
	"ngo":       {UserID: "u-ngo", Username: "helping-hands", Role: models.RoleNGO},
	"volunteer": {UserID: "u-vol", Username: "vera", Role: models.RoleVolunteer},
	"admin":     {UserID: "u-admin", Username: "root", Role: models.RoleVolunteer, IsAdmin: true},
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRequiresValidBearer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var seen *models.Principal
	r.GET("/me", JWT(tokens), func(c *gin.Context) {
		seen = CurrentPrincipal(c)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "bogus").Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token ngo")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", "ngo")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u-ngo", seen.UserID)
	assert.Equal(t, models.RoleNGO, seen.Role)
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var seen *models.Principal
	r.GET("/events", OptionalJWT(tokens), func(c *gin.Context) {
		seen = CurrentPrincipal(c)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/events", "bogus").Code)
	assert.Nil(t, seen)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/events", "volunteer").Code)
	require.NotNil(t, seen)
	assert.Equal(t, "vera", seen.Username)
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/mine", JWT(tokens), RequireRoles(models.RoleNGO), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.DELETE("/profile/:id", JWT(tokens), RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/profile/:id", JWT(tokens), RBAC("SELF", "ADMIN"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/mine", "ngo").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/mine", "volunteer").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodDelete, "/profile/u-vol", "volunteer").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/profile/u-vol", "admin").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/profile/u-vol", "volunteer").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/profile/u-ngo", "volunteer").Code)
}

func TestRBACWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/mine", RequireRoles(models.RoleNGO), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/mine", "").Code)
}

func TestRequestMetaReachesServices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var meta service.RequestMeta
	r.GET("/", RequestMeta(), func(c *gin.Context) {
		meta = service.RequestMetaFrom(c.Request.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:5555"
	req.Header.Set("User-Agent", "volunteer-app/1.0")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "198.51.100.7", meta.IP)
	assert.Equal(t, "volunteer-app/1.0", meta.UserAgent)
}

type auditSink struct{ logs []models.AuditLog }

func (s *auditSink) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, *log)
	return nil
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sink := &auditSink{}
	r := gin.New()
	r.GET("/certificates/:token", OptionalJWT(tokens), Audit(sink, models.AuditActionCertificateFetch, "certificate"), func(c *gin.Context) {
		if c.Param("token") == "missing" {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodGet, "/certificates/missing", "")
	serve(r, http.MethodGet, "/certificates/abc", "volunteer")

	require.Len(t, sink.logs, 1)
	entry := sink.logs[0]
	assert.Equal(t, models.AuditActionCertificateFetch, entry.Action)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "abc", *entry.ResourceID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-vol", *entry.UserID)
}

func TestMetricsObservesRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/health", "")
	serve(r, http.MethodGet, "/nowhere", "")

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	paths := map[string]bool{}
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "path" {
					paths[label.GetValue()] = true
				}
			}
		}
	}
	assert.True(t, paths["/health"])
	assert.True(t, paths["unmatched"])
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/events", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodGet, "/events", "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestLogFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, LogFields(c))

	c.Set(ContextUserKey, tokens["ngo"])
	fields := LogFields(c)
	require.Len(t, fields, 2)
	assert.Equal(t, "user_id", fields[0].Key)
	assert.Equal(t, "u-ngo", fields[0].String)
}
