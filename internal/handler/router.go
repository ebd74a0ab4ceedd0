package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/middleware"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/service"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/volunteer-hub-api/pkg/middleware/cors"
	"github.com/noah-isme/volunteer-hub-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/volunteer-hub-api/pkg/middleware/requestid"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	APIPrefix      string
	AllowedOrigins []string
	Logger         *zap.Logger
	Tokens         middleware.TokenValidator
	Limiter        *ratelimit.Limiter
	Metrics        *service.MetricsService
	Audit          middleware.AuditWriter

	Auth         *AuthHandler
	Profiles     *ProfileHandler
	Events       *EventHandler
	Applications *ApplicationHandler
	Certificates *CertificateHandler
	Donations    *DonationHandler
	Contact      *ContactHandler
	Health       *MetricsHandler
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.APIPrefix == "" {
		deps.APIPrefix = "/api"
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger, middleware.LogFields))
	r.Use(corsmiddleware.New(deps.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.RequestMeta())
	r.Use(middleware.WithResponseMeta())

	r.NoRoute(func(c *gin.Context) { response.Error(c, appErrors.ErrNotFound) })
	r.NoMethod(func(c *gin.Context) { response.Error(c, appErrors.ErrMethodNotAllowed) })

	r.GET("/health", deps.Health.Health)
	r.GET("/ready", deps.Health.Ready)
	r.GET("/metrics", deps.Health.Prometheus)

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if deps.Limiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{deps.Limiter.Middleware(), h}
	}
	authRequired := middleware.JWT(deps.Tokens)

	auth := r.Group("/auth")
	{
		auth.POST("/users/", limited(deps.Auth.Register)...)
		auth.GET("/users/me/", authRequired, deps.Auth.Me)
		auth.POST("/check_user/", limited(deps.Auth.CheckUser)...)
		auth.POST("/jwt/create/", limited(deps.Auth.Login)...)
		auth.POST("/jwt/refresh/", deps.Auth.Refresh)
		auth.POST("/jwt/verify/", deps.Auth.Verify)
		auth.POST("/logout/", authRequired, deps.Auth.Logout)
	}
	r.POST("/contact/", limited(deps.Contact.Submit)...)

	api := r.Group(deps.APIPrefix)

	events := api.Group("/events")
	{
		events.GET("/", deps.Events.List)
		events.GET("/mine/", authRequired, middleware.RequireRoles(models.RoleNGO), deps.Events.Mine)
		events.GET("/:id/", middleware.OptionalJWT(deps.Tokens), deps.Events.Get)
		events.POST("/", authRequired, deps.Events.Create)
		events.PUT("/:id/", authRequired, deps.Events.Update)
		events.PATCH("/:id/", authRequired, deps.Events.Patch)
		events.DELETE("/:id/", authRequired, deps.Events.Delete)
	}

	applications := api.Group("/applications", authRequired)
	{
		applications.GET("/", deps.Applications.List)
		applications.POST("/", deps.Applications.Create)
		applications.GET("/:id/", deps.Applications.Get)
		applications.PUT("/:id/", deps.Applications.UpdateStatus)
		applications.PATCH("/:id/", deps.Applications.UpdateStatus)
		applications.DELETE("/:id/", deps.Applications.Withdraw)
		applications.POST("/:id/certificate/", middleware.RequireRoles(models.RoleNGO), deps.Applications.IssueCertificate)
	}

	certificateChain := []gin.HandlerFunc{middleware.OptionalJWT(deps.Tokens)}
	if deps.Audit != nil {
		certificateChain = append(certificateChain, middleware.Audit(deps.Audit, models.AuditActionCertificateFetch, "certificate"))
	}
	api.GET("/certificates/:token", append(certificateChain, deps.Certificates.Download)...)

	donations := api.Group("/donations", authRequired)
	{
		donations.GET("/", deps.Donations.List)
		donations.POST("/", deps.Donations.Create)
		donations.GET("/export/", deps.Donations.Export)
		donations.GET("/:id/", deps.Donations.Get)
	}

	profile := api.Group("/profile", authRequired)
	{
		profile.GET("/", deps.Profiles.List)
		profile.GET("/:id/", deps.Profiles.Get)
		profile.PUT("/:id/", deps.Profiles.Update)
		profile.PATCH("/:id/", deps.Profiles.Patch)
		profile.DELETE("/:id/", middleware.RequireAdmin(), deps.Profiles.Delete)
	}

	return r
}
