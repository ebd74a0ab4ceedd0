package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/volunteer-hub-api/api/swagger"
	"github.com/noah-isme/volunteer-hub-api/internal/handler"
	"github.com/noah-isme/volunteer-hub-api/internal/repository"
	"github.com/noah-isme/volunteer-hub-api/internal/repository/memory"
	"github.com/noah-isme/volunteer-hub-api/internal/service"
	"github.com/noah-isme/volunteer-hub-api/pkg/cache"
	"github.com/noah-isme/volunteer-hub-api/pkg/config"
	"github.com/noah-isme/volunteer-hub-api/pkg/database"
	"github.com/noah-isme/volunteer-hub-api/pkg/jobs"
	"github.com/noah-isme/volunteer-hub-api/pkg/logger"
	"github.com/noah-isme/volunteer-hub-api/pkg/middleware/ratelimit"
	"github.com/noah-isme/volunteer-hub-api/pkg/storage"
)

// @title Volunteer Hub API
// @version 1.0.0
// @description Events, volunteer applications and donations for NGOs, volunteers and corporate donors.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.Pinger{}

	var stores repository.Stores
	switch cfg.Database.Driver {
	case "memory":
		logr.Warn("using in-memory store; data is lost on restart")
		stores = memory.New().Stores()
	default:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close()
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				logr.Fatal("failed to migrate database", zap.Error(err))
			}
		}
		stores = repository.NewPostgresStores(db)
		checks["database"] = repository.DBPinger{DB: db}
	}

	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	var eventCache *service.CacheService
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		cacheRepo := repository.NewCacheRepository(client, "events", logr)
		eventCache = service.NewCacheService(cacheRepo, metrics, cfg.Events.CacheTTL, logr, cfg.Events.CacheEnabled)
		checks["redis"] = cacheRepo
	}

	authSvc := service.NewAuthService(stores.Users, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	profileSvc := service.NewProfileService(stores.Users, validate, logr)

	files, err := storage.NewLocalStorage(cfg.Certificates.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare certificate storage", zap.Error(err))
	}
	certSvc := service.NewCertificateService(service.CertificateServiceDeps{
		Applications: stores.Applications,
		Events:       stores.Events,
		Users:        stores.Users,
		Store:        files,
		Signer:       storage.NewSigner(cfg.Certificates.SignedURLSecret, cfg.Certificates.SignedURLTTL),
		Metrics:      metrics,
		Logger:       logr,
		IssuerName:   cfg.Certificates.IssuerName,
	})
	certQueue := jobs.NewQueue[service.CertificateJob](service.CertificateQueueName, certSvc.Process, jobs.QueueConfig{
		Workers:    cfg.Certificates.Workers,
		MaxRetries: cfg.Certificates.Retries,
		Logger:     logr,
	})
	certQueue.Start(ctx)
	certSvc.AttachQueue(certQueue)

	eventSvc := service.NewEventService(stores.Events, validate, logr, service.EventServiceDeps{
		Cache:   eventCache,
		Audit:   stores.Users,
		Metrics: metrics,
	})
	appSvc := service.NewApplicationService(stores.Applications, stores.Events, validate, logr, service.ApplicationServiceDeps{
		Certificates: certSvc,
		Audit:        stores.Users,
		Metrics:      metrics,
	})
	donationSvc := service.NewDonationService(stores.Donations, stores.Users, validate, logr, service.DonationServiceDeps{
		Audit:   stores.Users,
		Metrics: metrics,
	})
	contactSvc := service.NewContactService(stores.Contacts, validate, logr)

	limiter := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logr)
	go limiter.Run(ctx, cfg.RateLimit.SweepInterval)

	r := handler.NewRouter(handler.RouterDeps{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logr,
		Tokens:         authSvc,
		Limiter:        limiter,
		Metrics:        metrics,
		Audit:          stores.Users,
		Auth:           handler.NewAuthHandler(authSvc, profileSvc),
		Profiles:       handler.NewProfileHandler(profileSvc),
		Events:         handler.NewEventHandler(eventSvc),
		Applications:   handler.NewApplicationHandler(appSvc),
		Certificates:   handler.NewCertificateHandler(certSvc),
		Donations:      handler.NewDonationHandler(donationSvc),
		Contact:        handler.NewContactHandler(contactSvc),
		Health:         handler.NewMetricsHandler(metrics, checks, logr),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "db_driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	certQueue.Stop()
}
