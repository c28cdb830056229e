package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/efile-routing-api/api/swagger"
	"github.com/noah-isme/efile-routing-api/internal/handler"
	"github.com/noah-isme/efile-routing-api/internal/middleware"
	"github.com/noah-isme/efile-routing-api/internal/models"
	"github.com/noah-isme/efile-routing-api/internal/notifier"
	"github.com/noah-isme/efile-routing-api/internal/repository"
	"github.com/noah-isme/efile-routing-api/internal/service"
	"github.com/noah-isme/efile-routing-api/pkg/cache"
	"github.com/noah-isme/efile-routing-api/pkg/config"
	"github.com/noah-isme/efile-routing-api/pkg/database"
	"github.com/noah-isme/efile-routing-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/efile-routing-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/efile-routing-api/pkg/middleware/requestid"
)

// @title E-File Routing API
// @version 1.0.0
// @description File routing, workflow state and custody ledger for government case files
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, reference caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Repositories.
	refCache := repository.NewReferenceCache(redisClient, cfg.SLA.CacheTTL)
	userRepo := repository.NewUserRepository(db)
	personRepo := repository.NewPersonRepository(db)
	fileRepo := repository.NewFileRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	roleLocationRepo := repository.NewRoleLocationRepository(db, refCache)
	slaRepo := repository.NewSLARepository(db, refCache)
	matrixRepo := repository.NewMatrixRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	authSvc := service.NewAuthService(userRepo, validate, cfg.JWT, logr)
	geographySvc := service.NewGeographyService(roleLocationRepo, personRepo, logr)
	geoValidator := service.NewGeoValidator(geographySvc)
	eligibilitySvc := service.NewEligibilityService(matrixRepo, personRepo, geographySvc, logr)
	slaSvc := service.NewSLAService(slaRepo, cfg.SLA, logr)

	webhook := notifier.NewWebhookNotifier(cfg.Notifications, logr)
	notificationSvc := service.NewNotificationService(webhook, metricsSvc, cfg.Notifications, logr)

	markingSvc := service.NewMarkingService(
		db,
		fileRepo,
		workflowRepo,
		movementRepo,
		personRepo,
		permissionRepo,
		eligibilitySvc,
		geographySvc,
		geoValidator,
		slaSvc,
		notificationSvc,
		userRepo,
		validate,
		metricsSvc,
		logr,
	)
	movementSvc := service.NewMovementService(movementRepo, fileRepo, cfg.Exports, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	markingHandler := handler.NewMarkingHandler(markingSvc)
	movementHandler := handler.NewMovementHandler(movementSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(rootCtx)
	defer notificationSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

		files := api.Group("/files")
		files.Use(middleware.JWT(authSvc))
		files.Use(middleware.RequireRoles(models.RoleSystemAdmin, models.RoleEfilingUser))
		files.GET("/:id/recipients", markingHandler.Recipients)
		files.POST("/:id/mark", markingHandler.Mark)
		files.GET("/:id/movements", movementHandler.List)
		files.GET("/:id/movements/export",
			middleware.Audit(userRepo, models.AuditActionExport, "case_file"),
			movementHandler.Export)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
