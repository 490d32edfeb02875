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

	_ "github.com/LnD-Brainstaiton/ld-training-api/api/swagger"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/handler"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/middleware"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/repository"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/service"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/cache"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/config"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/database"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/jobs"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/logger"
	corsmiddleware "github.com/LnD-Brainstaiton/ld-training-api/pkg/middleware/cors"
	reqidmiddleware "github.com/LnD-Brainstaiton/ld-training-api/pkg/middleware/requestid"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/storage"
)

// @title L&D Training API
// @version 1.0.0
// @description Backend for the employee training administration dashboard
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	metricsService := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, redisClient != nil)
	defer cacheRepo.Close() //nolint:errcheck

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	mentorRepo := repository.NewMentorRepository(db)
	reportRepo := repository.NewReportRepository(db)

	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:             cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "ld-training-api",
	})
	courseService := service.NewCourseService(courseRepo, cacheService, nil, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, studentRepo, cacheService,
		service.EnrollmentPolicy{AnnualLimit: cfg.Policy.AnnualEnrollmentLimit}, nil, logr)
	studentService := service.NewStudentService(studentRepo, enrollmentRepo, nil, logr)
	mentorService := service.NewMentorService(mentorRepo, courseRepo, nil, logr)
	dashboardService := service.NewDashboardService(service.DashboardServiceParams{
		Courses:     courseRepo,
		Enrollments: enrollmentRepo,
		Assignments: mentorRepo,
		Students:    studentRepo,
		Cache:       cacheService,
		Logger:      logr,
		Config:      service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	fileStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportService := service.NewExportService(courseRepo, enrollmentRepo, mentorRepo, fileStore, signer,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.SignedURLTTL}, logr, nil, nil)

	reportWorker := service.NewReportWorker(reportRepo, exportService, cfg.Reports.WorkerRetries, logr)
	reportQueue := jobs.NewQueue("reports", reportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	reportService := service.NewReportService(reportRepo, reportQueue, exportService, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
		MaxRetries:      cfg.Reports.WorkerRetries,
	})

	lmsClient := service.NewHTTPLMSClient(service.LMSClientConfig{
		BaseURL:  cfg.LMS.BaseURL,
		APIToken: cfg.LMS.APIToken,
		PageSize: cfg.LMS.PageSize,
		Timeout:  cfg.LMS.Timeout,
	}, logr)
	lmsService := service.NewLMSSyncService(lmsClient, courseRepo, enrollmentRepo, studentRepo, cacheService, logr)

	if cfg.Reports.Enabled {
		reportQueue.Start(ctx)
		defer reportQueue.Stop()
		reportService.RecoverPendingJobs(ctx)
		reportService.StartCleanup(ctx)
	}
	if cfg.LMS.Enabled {
		lmsService.Start(ctx, cfg.LMS.SyncInterval)
	}

	authHandler := handler.NewAuthHandler(authService)
	courseHandler := handler.NewCourseHandler(courseService, enrollmentService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	studentHandler := handler.NewStudentHandler(studentService)
	mentorHandler := handler.NewMentorHandler(mentorService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	reportHandler := handler.NewReportHandler(reportService)
	lmsHandler := handler.NewLMSHandler(lmsService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)

	// Download links are authorized by their signed token, not by a session.
	api.GET("/export/:token", reportHandler.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	staff := protected.Group("")
	staff.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator))

	if cfg.Dashboard.Enabled {
		staff.GET("/dashboard", dashboardHandler.Summary)
	}

	protected.GET("/courses", courseHandler.List)
	protected.GET("/courses/overview", courseHandler.Overview)
	protected.GET("/courses/:id", courseHandler.Get)
	protected.GET("/courses/:id/enrollments", courseHandler.Buckets)
	protected.GET("/courses/:id/completion", courseHandler.Completion)
	protected.GET("/courses/:id/assignment-discrepancy", mentorHandler.Discrepancy)
	staff.POST("/courses", courseHandler.Create)
	staff.PUT("/courses/:id", courseHandler.Update)
	staff.DELETE("/courses/:id", courseHandler.Delete)

	protected.GET("/students", studentHandler.List)
	protected.GET("/students/:id", studentHandler.Get)
	protected.GET("/students/:id/history", studentHandler.History)
	staff.POST("/students", studentHandler.Create)
	staff.PUT("/students/:id", studentHandler.Update)
	staff.DELETE("/students/:id", studentHandler.Deactivate)

	protected.GET("/enrollments", enrollmentHandler.List)
	staff.POST("/enrollments", enrollmentHandler.Create)
	staff.POST("/enrollments/:id/approve", enrollmentHandler.Approve)
	staff.POST("/enrollments/:id/reject", enrollmentHandler.Reject)
	staff.POST("/enrollments/:id/withdraw", enrollmentHandler.Withdraw)
	staff.POST("/enrollments/:id/completion", enrollmentHandler.RecordCompletion)

	protected.GET("/mentors", mentorHandler.List)
	protected.GET("/assignments", mentorHandler.ListAssignments)
	staff.POST("/mentors", mentorHandler.Create)
	staff.POST("/assignments", mentorHandler.Draft)
	staff.PUT("/assignments/:id", mentorHandler.Revise)
	admin := protected.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/assignments/:id/approve", mentorHandler.Approve)

	if cfg.Reports.Enabled {
		staff.POST("/reports/generate", reportHandler.Generate)
		staff.GET("/reports/:id", reportHandler.Status)
	}

	admin.POST("/lms/sync", lmsHandler.Trigger)
	admin.GET("/lms/sync/status", lmsHandler.Status)
	admin.GET("/system/metrics", metricsHandler.Snapshot)

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

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
