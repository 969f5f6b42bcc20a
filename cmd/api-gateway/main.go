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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campuskit/faculty-admin-api/api/swagger"
	"github.com/campuskit/faculty-admin-api/internal/handler"
	"github.com/campuskit/faculty-admin-api/internal/middleware"
	"github.com/campuskit/faculty-admin-api/internal/models"
	"github.com/campuskit/faculty-admin-api/internal/repository"
	"github.com/campuskit/faculty-admin-api/internal/service"
	"github.com/campuskit/faculty-admin-api/internal/validation"
	"github.com/campuskit/faculty-admin-api/pkg/cache"
	"github.com/campuskit/faculty-admin-api/pkg/config"
	"github.com/campuskit/faculty-admin-api/pkg/database"
	"github.com/campuskit/faculty-admin-api/pkg/jobs"
	"github.com/campuskit/faculty-admin-api/pkg/logger"
	corsmiddleware "github.com/campuskit/faculty-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campuskit/faculty-admin-api/pkg/middleware/requestid"
	"github.com/campuskit/faculty-admin-api/pkg/storage"
)

// @title Faculty Admin API
// @version 1.0.0
// @description Faculty administration, work-log validation and billing service
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	// repositories
	userRepo := repository.NewUserRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	workLogRepo := repository.NewWorkLogRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// services
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.Enabled)

	authSvc := service.NewAuthService(userRepo, facultyRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "faculty-admin-api",
		SingleSession:      true,
	})
	facultySvc := service.NewFacultyService(facultyRepo, userRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)

	engine := validation.NewValidator(validation.Policy{
		MaxSessionHours:    cfg.Validation.MaxSessionHours,
		DayHoursHigh:       cfg.Validation.DayHoursHigh,
		DayHoursMedium:     cfg.Validation.DayHoursMedium,
		RepeatedPatternMin: cfg.Validation.RepeatedPatternMin,
		ConsecutiveRunMin:  cfg.Validation.ConsecutiveRunMin,
		AnomalyMinSamples:  cfg.Validation.AnomalyMinSamples,
		IQRMultiplier:      cfg.Validation.IQRMultiplier,
	})
	workLogSvc := service.NewWorkLogService(workLogRepo, engine, validate, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, validate, logr)
	billingSvc := service.NewBillingService(billingRepo, facultyRepo, workLogRepo, validate, logr)
	analyticsSvc := service.NewAnalyticsService(billingRepo, cacheSvc, cfg.Analytics.CacheTTL, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reportSvc *service.ReportService
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportSvc := service.NewExportService(billingRepo, workLogRepo, analyticsSvc, store, logr)
		worker := service.NewReportWorker(reportRepo, exportSvc, logr)

		queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(rootCtx)
		defer queue.Stop()

		reportSvc = service.NewReportService(reportRepo, queue, store, signer, validate, logr, service.ReportServiceConfig{
			DownloadPath: cfg.APIPrefix + "/reports/download",
		})
		reportSvc.RecoverPendingJobs(rootCtx)
		reportSvc.StartCleanup(rootCtx)
	}

	// handlers
	authHandler := handler.NewAuthHandler(authSvc)
	facultyHandler := handler.NewFacultyHandler(facultySvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	workLogHandler := handler.NewWorkLogHandler(workLogSvc, metricsSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, metricsSvc)
	billingHandler := handler.NewBillingHandler(billingSvc, analyticsSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	authed := auth.Group("", middleware.JWT(authSvc))
	authed.POST("/logout", authHandler.Logout)
	authed.POST("/change-password", authHandler.ChangePassword)
	authed.GET("/me", authHandler.Me)

	protected := api.Group("", middleware.JWT(authSvc))
	admin := middleware.RequireRoles(models.RoleAdmin)
	adminOrSelf := middleware.RBAC(string(models.RoleAdmin), "SELF")
	anyStaff := middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty)

	faculties := protected.Group("/faculties")
	faculties.GET("", admin, facultyHandler.List)
	faculties.GET("/me", anyStaff, facultyHandler.Me)
	faculties.GET("/:id", adminOrSelf, facultyHandler.Get)
	faculties.POST("", admin, facultyHandler.Create)
	faculties.PUT("/:id", admin, facultyHandler.Update)
	faculties.DELETE("/:id", admin, facultyHandler.Delete)
	faculties.GET("/:id/subjects", adminOrSelf, subjectHandler.ListAssignments)
	faculties.POST("/:id/subjects", admin, subjectHandler.Assign)
	faculties.DELETE("/:id/subjects/:assignmentId", admin, subjectHandler.Unassign)

	subjects := protected.Group("/subjects")
	subjects.GET("", anyStaff, subjectHandler.List)
	subjects.GET("/:id", anyStaff, subjectHandler.Get)
	subjects.POST("", admin, subjectHandler.Create)
	subjects.PUT("/:id", admin, subjectHandler.Update)
	subjects.DELETE("/:id", admin, subjectHandler.Delete)

	semesters := protected.Group("/semesters")
	semesters.GET("", anyStaff, subjectHandler.ListSemesters)
	semesters.POST("", admin, subjectHandler.CreateSemester)

	workLogs := protected.Group("/work-logs")
	workLogs.GET("", anyStaff, workLogHandler.List)
	workLogs.GET("/:id", anyStaff, workLogHandler.Get)
	workLogs.POST("", anyStaff, workLogHandler.Create)
	workLogs.PUT("/:id", anyStaff, workLogHandler.Update)
	workLogs.DELETE("/:id", anyStaff, workLogHandler.Delete)
	workLogs.POST("/validate", anyStaff, workLogHandler.Validate)

	timetable := protected.Group("/timetable")
	timetable.GET("", anyStaff, timetableHandler.List)
	timetable.GET("/:id", anyStaff, timetableHandler.Get)
	timetable.POST("", admin, timetableHandler.Create)
	timetable.PUT("/:id", admin, timetableHandler.Update)
	timetable.DELETE("/:id", admin, timetableHandler.Delete)
	timetable.POST("/conflict-check", anyStaff, timetableHandler.CheckConflict)

	billing := protected.Group("/billing")
	billing.GET("", anyStaff, billingHandler.List)
	billing.GET("/:id", anyStaff, billingHandler.Get)
	billing.POST("/generate", admin, billingHandler.Generate)
	billing.PUT("/:id", admin, billingHandler.Update)
	billing.DELETE("/:id", admin, billingHandler.Delete)

	if cfg.Analytics.Enabled {
		analytics := protected.Group("/analytics", admin)
		analytics.GET("/workload", analyticsHandler.Workload)
		analytics.GET("/salary-trend", analyticsHandler.SalaryTrend)
		analytics.GET("/departments", analyticsHandler.DepartmentComparison)
	}

	protected.GET("/metrics/summary", admin, metricsHandler.Snapshot)

	if reportSvc != nil {
		reportHandler := handler.NewReportHandler(reportSvc)
		api.GET("/reports/download", reportHandler.Download)
		reports := protected.Group("/reports")
		reports.POST("", anyStaff, reportHandler.Create)
		reports.GET("/:id", anyStaff, reportHandler.Status)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
