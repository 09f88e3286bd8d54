package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/trahulprabhu38/obe-analytics-api/api/swagger"
	"github.com/trahulprabhu38/obe-analytics-api/internal/handler"
	"github.com/trahulprabhu38/obe-analytics-api/internal/middleware"
	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
	"github.com/trahulprabhu38/obe-analytics-api/internal/repository"
	"github.com/trahulprabhu38/obe-analytics-api/internal/service"
	"github.com/trahulprabhu38/obe-analytics-api/pkg/cache"
	"github.com/trahulprabhu38/obe-analytics-api/pkg/config"
	"github.com/trahulprabhu38/obe-analytics-api/pkg/database"
	"github.com/trahulprabhu38/obe-analytics-api/pkg/logger"
	corsmiddleware "github.com/trahulprabhu38/obe-analytics-api/pkg/middleware/cors"
	reqidmiddleware "github.com/trahulprabhu38/obe-analytics-api/pkg/middleware/requestid"
)

// @title OBE Analytics API
// @version 1.0.0
// @description Outcome-based education attainment analytics pipeline
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
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	store := repository.NewStore(db)

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Attainment.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
			cacheSvc = service.NewCacheService(nil, metricsSvc, 0, logr, false)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Attainment.SummaryCacheTTL, logr, true)
		}
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, 0, logr, false)
	}

	pipelineRepos := func(s *repository.Store) service.PipelineRepos {
		return service.PipelineRepos{
			Outcomes:    s.Outcomes,
			Assessments: s.Assessments,
			Scores:      s.Scores,
			COScores:    s.COScores,
			Attainments: s.Attainments,
			Overall:     s.OverallScores,
			Configs:     s.Configs,
		}
	}
	runTx := func(ctx context.Context, courseID string, fn func(service.PipelineRepos) error) error {
		return store.RunInCourseTx(ctx, courseID, func(scoped *repository.Store) error {
			return fn(pipelineRepos(scoped))
		})
	}

	attainmentSvc := service.NewAttainmentService(service.AttainmentServiceParams{
		Repos:            pipelineRepos(store),
		TxRunner:         runTx,
		Cache:            cacheSvc,
		Metrics:          metricsSvc,
		Logger:           logr,
		DefaultThreshold: cfg.Attainment.DefaultThreshold,
	})
	ingestSvc := service.NewIngestService(store.Scores, store.Assessments, nil, logr)
	configSvc := service.NewCourseConfigService(store.Configs, nil, logr)
	gpaSvc := service.NewGPAService(store.Semesters, nil, logr)
	reportSvc := service.NewReportService(store.Attainments, store.OverallScores, cacheSvc, cfg.Reports.InstitutionName, logr)
	authSvc := service.NewAuthService(store.Users, cfg.JWT, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	scoreHandler := handler.NewScoreHandler(ingestSvc)
	attainmentHandler := handler.NewAttainmentHandler(attainmentSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	configHandler := handler.NewConfigHandler(configSvc)
	gpaHandler := handler.NewGPAHandler(gpaSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

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
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	courses := authed.Group("/courses/:courseId")
	{
		courses.POST("/assessments/:assessmentId/scores", staff, scoreHandler.Ingest)
		courses.POST("/assessments/:assessmentId/co-scores", staff, attainmentHandler.CalculateCOScores)
		courses.POST("/assessments/:assessmentId/co-attainment", staff, attainmentHandler.CalculateCOAttainment)
		courses.POST("/final-co-attainment", staff, attainmentHandler.CalculateFinalCOAttainment)
		courses.POST("/po-attainment", staff, attainmentHandler.CalculatePOAttainment)
		courses.POST("/overall-scores", staff, attainmentHandler.CalculateOverallScores)
		courses.POST("/calculate", staff, attainmentHandler.RunFullCalculation)

		courses.GET("/attainment", reportHandler.Summary)
		courses.GET("/cos/:coId/trend", reportHandler.COTrend)
		courses.GET("/attainment/export", staff, reportHandler.ExportAttainment)
		courses.GET("/grades/export", staff, reportHandler.ExportGradeSheet)

		courses.GET("/config", staff, configHandler.Get)
		courses.PUT("/config", middleware.RequireRoles(models.RoleAdmin), configHandler.Update)
	}

	semester := authed.Group("/semester", staff)
	{
		semester.POST("/subjects", gpaHandler.RegisterSubject)
		semester.POST("/sgpa", gpaHandler.CalculateSGPA)
		semester.POST("/cgpa/recalculate", middleware.RequireRoles(models.RoleAdmin), gpaHandler.RecalculateAll)
	}

	students := authed.Group("/students/:usn")
	{
		students.POST("/cgpa", staff, gpaHandler.CalculateCGPA)
		students.GET("/rank", middleware.RequireRolesOrSelf(models.RoleAdmin, models.RoleTeacher), gpaHandler.Rank)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
