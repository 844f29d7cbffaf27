package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campuskit/scts-api/api/swagger"
	"github.com/campuskit/scts-api/internal/handler"
	"github.com/campuskit/scts-api/internal/middleware"
	"github.com/campuskit/scts-api/internal/repository"
	"github.com/campuskit/scts-api/internal/service"
	"github.com/campuskit/scts-api/pkg/cache"
	"github.com/campuskit/scts-api/pkg/config"
	"github.com/campuskit/scts-api/pkg/database"
	"github.com/campuskit/scts-api/pkg/logger"
	corsmiddleware "github.com/campuskit/scts-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campuskit/scts-api/pkg/middleware/requestid"
)

// @title SCTS API
// @version 1.0.0
// @description Smart College Timetable Scheduler
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

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
			redisClient = nil
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	facultyRepo := repository.NewFacultyRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	if cfg.Engine.SeedDefaultSlots {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := slotRepo.EnsureDefaults(ctx); err != nil {
			cancel()
			logr.Sugar().Fatalw("failed to seed slot grid", "error", err)
		}
		cancel()
	}

	facultySvc := service.NewFacultyService(facultyRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	batchSvc := service.NewBatchService(batchRepo, subjectRepo, validate, logr)
	timetableSvc := service.NewTimetableService(facultyRepo, subjectRepo, roomRepo, batchRepo, slotRepo, scheduleRepo, db, metricsSvc, logr)
	bookingSvc := service.NewBookingService(scheduleRepo, slotRepo, subjectRepo, facultyRepo, roomRepo, batchRepo, validate, logr)

	var dashboardSvc *service.DashboardService
	if cfg.Dashboard.Enabled {
		dashboardSvc = service.NewDashboardService(scheduleRepo, facultyRepo, subjectRepo, roomRepo, slotRepo, cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr)
	}
	exportSvc := service.NewExportService(scheduleRepo, facultyRepo, subjectRepo, roomRepo, batchRepo, slotRepo, nil, nil, logr)

	facultyHandler := handler.NewFacultyHandler(facultySvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	batchHandler := handler.NewBatchHandler(batchSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, exportSvc, dashboardSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, metricsSvc, dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

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

	api := r.Group("/api/v1")
	{
		api.GET("/faculty", facultyHandler.List)
		api.POST("/faculty", facultyHandler.Create)
		api.GET("/faculty/:id", facultyHandler.Get)
		api.PUT("/faculty/:id", facultyHandler.Update)
		api.DELETE("/faculty/:id", facultyHandler.Delete)

		api.GET("/subjects", subjectHandler.List)
		api.POST("/subjects", subjectHandler.Create)
		api.GET("/subjects/:id", subjectHandler.Get)
		api.PUT("/subjects/:id", subjectHandler.Update)
		api.DELETE("/subjects/:id", subjectHandler.Delete)

		api.GET("/rooms", roomHandler.List)
		api.POST("/rooms", roomHandler.Create)
		api.GET("/rooms/:id", roomHandler.Get)
		api.PUT("/rooms/:id", roomHandler.Update)
		api.DELETE("/rooms/:id", roomHandler.Delete)

		api.GET("/batches", batchHandler.List)
		api.POST("/batches", batchHandler.Create)
		api.GET("/batches/:id", batchHandler.Get)
		api.PUT("/batches/:id", batchHandler.Update)
		api.DELETE("/batches/:id", batchHandler.Delete)

		api.GET("/slots", timetableHandler.Slots)

		api.GET("/timetable", timetableHandler.List)
		api.DELETE("/timetable", timetableHandler.Clear)
		api.POST("/timetable/generate", timetableHandler.Generate)
		api.GET("/timetable/export", timetableHandler.Export)
		api.POST("/timetable/entries", bookingHandler.Create)

		if dashboardSvc != nil {
			dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
			api.GET("/dashboard/stats", dashboardHandler.Stats)
		}

		if cfg.Insights.Enabled {
			if dashboardSvc == nil {
				logr.Warn("insights enabled without dashboard, skipping insights routes")
			} else {
				insightsSvc := service.NewInsightsService(cfg.Insights, dashboardSvc, validate, logr)
				insightsHandler := handler.NewInsightsHandler(insightsSvc)
				api.POST("/insights", insightsHandler.Ask)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
