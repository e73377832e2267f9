package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/edufy-app/roster-api/api/swagger"
	"github.com/edufy-app/roster-api/internal/handler"
	internalmiddleware "github.com/edufy-app/roster-api/internal/middleware"
	"github.com/edufy-app/roster-api/internal/models"
	"github.com/edufy-app/roster-api/internal/repository"
	"github.com/edufy-app/roster-api/internal/service"
	"github.com/edufy-app/roster-api/pkg/cache"
	"github.com/edufy-app/roster-api/pkg/config"
	"github.com/edufy-app/roster-api/pkg/database"
	"github.com/edufy-app/roster-api/pkg/logger"
	corsmiddleware "github.com/edufy-app/roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edufy-app/roster-api/pkg/middleware/requestid"
)

// @title Edufy Roster API
// @version 1.0.0
// @description Scheduling and roster backend for the Edufy tutoring platform
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

	metrics := service.NewMetricsService()

	var userRepo *repository.UserRepository
	var schedRepo *repository.ScheduleRepository
	if cfg.Database.Configured() {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close() //nolint:errcheck
		userRepo = repository.NewUserRepository(db)
		schedRepo = repository.NewScheduleRepository(db)
	} else {
		logr.Warn("remote database not configured; falling back to local store")
	}

	local, err := repository.OpenLocalStore(afero.NewOsFs(), cfg.Backend.LocalDataDir, logr)
	if err != nil {
		logr.Fatal("failed to open local store", zap.Error(err))
	}

	backend := repository.NewBackend(cfg, userRepo, schedRepo, local, metrics, logr)

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close() //nolint:errcheck
	sessionRepo := repository.NewSessionRepository(redisClient, cfg.Session.KeyPrefix)

	validate := validator.New()

	authService := service.NewAuthService(sessionRepo, logr, service.AuthConfig{TokenSecret: cfg.Session.TokenSecret})
	flows := service.NewFlowFactory(backend, authService, logr)
	userService := service.NewUserService(backend, validate, logr)
	scheduleService := service.NewScheduleService(backend, logr)

	authHandler := handler.NewAuthHandler(flows, authService, validate)
	userHandler := handler.NewUserHandler(userService)
	scheduleHandler := handler.NewScheduleHandler(scheduleService)
	metricsHandler := handler.NewMetricsHandler(metrics, backend)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/lookup", authHandler.Lookup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/activate", authHandler.Activate)
	auth.POST("/register", authHandler.Register)

	secured := api.Group("")
	secured.Use(internalmiddleware.Session(authService))

	secured.GET("/auth/session", authHandler.Session)
	secured.POST("/auth/logout", authHandler.Logout)

	admin := string(models.RoleAdmin)
	secured.GET("/users", internalmiddleware.RBAC(admin), userHandler.List)
	secured.POST("/users", internalmiddleware.RBAC(admin), userHandler.Create)
	secured.PUT("/users/:id", internalmiddleware.RBAC(admin), userHandler.Update)
	secured.DELETE("/users/:id", internalmiddleware.RBAC(admin), userHandler.Delete)
	secured.POST("/users/:id/reset-password", internalmiddleware.RBAC(admin), userHandler.ResetPassword)
	secured.GET("/users/export", internalmiddleware.RBAC(admin), userHandler.Export)

	secured.GET("/schedules/students/:id", internalmiddleware.RBAC(admin, internalmiddleware.Self), scheduleHandler.ForStudent)
	secured.GET("/schedules/teachers/:id", internalmiddleware.RBAC(admin, internalmiddleware.Self), scheduleHandler.ForTeacher)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "remote_store", backend.Ready())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
