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

	_ "github.com/stellaredu/consult-api/api/swagger"
	"github.com/stellaredu/consult-api/internal/handler"
	"github.com/stellaredu/consult-api/internal/middleware"
	"github.com/stellaredu/consult-api/internal/models"
	"github.com/stellaredu/consult-api/internal/repository"
	"github.com/stellaredu/consult-api/internal/service"
	"github.com/stellaredu/consult-api/pkg/cache"
	"github.com/stellaredu/consult-api/pkg/config"
	"github.com/stellaredu/consult-api/pkg/database"
	"github.com/stellaredu/consult-api/pkg/jobs"
	"github.com/stellaredu/consult-api/pkg/logger"
	"github.com/stellaredu/consult-api/pkg/mailer"
	corsmiddleware "github.com/stellaredu/consult-api/pkg/middleware/cors"
	reqidmiddleware "github.com/stellaredu/consult-api/pkg/middleware/requestid"
)

// @title StellarEdu Consult API
// @version 1.0.0
// @description Identity and user management service for the StellarEdu study-abroad platform
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 15 * time.Second

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
		logr.Sugar().Warnw("redis unavailable, throttling disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	tokens, err := service.NewTokenService(cfg.Auth)
	if err != nil {
		logr.Sugar().Fatalw("failed to init token service", "error", err)
	}

	metrics := service.NewMetricsService()
	mail := mailer.FromConfig(cfg.SMTP, logr)
	validate := validator.New()

	worker := service.NewAuthWorker(sessionRepo, userRepo, auditRepo, mail, logr)
	queue := jobs.NewQueue("auth-side-writes", worker, jobs.QueueConfig{
		Workers: 4,
		Logger:  logr,
	})

	authSvc := service.NewAuthService(userRepo, sessionRepo, cacheRepo, tokens, queue, validate, logr, metrics, cfg.Auth)
	userSvc := service.NewUserService(userRepo, queue, validate, logr)
	resolver := service.NewResolverService(userRepo, tokens, metrics, logr)

	authHandler := handler.NewAuthHandler(authSvc, cfg.Auth)
	userHandler := handler.NewUserHandler(userSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, db, redisClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/verify-otp", authHandler.VerifyOTP)
		auth.POST("/resend-otp", authHandler.ResendOTP)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		authed := auth.Group("", middleware.Authenticate(resolver))
		authed.POST("/logout", authHandler.Logout)
		authed.GET("/me", authHandler.Me)
		authed.POST("/change-password", authHandler.ChangePassword)
	}

	users := api.Group("/users",
		middleware.Authenticate(resolver),
		middleware.RequireRoles(models.AdminRoles...),
	)
	{
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.GET("/export", userHandler.Export)
		users.GET("/:id", userHandler.Get)
		users.PATCH("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Deactivate)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.Start(context.Background())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown error", "error", err)
	}

	// Drain pending bookkeeping writes before closing the database.
	queue.Stop()

	logr.Sugar().Infow("server stopped")
}
