package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/mehmetcc/credential-session-service/docs"
	"github.com/mehmetcc/credential-session-service/internal/account"
	"github.com/mehmetcc/credential-session-service/internal/authentication"
	"github.com/mehmetcc/credential-session-service/internal/security/password"
	"github.com/mehmetcc/credential-session-service/internal/security/token"
	"github.com/mehmetcc/credential-session-service/internal/utils"
)

// @title           Credential Session Service API
// @version         1.0
// @description     Issues access and refresh tokens and manages account profiles.
//
// @host      localhost:8080
// @BasePath  /api/v1
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
func main() {
	// load config
	cfg, err := utils.LoadConfig(".env")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// init logger
	logger, err := utils.NewLogger(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	// init tracing
	tracing, err := utils.InitTracing(context.Background(), cfg.Tracing)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}

	// init database
	db, err := utils.InitDatabase(cfg.Database.ConnectionString, logger)
	if err != nil {
		logger.Fatal("failed to connect to the database", zap.Error(err))
	}
	if err := db.AutoMigrate(&account.Account{}); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := utils.NewHTTPMetrics(registry)
	sessionMetrics := authentication.NewMetrics(registry)

	// init Gin router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), httpMetrics.Middleware())
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	//
	// SWAGGER (protected by Basic Auth, not JWT)
	//
	if cfg.Admin.Enabled() {
		swaggerGroup := router.Group("/swagger", gin.BasicAuth(gin.Accounts{
			cfg.Admin.Username: cfg.Admin.Password,
		}))
		swaggerGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	} else {
		logger.Warn("ADMIN_USERNAME or ADMIN_PASSWORD not set, swagger UI disabled")
	}

	//
	// WIRE UP SERVICES
	//
	codec, err := token.NewCodec(cfg.Token.Settings(), time.Now)
	if err != nil {
		logger.Fatal("failed to build token codec", zap.Error(err))
	}

	accountRepo := account.NewAccountRepository(db)
	accountService := account.NewAccountService(accountRepo, logger)

	authService := authentication.NewAuthenticationService(
		accountRepo,
		authentication.NewSessionRepository(db),
		password.NewHasher(bcrypt.DefaultCost),
		password.NewPolicy(cfg.Password.MinLength),
		codec,
		logger,
		authentication.WithMetrics(sessionMetrics),
	)

	api := router.Group("/api/v1")
	protected := api.Group("/")
	protected.Use(authentication.RequireAccessToken(codec, logger))

	authentication.NewAuthHandler(api, protected, authService, logger)
	account.NewAccountHandler(protected, accountService, logger)

	api.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := utils.PingDatabase(ctx, db); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	//
	// START SERVER
	//
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(router, utils.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped gracefully")
	}
	if err := tracing.Shutdown(ctx); err != nil {
		logger.Error("tracer shutdown failed", zap.Error(err))
	}
}
