package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskflow/internal/auth"
	"github.com/adanyl0v/taskflow/internal/config"
	v1 "github.com/adanyl0v/taskflow/internal/delivery/http/v1"
	"github.com/adanyl0v/taskflow/internal/services"
)

func MustListenAndServeHTTP(logger zerolog.Logger, cfg *config.Config, pool *pgxpool.Pool) {
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	mustRegisterRoutes(router, logger, cfg, pool)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	logger.Info().Msg("shut down http server")
}

func mustRegisterRoutes(router gin.IRouter, logger zerolog.Logger, cfg *config.Config, pool *pgxpool.Pool) {
	jwtCfg := cfg.JWT
	tokens, err := auth.NewTokenService(
		jwtCfg.Issuer,
		jwtCfg.SigningKey,
		jwtCfg.Algorithm,
		jwtCfg.AccessTokenTTL,
		jwtCfg.RefreshTokenTTL,
	)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to create token service")
		panic(err)
	}
	hasher := auth.NewPasswordHasher(cfg.Password.BcryptCost)

	v1Handler := v1.New(
		logger,
		tokens,
		services.NewAuthService(logger, pool, hasher, tokens),
		services.NewUserService(logger, pool),
		services.NewCategoryService(logger, pool),
		services.NewTaskService(logger, pool),
	)

	router.GET("/", handleRoot)
	router.GET("/health", handleHealth)

	api := router.Group("/api/v1")

	registerLimiter := v1.NewRateLimitMiddleware(cfg.RateLimit.RegisterLimit, cfg.RateLimit.RegisterInterval)
	loginLimiter := v1.NewRateLimitMiddleware(cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginInterval)

	authRouter := api.Group("/auth")
	authRouter.POST("/register", registerLimiter, v1Handler.HandleRegister)
	authRouter.POST("/login", loginLimiter, v1Handler.HandleLogin)
	authRouter.POST("/refresh", v1Handler.HandleRefresh)
	authRouter.POST("/logout", v1Handler.HandleLogout)

	categoriesRouter := api.Group("/categories", v1Handler.HandleAuthMiddleware)
	categoriesRouter.POST("", v1Handler.HandleCreateCategory)
	categoriesRouter.GET("", v1Handler.HandleListCategories)
	categoriesRouter.GET("/:id", v1Handler.HandleGetCategory)
	categoriesRouter.PATCH("/:id", v1Handler.HandleUpdateCategory)
	categoriesRouter.DELETE("/:id", v1Handler.HandleDeleteCategory)

	tasksRouter := api.Group("/tasks", v1Handler.HandleAuthMiddleware)
	tasksRouter.POST("", v1Handler.HandleCreateTask)
	tasksRouter.GET("", v1Handler.HandleListTasks)
	tasksRouter.GET("/:id", v1Handler.HandleGetTask)
	tasksRouter.PATCH("/:id", v1Handler.HandleUpdateTask)
	tasksRouter.DELETE("/:id", v1Handler.HandleDeleteTask)
}

func handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to TaskFlow API",
		"health":  "/health",
	})
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
