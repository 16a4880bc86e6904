package main

import (
	"net/http"
	"os"

	_ "authsvc/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"authsvc/internal/auth"
	"authsvc/internal/cache"
	"authsvc/internal/config"
	"authsvc/internal/db"
	"authsvc/internal/handler"
	"authsvc/internal/model"
	"authsvc/internal/repository"
	"authsvc/internal/router"
	"authsvc/internal/service"
)

// @title Auth Service API
// @version 1.0
// @description JWT authentication and session service with user profiles and a per-user exam timer.
// @host localhost:8800
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("database init")
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		logger.Fatal().Err(err).Msg("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	revocationStore := auth.NewRedisRevocationStore(cacheClient)

	authService := service.NewAuthService(userRepo, jwtService, revocationStore, cacheClient, logger)
	userService := service.NewUserService(userRepo, cacheClient)
	examService := service.NewExamService(userRepo, cacheClient)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	examHandler := handler.NewExamHandler(examService)
	healthHandler := handler.NewHealthHandler(gormDB, cacheClient)

	e := echo.New()
	e.Use(middleware.RequestID())

	router.Register(e, authService, authHandler, userHandler, examHandler, healthHandler)

	addr := ":" + cfg.ServerPort
	logger.Info().Str("addr", addr).Msg("starting server")
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server start")
	}
}
