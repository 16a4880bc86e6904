package main

import (
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"authsvc/internal/config"
	"authsvc/internal/db"
	"authsvc/internal/model"
)

// Seeds a verified demo user for local development.
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

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("hash password")
	}

	username := "demo"
	user := &model.User{
		Username:      &username,
		Email:         "demo@example.com",
		FullName:      "Demo User",
		PasswordHash:  string(hash),
		IsActive:      true,
		EmailVerified: true,
	}

	if err := gormDB.Where("email = ?", user.Email).FirstOrCreate(user).Error; err != nil {
		logger.Fatal().Err(err).Msg("seed user")
	}

	logger.Info().Str("email", user.Email).Msg("seeded demo user")
}
