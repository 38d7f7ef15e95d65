package main

import (
	"context"
	"log"

	"identity_service/internal/apperr"
	"identity_service/internal/cache"
	"identity_service/internal/config"
	"identity_service/internal/model"
	"identity_service/internal/repository"
	"identity_service/internal/service"
	"identity_service/internal/utils"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

// seedEnv describes the bootstrap admin account. The password travels through
// the regular creation path, so only its bcrypt hash ever reaches storage.
type seedEnv struct {
	Email       string `env:"SEED_ADMIN_EMAIL"`
	Name        string `env:"SEED_ADMIN_NAME" envDefault:"Administrator"`
	Password    string `env:"SEED_ADMIN_PASSWORD"`
	CountryCode string `env:"SEED_ADMIN_COUNTRY_CODE" envDefault:"+1"`
	PhoneNumber string `env:"SEED_ADMIN_PHONE_NUMBER"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	var seed seedEnv
	if err := env.Parse(&seed); err != nil {
		logger.Fatal("Failed to parse seed environment", zap.Error(err))
	}
	if seed.Email == "" || seed.Password == "" || seed.PhoneNumber == "" {
		logger.Fatal("SEED_ADMIN_EMAIL, SEED_ADMIN_PASSWORD and SEED_ADMIN_PHONE_NUMBER must be set")
	}

	dbPool, err := config.ConnectDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	if err := config.AutoMigrate(dbPool, logger); err != nil {
		logger.Fatal("Failed to auto-migrate database", zap.Error(err))
	}

	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.TokenTTL)
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	userRepo := repository.NewUserRepository(dbPool, cfg.StorageTimeout)
	userService := service.NewUserService(userRepo, hasher, jwtUtil, cache.New(nil, 0), logger)

	verified := true
	req := model.CreateUserRequest{
		Email:      seed.Email,
		Name:       seed.Name,
		Role:       model.RoleAdmin,
		IsVerified: &verified,
		Phone: &model.PhoneInput{
			CountryCode: seed.CountryCode,
			Number:      seed.PhoneNumber,
		},
		Password: seed.Password,
	}

	created, err := userService.CreateUser(context.Background(), req)
	if err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			logger.Info("Admin account already exists, nothing to do", zap.String("email", seed.Email))
			return
		}
		logger.Fatal("Failed to seed admin account", zap.Error(err))
	}

	logger.Info("Admin account created",
		zap.String("userId", created.User.ID),
		zap.String("email", created.User.Email),
	)
}
