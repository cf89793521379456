// Package app holds the core application dependencies.
package app

import (
	"altiora-api/config"
	"altiora-api/internal/api/handlers"
	"altiora-api/internal/notify"
	"altiora-api/internal/services"
	"altiora-api/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
)

// Application holds core application dependencies.
type Application struct {
	Config      *config.Config
	Store       storage.Store
	RedisClient *redis.Client // nil when Redis is not configured

	ApplicationService services.ApplicationService
	Validator          *validator.Validate
}

// New wires the services on top of the given infrastructure. notifier may be nil.
func New(cfg *config.Config, store storage.Store, redisClient *redis.Client, notifier notify.Notifier, opts ...services.Option) *Application {
	return &Application{
		Config:             cfg,
		Store:              store,
		RedisClient:        redisClient,
		ApplicationService: services.NewApplicationService(store, notifier, cfg.Intake.UpdateWindow, opts...),
		Validator:          handlers.NewValidator(),
	}
}
