package routes

import (
	"fmt"
	"log"

	"altiora-api/internal/api/handlers"
	"altiora-api/internal/api/middleware"
	"altiora-api/internal/app"
	"altiora-api/internal/database"

	"github.com/gin-gonic/gin"
)

const throttleKeyPrefix = "altiora:throttle:"

// RegisterRoutes sets up the API routes by calling resource-specific registration functions
func RegisterRoutes(router *gin.Engine, app *app.Application) error {
	api := router.Group("/api")

	// --- Handlers ---
	applicationHandler := handlers.NewApplicationHandler(app.ApplicationService, app.Validator)
	docsHandler, err := handlers.NewDocsHandler()
	if err != nil {
		return fmt.Errorf("registering docs: %w", err)
	}

	// --- Middleware ---
	var submitMiddleware []gin.HandlerFunc
	throttle := app.Config.Throttle
	switch {
	case throttle.Enabled && app.RedisClient != nil:
		counter := database.NewRedisCounter(app.RedisClient, throttleKeyPrefix)
		submitMiddleware = append(submitMiddleware, middleware.Throttle(counter, throttle.Requests, throttle.Window))
		log.Printf("Submission throttle enabled: %d requests per %s", throttle.Requests, throttle.Window)
	case throttle.Enabled:
		log.Println("Submission throttle requested but Redis is not configured, skipping")
	}

	// --- Register Resource Routes ---
	RegisterApplicationRoutes(api, applicationHandler, submitMiddleware...)
	if app.Config.JWT.Secret != "" {
		adminHandler := handlers.NewAdminHandler(app.ApplicationService, app.Validator)
		RegisterAdminRoutes(api, adminHandler, middleware.AdminAuth(app.Config.JWT.Secret))
	} else {
		log.Println("ADMIN_JWT_SECRET not set, admin routes disabled")
	}
	api.GET("/openapi.json", docsHandler.OpenAPI)

	// --- Health Check ---
	router.GET("/health", handlers.NewHealthHandler(app.Store).HealthCheck)
	return nil
}
