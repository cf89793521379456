package routes

import (
	"altiora-api/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes registers the read-only admin endpoints behind authMiddleware.
func RegisterAdminRoutes(rg *gin.RouterGroup, h handlers.AdminHandlerInterface, authMiddleware gin.HandlerFunc) {
	admin := rg.Group("/admin")
	admin.Use(authMiddleware)
	{
		admin.GET("/applications", h.ListApplications)
		admin.GET("/applications/:id", h.GetApplicationByID)
	}
}
