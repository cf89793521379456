package routes

import (
	"altiora-api/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterApplicationRoutes registers the public application form endpoint.
func RegisterApplicationRoutes(rg *gin.RouterGroup, h handlers.ApplicationHandlerInterface, mw ...gin.HandlerFunc) {
	chain := append(append([]gin.HandlerFunc{}, mw...), h.Apply)
	rg.POST("/apply", chain...)
}
