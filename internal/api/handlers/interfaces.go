package handlers

import "github.com/gin-gonic/gin"

// ApplicationHandlerInterface defines the methods needed by the public intake routes.
type ApplicationHandlerInterface interface {
	Apply(c *gin.Context)
}

// AdminHandlerInterface defines the methods needed by the admin routes.
type AdminHandlerInterface interface {
	ListApplications(c *gin.Context)
	GetApplicationByID(c *gin.Context)
}

// Ensure handlers implement the interfaces (compile-time check)
var _ ApplicationHandlerInterface = (*ApplicationHandler)(nil)
var _ AdminHandlerInterface = (*AdminHandler)(nil)
