package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"altiora-api/internal/services"
	"altiora-api/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ApplicationHandler serves the public application form.
type ApplicationHandler struct {
	service   services.ApplicationService
	validator *validator.Validate
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(service services.ApplicationService, validate *validator.Validate) *ApplicationHandler {
	return &ApplicationHandler{service: service, validator: validate}
}

// Apply godoc
//
//	@Summary		Submit or update an application
//	@Description	Creates an application, or updates the one matching the submitted email or phone.
//	@Tags			applications
//	@Accept			json
//	@Produce		json
//	@Param			application	body		dto.ApplyRequest	true	"Application form"
//	@Success		201			{object}	map[string]any		"Application created"
//	@Success		200			{object}	map[string]any		"Application updated"
//	@Failure		400			{object}	map[string]any		"Invalid input"
//	@Failure		409			{object}	map[string]string	"No changes detected"
//	@Failure		429			{object}	map[string]any		"Updated too recently"
//	@Failure		500			{object}	map[string]string	"Internal Server Error"
//	@Router			/apply [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req dto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Apply: Error binding request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"details": gin.H{"body": "Request body must be a JSON object with the application fields"},
		})
		return
	}

	// Validate the values that will be stored, not the raw input.
	req.Normalize()
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "details": FormatValidationErrors(err)})
		return
	}

	result, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "details": gin.H{"email": "Field 'email' is required"}})
		case errors.Is(err, services.ErrConflict):
			log.Printf("Apply: Concurrent submission for %s: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Another submission with this email or phone was being processed. Please try again."})
		default:
			log.Printf("Apply: Error submitting application for %s: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit application"})
		}
		return
	}

	switch result.Outcome {
	case services.OutcomeCreated:
		c.JSON(http.StatusCreated, gin.H{"message": "Application submitted successfully", "fresh": true})
	case services.OutcomeUpdated:
		c.JSON(http.StatusOK, gin.H{"message": "Application updated successfully", "updated": true})
	case services.OutcomeNoChanges:
		c.JSON(http.StatusConflict, gin.H{"message": "No changes detected. Your application is already up to date."})
	case services.OutcomeRateLimited:
		c.Header("Retry-After", strconv.Itoa(result.RetryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"message":    fmt.Sprintf("Please wait %d seconds before updating your application again.", result.RetryAfter),
			"retryAfter": result.RetryAfter,
		})
	default:
		log.Printf("Apply: Unknown intake outcome %q for applicant %s", result.Outcome, result.ApplicantID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit application"})
	}
}
