package handlers

import (
	"errors"
	"log"
	"net/http"

	"altiora-api/internal/services"
	"altiora-api/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AdminHandler serves read-only access to submitted applications.
type AdminHandler struct {
	service   services.ApplicationService
	validator *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service services.ApplicationService, validate *validator.Validate) *AdminHandler {
	return &AdminHandler{service: service, validator: validate}
}

// ListApplications godoc
//
//	@Summary		List applications
//	@Description	Returns applications newest first.
//	@Tags			admin
//	@Produce		json
//	@Param			limit	query		int	false	"Page size (1-100)"	default(20)
//	@Param			offset	query		int	false	"Items to skip"		default(0)
//	@Success		200		{object}	dto.ListApplicationsResponse
//	@Failure		400		{object}	map[string]any		"Invalid paging parameters"
//	@Failure		401		{object}	map[string]string	"Unauthorized"
//	@Failure		500		{object}	map[string]string	"Internal Server Error"
//	@Router			/admin/applications [get]
//	@Security		BearerAuth
func (h *AdminHandler) ListApplications(c *gin.Context) {
	var req dto.ListApplicationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid query parameters", "details": gin.H{"query": err.Error()}})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "details": FormatValidationErrors(err)})
		return
	}

	records, total, err := h.service.ListApplications(c.Request.Context(), &req)
	if err != nil {
		log.Printf("ListApplications: Error listing applications: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve applications"})
		return
	}

	items := make([]dto.ApplicationResponse, 0, len(records))
	for i := range records {
		items = append(items, services.MapRecordToResponse(&records[i]))
	}
	c.JSON(http.StatusOK, dto.ListApplicationsResponse{
		Items:  items,
		Total:  total,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

// GetApplicationByID godoc
//
//	@Summary		Get an application
//	@Tags			admin
//	@Produce		json
//	@Param			id	path		string	true	"Applicant ID"	Format(uuid)
//	@Success		200	{object}	dto.ApplicationResponse
//	@Failure		400	{object}	map[string]string	"Invalid ID format"
//	@Failure		401	{object}	map[string]string	"Unauthorized"
//	@Failure		404	{object}	map[string]string	"Application Not Found"
//	@Failure		500	{object}	map[string]string	"Internal Server Error"
//	@Router			/admin/applications/{id} [get]
//	@Security		BearerAuth
func (h *AdminHandler) GetApplicationByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid application ID format"})
		return
	}
	req := dto.GetApplicationByIDRequest{ID: id}

	record, err := h.service.GetApplication(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
		} else {
			log.Printf("GetApplicationByID: Error fetching application %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve application"})
		}
		return
	}
	c.JSON(http.StatusOK, services.MapRecordToResponse(record))
}
