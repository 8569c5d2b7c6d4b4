// internal/handlers/application.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hirehub/hirehub-backend/internal/i18n"
	"github.com/hirehub/hirehub-backend/internal/models"
	"github.com/hirehub/hirehub-backend/internal/services"
	"github.com/hirehub/hirehub-backend/internal/utils"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
	}
}

// POST /api/applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.SubmitApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationService.SubmitApplication(c.Request.Context(), actor, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationSubmitted),
		"application": app,
	})
}

// GET /api/applications
//
// status may be repeated or comma separated.
func (h *ApplicationHandler) List(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	apps, total, err := h.applicationService.ListApplications(c.Request.Context(), actor, services.ListApplicationsQuery{
		Statuses: statusFilter(c),
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(apps, total, params))
}

func statusFilter(c *gin.Context) []models.ApplicationStatus {
	var statuses []models.ApplicationStatus
	for _, raw := range c.QueryArray("status") {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				statuses = append(statuses, models.ApplicationStatus(s))
			}
		}
	}
	return statuses
}

// GET /api/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	applicationID, ok := idParam(c)
	if !ok {
		return
	}

	view, err := h.applicationService.GetApplication(c.Request.Context(), actor, applicationID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, view)
}

// PATCH /api/applications/:id/status
func (h *ApplicationHandler) TransitionStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	applicationID, ok := idParam(c)
	if !ok {
		return
	}

	var req services.TransitionStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.applicationService.TransitionStatus(c.Request.Context(), actor, applicationID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, result, gin.H{
		"message": i18n.T(lang, i18n.KeyApplicationMoved),
	})
}

// GET /api/applications/:id/history
func (h *ApplicationHandler) History(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	applicationID, ok := idParam(c)
	if !ok {
		return
	}

	entries, err := h.applicationService.GetHistory(c.Request.Context(), actor, applicationID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, entries)
}
