// internal/handlers/job.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hirehub/hirehub-backend/internal/i18n"
	"github.com/hirehub/hirehub-backend/internal/services"
	"github.com/hirehub/hirehub-backend/internal/utils"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobService *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobService,
	}
}

// GET /api/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filters := services.JobFilters{
		Company:  c.Query("company"),
		Location: c.Query("location"),
		Type:     c.Query("type"),
	}

	jobs, total, err := h.jobService.ListJobs(c.Request.Context(), params, filters)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(jobs, total, params))
}

// GET /api/jobs/mine
func (h *JobHandler) ListMine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	jobs, total, err := h.jobService.ListMine(c.Request.Context(), actor, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(jobs, total, params))
}

// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := idParam(c)
	if !ok {
		return
	}

	job, err := h.jobService.GetJob(c.Request.Context(), jobID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, job)
}

// POST /api/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.CreateJobRequest
	if !bindJSON(c, &req) {
		return
	}

	job, err := h.jobService.CreateJob(c.Request.Context(), actor, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyJobCreated),
		"job":     job,
	})
}

// PATCH /api/jobs/:id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	jobID, ok := idParam(c)
	if !ok {
		return
	}

	var req services.UpdateJobRequest
	if !bindJSON(c, &req) {
		return
	}

	job, err := h.jobService.UpdateJob(c.Request.Context(), actor, jobID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyJobUpdated),
		"job":     job,
	})
}

// DELETE /api/jobs/:id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	jobID, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.jobService.DeleteJob(c.Request.Context(), actor, jobID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyJobDeleted),
	})
}
