package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jobUC "github.com/khoahotran/neplaunch/internal/application/usecase/job"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

type JobHandler struct {
	jobUseCase *jobUC.JobUseCase
	logger     logger.Logger
}

func NewJobHandler(uc *jobUC.JobUseCase, log logger.Logger) *JobHandler {
	return &JobHandler{jobUseCase: uc, logger: log}
}

func (req JobRequest) toInput() jobUC.JobInput {
	return jobUC.JobInput{
		Title:          req.Title,
		Description:    req.Description,
		Requirements:   req.Requirements,
		RequiredSkills: req.RequiredSkills,
		Location:       req.Location,
		JobType:        req.JobType,
		Compensation:   req.Compensation,
	}
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid job posting", err))
		return
	}

	p, err := h.jobUseCase.ExecuteCreate(c.Request.Context(), userID, req.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToJobDTO(p))
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid job ID", err))
		return
	}
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid job posting", err))
		return
	}

	p, err := h.jobUseCase.ExecuteUpdate(c.Request.Context(), userID, jobID, req.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToJobDTO(p))
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid job ID", err))
		return
	}

	if err := h.jobUseCase.ExecuteDelete(c.Request.Context(), userID, jobID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid job ID", err))
		return
	}

	p, err := h.jobUseCase.ExecuteGet(c.Request.Context(), jobID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToJobDTO(p))
}

// ListJobs lists the postings of ?founder_id=, or the caller's own postings.
func (h *JobHandler) ListJobs(c *gin.Context) {
	founderID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	if raw := c.Query("founder_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.Error(apperror.NewInvalidInput("invalid founder_id", err))
			return
		}
		founderID = id
	}

	postings, err := h.jobUseCase.ExecuteList(c.Request.Context(), founderID)
	if err != nil {
		c.Error(err)
		return
	}
	dtos := make([]JobDTO, len(postings))
	for i, p := range postings {
		dtos[i] = ToJobDTO(p)
	}
	c.JSON(http.StatusOK, gin.H{"jobs": dtos})
}

// JobFeed serves ?founder_id= (or the caller's) postings as RSS, or as Atom
// when ?format=atom.
func (h *JobHandler) JobFeed(c *gin.Context) {
	founderID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	if raw := c.Query("founder_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.Error(apperror.NewInvalidInput("invalid founder_id", err))
			return
		}
		founderID = id
	}
	format := strings.ToLower(c.DefaultQuery("format", "rss"))
	if format != "rss" && format != "atom" {
		c.Error(apperror.NewInvalidInput("format must be rss or atom", nil))
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	feed, err := h.jobUseCase.ExecuteFeed(c.Request.Context(), founderID, scheme+"://"+c.Request.Host+"/api/jobs")
	if err != nil {
		c.Error(err)
		return
	}

	if format == "atom" {
		c.Header("Content-Type", "application/atom+xml; charset=utf-8")
		err = feed.WriteAtom(c.Writer)
	} else {
		c.Header("Content-Type", "application/rss+xml; charset=utf-8")
		err = feed.WriteRss(c.Writer)
	}
	if err != nil {
		h.logger.Error("Failed to write job feed to response", err)
	}
}
