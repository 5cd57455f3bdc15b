// Package api exposes the service's HTTP surface: health, metrics, a masking
// preview endpoint, and run status.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayushsubedi/anonymize-it/internal/anonymizer"
	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
	"github.com/ayushsubedi/anonymize-it/internal/pipeline"
	apperrors "github.com/ayushsubedi/anonymize-it/pkg/errors"
	"github.com/ayushsubedi/anonymize-it/pkg/health"
	"github.com/ayushsubedi/anonymize-it/pkg/metrics"
)

type Handler struct {
	anon     *anonymizer.Service
	runner   *pipeline.Runner
	job      *config.Job
	registry *health.CheckerRegistry
	logger   logger.Logger
}

func NewHandler(anon *anonymizer.Service, runner *pipeline.Runner, job *config.Job, registry *health.CheckerRegistry, log logger.Logger) *Handler {
	return &Handler{
		anon:     anon,
		runner:   runner,
		job:      job,
		registry: registry,
		logger:   log,
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	c.JSON(apperrors.ToHTTPStatus(err), apperrors.ToErrorResponse(err))
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/preview", h.Preview)
		v1.GET("/job", h.JobStatus)
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	result := h.registry.Check(c.Request.Context())

	statusCode := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, result)
}

type previewRequest struct {
	Record map[string]interface{} `json:"record" binding:"required"`
}

type previewResponse struct {
	Record   map[string]interface{} `json:"record"`
	Warnings []string               `json:"warnings,omitempty"`
}

// Preview runs one record through the anonymizer without touching any store.
// Operators use it to verify a job config before launching a run.
func (h *Handler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.PreviewRequestsTotal.WithLabelValues("invalid").Inc()
		h.handleError(c, apperrors.ErrValidation.WithDetail("message", "request body must contain a record object"))
		return
	}

	anonymized := h.anon.Anonymize(c.Request.Context(), req.Record)
	metrics.PreviewRequestsTotal.WithLabelValues("success").Inc()

	c.JSON(http.StatusOK, previewResponse{
		Record:   anonymized,
		Warnings: h.job.Warnings(),
	})
}

func (h *Handler) JobStatus(c *gin.Context) {
	if h.runner == nil {
		h.handleError(c, apperrors.ErrNotFound.WithDetail("message", "no run configured"))
		return
	}
	c.JSON(http.StatusOK, h.runner.Status())
}
