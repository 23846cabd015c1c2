package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hazemkhaled/text-extractor/internal/models"
	"github.com/hazemkhaled/text-extractor/internal/service/extraction"
	"github.com/hazemkhaled/text-extractor/pkg/logger"
	"github.com/hazemkhaled/text-extractor/pkg/worker"
)

// ExtractRequest is the inbound job submission body.
type ExtractRequest struct {
	DocumentID   string `json:"documentId" binding:"required"`
	Bucket       string `json:"bucket" binding:"required"`
	Path         string `json:"path" binding:"required"`
	LanguageHint string `json:"languageHint"`
	MaxPages     int    `json:"maxPages"`
	NotifyTarget string `json:"notifyTarget"`
}

// AcceptedResponse acknowledges an asynchronous submission.
type AcceptedResponse struct {
	JobID      string `json:"jobId"`
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type ExtractHandler struct {
	service       extraction.Service
	pool          *worker.Pool
	defaultNotify string
	logger        logger.Logger
}

func NewExtractHandler(service extraction.Service, pool *worker.Pool, defaultNotify string, log logger.Logger) *ExtractHandler {
	return &ExtractHandler{
		service:       service,
		pool:          pool,
		defaultNotify: defaultNotify,
		logger:        log,
	}
}

// Extract accepts one job. With a notify target (explicit or process
// default) the job runs in the background and the response is a 202
// acknowledgement; without one the job runs synchronously and the response
// carries the outcome.
func (h *ExtractHandler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	job := h.toJob(&req)

	if job.NotifyTarget == "" && h.defaultNotify == "" {
		outcome := h.service.Extract(c.Request.Context(), job)
		c.JSON(http.StatusOK, outcome)
		return
	}

	if err := h.submit(job); err != nil {
		h.handleError(c, http.StatusServiceUnavailable, "Failed to queue job", err)
		return
	}

	c.JSON(http.StatusAccepted, AcceptedResponse{
		JobID:      job.ID,
		DocumentID: job.DocumentID,
		Status:     "accepted",
	})
}

// BatchJobResult reports one batch entry's queuing fate.
type BatchJobResult struct {
	JobID      string `json:"jobId,omitempty"`
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// ExtractBatch accepts several jobs at once. Batch jobs are always
// asynchronous: the outcome only travels over the notification channel.
// Validation runs over the whole batch before anything is queued, so a 400
// means no job started.
func (h *ExtractHandler) ExtractBatch(c *gin.Context) {
	var reqs []ExtractRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(reqs) == 0 {
		h.handleError(c, http.StatusBadRequest, "No jobs provided", nil)
		return
	}

	for i := range reqs {
		req := &reqs[i]
		if req.DocumentID == "" || req.Bucket == "" || req.Path == "" {
			h.handleError(c, http.StatusBadRequest, "Batch validation failed",
				fmt.Errorf("job %d: documentId, bucket and path are required", i))
			return
		}
		if req.NotifyTarget == "" && h.defaultNotify == "" {
			h.handleError(c, http.StatusBadRequest, "Batch validation failed",
				fmt.Errorf("job %d: batch jobs require a notify target", i))
			return
		}
	}

	results := make([]BatchJobResult, len(reqs))
	g, _ := errgroup.WithContext(c.Request.Context())
	for i := range reqs {
		i := i
		g.Go(func() error {
			job := h.toJob(&reqs[i])
			if err := h.submit(job); err != nil {
				results[i] = BatchJobResult{
					DocumentID: job.DocumentID,
					Status:     "rejected",
					Error:      err.Error(),
				}
				return err
			}
			results[i] = BatchJobResult{
				JobID:      job.ID,
				DocumentID: job.DocumentID,
				Status:     "accepted",
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// some entries may already be queued; report each one's fate
		h.logger.Error("Batch partially queued", logger.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"message": "Batch partially queued",
			"jobs":    results,
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": fmt.Sprintf("Accepted %d jobs", len(results)),
		"jobs":    results,
	})
}

func (h *ExtractHandler) toJob(req *ExtractRequest) *models.Job {
	return &models.Job{
		ID:         uuid.New().String(),
		DocumentID: req.DocumentID,
		Source: models.SourceLocator{
			Bucket: req.Bucket,
			Path:   req.Path,
		},
		LanguageHint: req.LanguageHint,
		MaxPages:     req.MaxPages,
		NotifyTarget: req.NotifyTarget,
		CreatedAt:    time.Now(),
	}
}

func (h *ExtractHandler) submit(job *models.Job) error {
	return h.pool.Submit(func(ctx context.Context) {
		h.service.Extract(ctx, job)
	})
}

func (h *ExtractHandler) handleError(c *gin.Context, status int, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{Message: message}
	if err != nil {
		response.Error = err.Error()
	}
	c.JSON(status, response)
}
