package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/gorilla/mux"
)

// JobsHandler handles asynchronous insight job endpoints.
type JobsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	// enabled is false when no warehouse is configured; jobs would only
	// fail after exhausting their retries.
	enabled bool
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(publisher jobs.Publisher, store jobs.JobStore, enabled bool) *JobsHandler {
	return &JobsHandler{
		publisher: publisher,
		store:     store,
		enabled:   enabled,
	}
}

// RegisterRoutes mounts the job endpoints on router.
func (h *JobsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/insight-jobs", h.EnqueueInsight).Methods(http.MethodPost)
	router.HandleFunc("/api/insight-jobs", h.ListJobs).Methods(http.MethodGet)
	router.HandleFunc("/api/insight-jobs/{id}", h.GetJob).Methods(http.MethodGet)
}

// EnqueueInsight handles POST /api/insight-jobs
func (h *JobsHandler) EnqueueInsight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if !h.enabled {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Stored transactions are not available")
		return
	}

	var req rangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	from, to, err := req.dates()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &jobs.InsightJob{
		UserID: req.UserID,
		From:   from,
		To:     to,
	}

	if err := h.publisher.PublishInsight(ctx, job); err != nil {
		log.Error().Err(err).Msg("Failed to enqueue insight job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue insight job")
		return
	}

	log.Info().Str("job_id", job.JobID).Str("user_id", job.UserID).Msg("Insight job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, job)
}

// GetJob handles GET /api/insight-jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := mux.Vars(r)["id"]

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/insight-jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		UserID: query.Get("user_id"),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
