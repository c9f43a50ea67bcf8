package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/service"
	"github.com/dvloznov/finance-insights/internal/snapshot"
	"github.com/gorilla/mux"
)

// maxSnapshotBytes bounds POST /api/insights bodies.
const maxSnapshotBytes = 4 << 20

// InsightsHandler handles insight endpoints.
type InsightsHandler struct {
	svc *service.InsightService
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(svc *service.InsightService) *InsightsHandler {
	return &InsightsHandler{svc: svc}
}

// RegisterRoutes mounts the insight endpoints on router.
func (h *InsightsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/insights", h.GenerateInsight).Methods(http.MethodPost)
	router.HandleFunc("/api/insights", h.GenerateStoredInsight).Methods(http.MethodGet)
}

// generateRequest carries an explicit snapshot.
type generateRequest struct {
	Transactions []domain.TransactionRecord `json:"transactions" validate:"required"`
}

// GenerateInsight handles POST /api/insights
func (h *InsightsHandler) GenerateInsight(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSnapshotBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	snapshot.NormalizeKinds(req.Transactions)

	result := h.svc.Generate(r.Context(), "", req.Transactions)
	middleware.WriteJSON(w, http.StatusOK, result)
}

// GenerateStoredInsight handles GET /api/insights?user_id=&from=&to=
func (h *InsightsHandler) GenerateStoredInsight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query()
	req := rangeRequest{
		UserID: query.Get("user_id"),
		From:   query.Get("from"),
		To:     query.Get("to"),
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

	result, err := h.svc.GenerateForRange(ctx, req.UserID, from, to)
	if err != nil {
		if errors.Is(err, service.ErrWarehouseDisabled) {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Stored transactions are not available")
			return
		}
		log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to load transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}
