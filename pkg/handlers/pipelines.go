package handlers

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/streamsynth-io/streamsynth-engine/pkg/apperrors"
	"github.com/streamsynth-io/streamsynth-engine/pkg/services"
)

// CreatePipelineRequest is the body of POST /pipelines.
type CreatePipelineRequest struct {
	Question string `json:"question"`
}

// PipelineHandler exposes the pipeline lifecycle over HTTP.
type PipelineHandler struct {
	manager services.PipelineManager
	logger  *zap.Logger
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(manager services.PipelineManager, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{manager: manager, logger: logger.Named("pipelines")}
}

// RegisterRoutes registers the pipeline routes on the given mux.
func (h *PipelineHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /pipelines", h.Create)
	mux.HandleFunc("GET /pipelines", h.List)
	mux.HandleFunc("GET /pipelines/{id}", h.Get)
	mux.HandleFunc("DELETE /pipelines/{id}", h.Delete)
}

// Create handles POST /pipelines requests.
func (h *PipelineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with a question field")
		return
	}
	if req.Question == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}

	result, err := h.manager.Create(r.Context(), req.Question)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, result); err != nil {
		h.logger.Error("Failed to encode create response", zap.Error(err))
	}
}

// List handles GET /pipelines requests.
func (h *PipelineHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.manager.ListAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{"pipelines": summaries}); err != nil {
		h.logger.Error("Failed to encode list response", zap.Error(err))
	}
}

// Get handles GET /pipelines/{id} requests.
func (h *PipelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.manager.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to encode get response", zap.Error(err))
	}
}

// Delete handles DELETE /pipelines/{id} requests.
func (h *PipelineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.manager.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"}); err != nil {
		h.logger.Error("Failed to encode delete response", zap.Error(err))
	}
}

// writeError maps service errors onto HTTP status codes.
func (h *PipelineHandler) writeError(w http.ResponseWriter, err error) {
	var provisionErr *services.ProvisionError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "pipeline not found")
	case errors.Is(err, apperrors.ErrEmptyGeneration),
		errors.Is(err, apperrors.ErrMalformedGeneration),
		errors.Is(err, apperrors.ErrUnsafeName):
		h.logger.Warn("pipeline generation rejected", zap.Error(err))
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "generation_failed", err.Error())
	case errors.As(err, &provisionErr):
		h.logger.Error("pipeline provisioning failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusBadGateway, "provision_failed", err.Error())
	default:
		h.logger.Error("pipeline request failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
