package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/streamsynth-io/streamsynth-engine/pkg/config"
)

// PingResponse reports service identity and the backends it is wired to.
type PingResponse struct {
	Status          string `json:"status"`
	Service         string `json:"service"`
	Version         string `json:"version"`
	Environment     string `json:"environment"`
	Engine          string `json:"engine"`
	MetadataBackend string `json:"metadata_backend"`
	AIProvider      string `json:"ai_provider"`
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler with the given configuration.
func NewHealthHandler(cfg *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
// Returns a simple "ok" status for container health checks.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping requests. The process only serves after the
// startup connectivity guard passed, so "ok" implies the engine answered
// at least once.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	response := PingResponse{
		Status:          "ok",
		Service:         "streamsynth-engine",
		Version:         h.cfg.Version,
		Environment:     h.cfg.Env,
		Engine:          h.cfg.Timeplus.Addr(),
		MetadataBackend: string(h.cfg.MetadataBackend()),
		AIProvider:      string(h.cfg.AIProvider()),
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
