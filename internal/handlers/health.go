package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/quell/pkg/storage"
)

// ComponentHealth describes one dependency of the service.
type ComponentHealth struct {
	Status    string `json:"status"`
	Kind      string `json:"kind,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Service    string                     `json:"service"`
	Components map[string]ComponentHealth `json:"components"`
}

type HealthHandler struct {
	store   storage.SessionStore
	logger  *slog.Logger
	timeout time.Duration
}

func NewHealthHandler(store storage.SessionStore, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		logger:  logger,
		timeout: 2 * time.Second,
	}
}

// ServeHTTP reports 200 while the session store answers a ping, 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Method not allowed. Supported methods: GET"})
		return
	}

	sessions := h.checkStore(r.Context())
	response := HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now(),
		Service:    "quell",
		Components: map[string]ComponentHealth{"sessions": sessions},
	}

	statusCode := http.StatusOK
	if sessions.Status != "healthy" {
		response.Status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding health response", "error", err)
	}
}

func (h *HealthHandler) checkStore(ctx context.Context) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := h.store.Ping(ctx)
	c := ComponentHealth{
		Status:    "healthy",
		Kind:      h.store.Kind(),
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		h.logger.Warn("Session store health check failed", "kind", c.Kind, "error", err)
		c.Status = "unhealthy"
		c.Error = err.Error()
	}
	return c
}
