package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/quell/pkg/inventory"
	"github.com/jwebster45206/quell/pkg/storage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SessionResponse struct {
	ID uuid.UUID `json:"id"`
}

type InventoryResponse struct {
	Items []string `json:"items"`
}

type AddItemRequest struct {
	Item string `json:"item"`
}

type AddItemResponse struct {
	Added bool     `json:"added"`
	Items []string `json:"items"`
}

type SessionHandler struct {
	store  storage.SessionStore
	logger *slog.Logger
}

func NewSessionHandler(store storage.SessionStore, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		store:  store,
		logger: logger,
	}
}

// ServeHTTP handles HTTP requests for sessions
// Routes:
// POST /v1/sessions                - Create a new session ID
// GET  /v1/sessions/{id}/inventory - List collected items
// POST /v1/sessions/{id}/inventory - Add an item
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w)
		return
	}

	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != inventory.RecordName {
		h.writeError(w, http.StatusNotFound, "Not found")
		return
	}

	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleListItems(w, r, sessionID)
	case http.MethodPost:
		h.handleAddItem(w, r, sessionID)
	default:
		h.logger.Warn("Method not allowed for inventory endpoint", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, POST")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter) {
	id := uuid.New()
	h.logger.Info("Session created", "session_id", id)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(SessionResponse{ID: id}); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleListItems(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	inv := inventory.New(h.store, id, h.logger)
	if err := inv.Load(r.Context()); err != nil {
		h.logger.Error("Failed to load inventory", "session_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load inventory")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(InventoryResponse{Items: nonNil(inv.Items())}); err != nil {
		h.logger.Error("Failed to encode inventory response", "error", err)
	}
}

func (h *SessionHandler) handleAddItem(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	req.Item = strings.TrimSpace(req.Item)
	if req.Item == "" {
		h.writeError(w, http.StatusBadRequest, "item field is required")
		return
	}

	inv := inventory.New(h.store, id, h.logger)
	if err := inv.Load(r.Context()); err != nil {
		h.logger.Error("Failed to load inventory", "session_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load inventory")
		return
	}

	added, err := inv.Add(r.Context(), req.Item)
	if err != nil {
		h.logger.Error("Failed to save inventory", "session_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to save inventory")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(AddItemResponse{Added: added, Items: nonNil(inv.Items())}); err != nil {
		h.logger.Error("Failed to encode inventory response", "error", err)
	}
}

func (h *SessionHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
