package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jwebster45206/quell/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))

	tests := []struct {
		name           string
		setupStore     func() storage.SessionStore
		expectedStatus int
		expectedHealth string
		expected       ComponentHealth
	}{
		{
			name: "all healthy",
			setupStore: func() storage.SessionStore {
				store := storage.NewMockStore()
				store.SetPingSuccess()
				return store
			},
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expected:       ComponentHealth{Status: "healthy", Kind: "mock"},
		},
		{
			name: "unhealthy storage",
			setupStore: func() storage.SessionStore {
				store := storage.NewMockStore()
				store.SetPingError(errors.New("connection failed"))
				return store
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expected:       ComponentHealth{Status: "unhealthy", Kind: "mock", Error: "connection failed"},
		},
		{
			name: "memory store",
			setupStore: func() storage.SessionStore {
				return storage.NewMemoryStore(time.Hour)
			},
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expected:       ComponentHealth{Status: "healthy", Kind: "memory"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.setupStore(), logger)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var response HealthResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
			assert.Equal(t, tt.expectedHealth, response.Status)
			assert.Equal(t, "quell", response.Service)
			assert.WithinDuration(t, time.Now(), response.Timestamp, time.Second)

			got, ok := response.Components["sessions"]
			require.True(t, ok, "sessions component reported")
			got.LatencyMS = 0
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestHealthHandler_RejectsWrites(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	handler := NewHealthHandler(storage.NewMockStore(), logger)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
