package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quell/pkg/inventory"
	"github.com/jwebster45206/quell/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionHandler() (*SessionHandler, *storage.MockStore) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := storage.NewMockStore()
	return NewSessionHandler(store, logger), store
}

func serve(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSessionHandler_Create(t *testing.T) {
	h, _ := newTestSessionHandler()

	rr := serve(h, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.NotEqual(t, uuid.Nil, resp.ID)

	rr = serve(h, http.MethodGet, "/v1/sessions", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestSessionHandler_InventoryFlow(t *testing.T) {
	h, store := newTestSessionHandler()
	id := uuid.New()
	path := "/v1/sessions/" + id.String() + "/inventory"

	rr := serve(h, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list InventoryResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Equal(t, []string{}, list.Items)

	rr = serve(h, http.MethodPost, path, AddItemRequest{Item: "Basement Key"})
	require.Equal(t, http.StatusOK, rr.Code)
	var added AddItemResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&added))
	assert.True(t, added.Added)
	assert.Equal(t, []string{"Basement Key"}, added.Items)

	rr = serve(h, http.MethodPost, path, AddItemRequest{Item: "Basement Key"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&added))
	assert.False(t, added.Added, "adding twice reports no change")
	assert.Len(t, added.Items, 1)

	raw, ok := store.Raw(id, inventory.RecordName)
	require.True(t, ok)
	assert.JSONEq(t, `["Basement Key"]`, raw)
}

func TestSessionHandler_CorruptRecordReadsEmpty(t *testing.T) {
	h, store := newTestSessionHandler()
	id := uuid.New()
	store.Put(id, inventory.RecordName, "not json")

	rr := serve(h, http.MethodGet, "/v1/sessions/"+id.String()+"/inventory", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list InventoryResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Empty(t, list.Items)
}

func TestSessionHandler_Errors(t *testing.T) {
	id := uuid.New().String()

	tests := []struct {
		name           string
		method         string
		path           string
		body           any
		saveErr        error
		expectedStatus int
		expectedError  string
	}{
		{"bad id", http.MethodGet, "/v1/sessions/nope/inventory", nil, nil, http.StatusBadRequest, "Invalid session ID format"},
		{"unknown resource", http.MethodGet, "/v1/sessions/" + id + "/stash", nil, nil, http.StatusNotFound, "Not found"},
		{"bad method", http.MethodDelete, "/v1/sessions/" + id + "/inventory", nil, nil, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, POST"},
		{"bad json", http.MethodPost, "/v1/sessions/" + id + "/inventory", "{", nil, http.StatusBadRequest, "Invalid JSON in request body"},
		{"empty item", http.MethodPost, "/v1/sessions/" + id + "/inventory", AddItemRequest{Item: "  "}, nil, http.StatusBadRequest, "item field is required"},
		{"save fails", http.MethodPost, "/v1/sessions/" + id + "/inventory", AddItemRequest{Item: "x"}, errors.New("down"), http.StatusInternalServerError, "Failed to save inventory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newTestSessionHandler()
			if tt.saveErr != nil {
				store.SetSaveError(tt.saveErr)
			}

			rr := serve(h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.expectedError, resp.Error)
		})
	}
}

func TestSessionHandler_ParallelAddsAllPersist(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	h := NewSessionHandler(storage.NewMemoryStore(time.Hour), logger)
	path := "/v1/sessions/" + uuid.New().String() + "/inventory"

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rr := serve(h, http.MethodPost, path, AddItemRequest{Item: fmt.Sprintf("item-%d", i)})
			if !assert.Equal(t, http.StatusOK, rr.Code) {
				return
			}
			var added AddItemResponse
			if assert.NoError(t, json.NewDecoder(rr.Body).Decode(&added)) {
				assert.True(t, added.Added)
			}
		}(i)
	}
	wg.Wait()

	rr := serve(h, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list InventoryResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Len(t, list.Items, n)
}
