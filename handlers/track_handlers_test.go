package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"activitymonitor/api/ingest"
	"activitymonitor/api/middleware"
	"activitymonitor/api/models"
	"activitymonitor/api/store"
)

func setupRouter(policy ingest.Policy, protected bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	sink := &store.ConsoleStore{Out: io.Discard}
	processor := ingest.NewProcessor(sink, policy)
	trackHandlers := NewTrackHandlers(processor)

	r := gin.New()
	group := r.Group("/api")
	if protected {
		group.Use(middleware.AuthRequired())
	}
	group.POST("/track", trackHandlers.TrackEvents)
	return r
}

func batchBody(t *testing.T, events ...string) *bytes.Buffer {
	t.Helper()

	raw := make([]json.RawMessage, len(events))
	for i, e := range events {
		raw[i] = json.RawMessage(e)
	}
	body, err := json.Marshal(map[string]any{
		"payload": map[string]any{"events": raw},
	})
	if err != nil {
		t.Fatalf("Failed to build request body: %v", err)
	}
	return bytes.NewBuffer(body)
}

const validClick = `{
	"session_id": "11111111-1111-1111-1111-111111111111",
	"website_id": "22222222-2222-2222-2222-222222222222",
	"url": "https://example.com",
	"timestamp": "2024-05-01T10:00:00Z",
	"event_type": "click",
	"payload": {"element_id": "btn", "position": {"x": 1, "y": 2}}
}`

const invalidEvent = `{"event_type": "click", "payload": {}}`

func postBatch(r *gin.Engine, body *bytes.Buffer) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/track", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) models.BatchEventResponse {
	t.Helper()
	var resp models.BatchEventResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestTrackEventsSuccess(t *testing.T) {
	r := setupRouter(ingest.PolicyBestEffort, false)

	w := postBatch(r, batchBody(t, validClick, validClick))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if !resp.Success {
		t.Errorf("Expected success, got message: %s", resp.Message)
	}
	if resp.ProcessedEventCount != 2 {
		t.Errorf("Expected 2 processed events, got %d", resp.ProcessedEventCount)
	}
}

func TestTrackEventsInvalidJSON(t *testing.T) {
	r := setupRouter(ingest.PolicyBestEffort, false)

	w := postBatch(r, bytes.NewBufferString(`{"payload": {"events": [not json]}}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestTrackEventsMissingEvents(t *testing.T) {
	r := setupRouter(ingest.PolicyBestEffort, false)

	w := postBatch(r, bytes.NewBufferString(`{"payload": {}}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing events list, got %d", w.Code)
	}
}

func TestTrackEventsEmptyBatchRejected(t *testing.T) {
	r := setupRouter(ingest.PolicyBestEffort, false)

	w := postBatch(r, bytes.NewBufferString(`{"payload": {"events": []}}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for empty batch, got %d", w.Code)
	}
}

func TestTrackEventsPartialFailure(t *testing.T) {
	r := setupRouter(ingest.PolicyBestEffort, false)

	w := postBatch(r, batchBody(t, validClick, invalidEvent))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 (faults reported in body), got %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Success {
		t.Error("Expected success=false")
	}
	if resp.ProcessedEventCount != 1 {
		t.Errorf("Expected 1 processed event, got %d", resp.ProcessedEventCount)
	}
}

func TestTrackEventsAllOrNothing(t *testing.T) {
	r := setupRouter(ingest.PolicyAllOrNothing, false)

	w := postBatch(r, batchBody(t, validClick, invalidEvent))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Success || resp.ProcessedEventCount != 0 {
		t.Errorf("Expected rejected batch with 0 processed, got %+v", resp)
	}
}

func TestTrackEventsRequiresAuth(t *testing.T) {
	r := setupRouter(ingest.PolicyBestEffort, true)

	w := postBatch(r, batchBody(t, validClick))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without credentials, got %d", w.Code)
	}
}

func TestTrackEventsAPIKeyBypass(t *testing.T) {
	t.Setenv("AUTH_DEFAULT", "tracker-api-key")
	r := setupRouter(ingest.PolicyBestEffort, true)

	req := httptest.NewRequest(http.MethodPost, "/api/track", batchBody(t, validClick))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", "tracker-api-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 with tracker API key, got %d: %s", w.Code, w.Body.String())
	}
}
