package httpadapter_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/agroplot/agroplot/internal/adapters/http"
	"github.com/agroplot/agroplot/internal/adapters/llm"
	"github.com/agroplot/agroplot/internal/adapters/storage/memory"
	"github.com/agroplot/agroplot/internal/app/chathistory"
	"github.com/agroplot/agroplot/internal/app/fields"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	chatSvc := chathistory.NewService(memory.NewSessionStore())
	fieldSvc := fields.NewService(memory.NewFieldStore())

	return httpadapter.NewServer(llm.NewMock(), testDefaultModel, chatSvc, fieldSvc)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestSessionSaveAndFetch(t *testing.T) {
	srv := newTestServer(t)

	// Create
	w := doJSON(t, srv, http.MethodPost, "/api/sessions",
		`{"messages":[{"role":"user","content":"hi"}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var created struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if created.SessionID == "" {
		t.Fatalf("expected a session id")
	}

	// Update in place
	w = doJSON(t, srv, http.MethodPost, "/api/sessions",
		`{"sessionId":"`+created.SessionID+`","messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d, body=%s", w.Code, w.Body.String())
	}

	// Fetch back
	w = doJSON(t, srv, http.MethodGet, "/api/sessions/"+created.SessionID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var session struct {
		ID       string `json:"id"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &session); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if session.ID != created.SessionID {
		t.Errorf("expected id %q, got %q", created.SessionID, session.ID)
	}
	if len(session.Messages) != 2 {
		t.Fatalf("expected updated message list, got %d messages", len(session.Messages))
	}
	if session.Messages[1].Role != "assistant" {
		t.Errorf("expected assistant reply preserved, got %+v", session.Messages[1])
	}
	if session.UserID != "anonymous" {
		t.Errorf("expected anonymous owner, got %q", session.UserID)
	}
}

func TestListSessionsLimit(t *testing.T) {
	srv := newTestServer(t)

	for _, text := range []string{"one", "two", "three"} {
		w := doJSON(t, srv, http.MethodPost, "/api/sessions",
			`{"messages":[{"role":"user","content":"`+text+`"}]}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("seeding session: got %d", w.Code)
		}
	}

	w := doJSON(t, srv, http.MethodGet, "/api/sessions?limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var sessions []struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].Messages[0].Content != "three" {
		t.Errorf("expected newest session first, got %q", sessions[0].Messages[0].Content)
	}
}

func TestFieldCRUD(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/fields",
		`{"type":"agriculture","name":"North field","length":120,"width":80,"unit":"ha","crop":"wheat","status":"planted"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected a field id")
	}

	// Read back
	w = doJSON(t, srv, http.MethodGet, "/api/fields/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var field struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Crop string `json:"crop"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &field); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if field.ID != created.ID || field.Name != "North field" {
		t.Errorf("unexpected field %+v", field)
	}

	// Partial update: only crop changes
	w = doJSON(t, srv, http.MethodPatch, "/api/fields/"+created.ID, `{"crop":"barley"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d, body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodGet, "/api/fields/"+created.ID, "")
	if err := json.Unmarshal(w.Body.Bytes(), &field); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if field.Crop != "barley" {
		t.Errorf("expected patched crop, got %q", field.Crop)
	}
	if field.Name != "North field" {
		t.Errorf("expected untouched name, got %q", field.Name)
	}

	// Delete, then the record is gone and deleting again is fine
	w = doJSON(t, srv, http.MethodDelete, "/api/fields/"+created.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = doJSON(t, srv, http.MethodGet, "/api/fields/"+created.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
	w = doJSON(t, srv, http.MethodDelete, "/api/fields/"+created.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected idempotent delete, got %d", w.Code)
	}
}
