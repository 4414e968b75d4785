package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/agroplot/agroplot/internal/app/chathistory"
	"github.com/agroplot/agroplot/internal/app/fields"
	"github.com/agroplot/agroplot/internal/domain"
)

type Server struct {
	chats  *chathistory.Service
	fields *fields.Service
}

// NewServer wires the gateway function endpoints and the persistence
// REST routes onto one router.
func NewServer(gen domain.TextGenerator, defaultModel string, chats *chathistory.Service, flds *fields.Service) http.Handler {
	s := &Server{chats: chats, fields: flds}

	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(withLogging)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Gateway functions carry their own CORS/method policy so they stay
	// deployable on their own.
	r.Handle("/api/gemini", GenerateFunc(gen, defaultModel))
	r.Handle("/api/gemini/stream", GenerateStreamFunc(gen, defaultModel))
	r.Handle("/api/gemini/models", ListModelsFunc(gen))

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Route("/api/sessions", func(r chi.Router) {
			r.Post("/", s.handleSaveHistory)
			r.Get("/", s.handleListSessions)
			r.Get("/{id}", s.handleGetSession)
		})

		r.Route("/api/fields", func(r chi.Router) {
			r.Post("/", s.handleCreateField)
			r.Get("/", s.handleListFields)
			r.Get("/{id}", s.handleGetField)
			r.Patch("/{id}", s.handleUpdateField)
			r.Delete("/{id}", s.handleDeleteField)
		})
	})

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type saveHistoryRequest struct {
	Messages  []domain.Message `json:"messages"`
	SessionID string           `json:"sessionId,omitempty"`
	UserID    string           `json:"userId,omitempty"`
}

type saveHistoryResponse struct {
	SessionID string `json:"sessionId"`
}

type sessionResponse struct {
	ID        string           `json:"id"`
	Messages  []domain.Message `json:"messages"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	UserID    string           `json:"userId"`
}

type createFieldResponse struct {
	ID string `json:"id"`
}

func toSessionResponse(s *domain.ChatSession) sessionResponse {
	msgs := s.Messages
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return sessionResponse{
		ID:        string(s.ID),
		Messages:  msgs,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		UserID:    string(s.UserID),
	}
}

// ─────────────────────────────────────────────
// Chat history handlers
// ─────────────────────────────────────────────

func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	var req saveHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if len(req.Messages) == 0 {
		badRequest(w, "messages are required")
		return
	}

	var (
		id  domain.SessionID
		err error
	)
	if req.SessionID == "" && req.UserID != "" {
		id, err = s.chats.CreateSession(r.Context(), req.Messages, domain.UserID(req.UserID))
	} else {
		id, err = s.chats.SaveHistory(r.Context(), req.Messages, domain.SessionID(req.SessionID))
	}
	if err != nil {
		internalError(w, err)
		return
	}

	status := http.StatusOK
	if req.SessionID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, saveHistoryResponse{SessionID: string(id)})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions := s.chats.ListRecentSessions(r.Context(), limit)

	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(chi.URLParam(r, "id"))

	session := s.chats.GetSession(r.Context(), id)
	if session == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// ─────────────────────────────────────────────
// Field handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateField(w http.ResponseWriter, r *http.Request) {
	var field domain.Field
	if err := json.NewDecoder(r.Body).Decode(&field); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if field.Name == "" {
		badRequest(w, "name is required")
		return
	}

	id, err := s.fields.CreateField(r.Context(), &field)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createFieldResponse{ID: string(id)})
}

func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	out := s.fields.GetAllFields(r.Context())
	if out == nil {
		out = []*domain.Field{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetField(w http.ResponseWriter, r *http.Request) {
	id := domain.FieldID(chi.URLParam(r, "id"))

	field := s.fields.GetFieldByID(r.Context(), id)
	if field == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, field)
}

func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	id := domain.FieldID(chi.URLParam(r, "id"))

	var patch domain.FieldPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if err := s.fields.UpdateField(r.Context(), id, patch); err != nil {
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteField(w http.ResponseWriter, r *http.Request) {
	id := domain.FieldID(chi.URLParam(r, "id"))

	if err := s.fields.DeleteField(r.Context(), id); err != nil {
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
	})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "Method Not Allowed",
	})
}

func upstreamError(w http.ResponseWriter, msg string, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   msg,
		"details": err.Error(),
	})
}
