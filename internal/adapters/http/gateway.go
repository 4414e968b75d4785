package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/agroplot/agroplot/internal/domain"
	"github.com/agroplot/agroplot/internal/observability"
)

// Gateway function endpoints. Each handler is self-contained — method
// dispatch, CORS and error conversion included — so it can also be
// deployed on its own as a cloud function. They share one policy:
// OPTIONS preflight answers 204 with no body, a wrong method answers
// 405, provider failures are relayed as 500 with the provider message.

type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

type generateResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Model   string `json:"model"`
}

type listModelsResponse struct {
	Success bool               `json:"success"`
	Models  []domain.ModelInfo `json:"models"`
}

// withFunctionCORS applies the shared gateway CORS/preflight policy.
func withFunctionCORS(allowMethods string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", allowMethods)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// GenerateFunc answers POST {prompt, model?} with the generated text.
// defaultModel is used (and echoed) when the request names no model.
func GenerateFunc(gen domain.TextGenerator, defaultModel string) http.HandlerFunc {
	return withFunctionCORS("POST, OPTIONS", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
		if req.Prompt == "" {
			badRequest(w, "Prompt is required")
			return
		}

		model := req.Model
		if model == "" {
			model = defaultModel
		}

		log := observability.LoggerFromContext(r.Context())
		log.Info("generating content", "model", model)

		text, err := gen.GenerateText(r.Context(), req.Prompt, model)
		if err != nil {
			log.Error("provider call failed", "model", model, "error", err)
			upstreamError(w, "Failed to generate response", err)
			return
		}

		writeJSON(w, http.StatusOK, generateResponse{
			Success: true,
			Text:    text,
			Model:   model,
		})
	})
}

// GenerateStreamFunc is the chunked variant: the generated text is
// written to the response body chunk by chunk as the provider produces
// it. A provider failure before the first chunk is a 500; after
// streaming has begun the stream just ends.
func GenerateStreamFunc(gen domain.TextGenerator, defaultModel string) http.HandlerFunc {
	return withFunctionCORS("POST, OPTIONS", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
		if req.Prompt == "" {
			badRequest(w, "Prompt is required")
			return
		}

		model := req.Model
		if model == "" {
			model = defaultModel
		}

		log := observability.LoggerFromContext(r.Context())
		log.Info("streaming content", "model", model)

		flusher, _ := w.(http.Flusher)
		started := false

		err := gen.StreamText(r.Context(), req.Prompt, model, func(text string) error {
			if !started {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				started = true
			}
			if _, werr := io.WriteString(w, text); werr != nil {
				return werr
			}
			if flusher != nil {
				flusher.Flush()
			}
			return nil
		})
		if err != nil {
			if !started {
				log.Error("provider stream failed", "model", model, "error", err)
				upstreamError(w, "Failed to generate response", err)
				return
			}
			// Mid-stream there is nothing left to signal but the end of
			// the body.
			log.Error("provider stream aborted", "model", model, "error", err)
		}
	})
}

// ListModelsFunc answers GET with the provider's model catalog.
func ListModelsFunc(gen domain.TextGenerator) http.HandlerFunc {
	return withFunctionCORS("GET, OPTIONS", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}

		models, err := gen.ListModels(r.Context())
		if err != nil {
			observability.LoggerFromContext(r.Context()).Error("listing models failed", "error", err)
			upstreamError(w, "Failed to list models", err)
			return
		}

		writeJSON(w, http.StatusOK, listModelsResponse{
			Success: true,
			Models:  models,
		})
	})
}
