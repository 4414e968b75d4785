// Package client is the Go face of the web client's AI adapter: it
// resolves which gateway deployment to talk to and exposes buffered and
// streaming prompt helpers plus the model catalog.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/agroplot/agroplot/internal/config"
	"github.com/agroplot/agroplot/internal/domain"
)

// Deployed gateway function names. Locally the same handlers are served
// under /api/gemini on the dev server.
const (
	functionGenerate       = "/geminiChatV2"
	functionGenerateStream = "/geminiChatStreamV2"
	functionListModels     = "/geminiModelsV2"
)

type Client struct {
	httpClient *http.Client

	generateURL string
	streamURL   string
	modelsURL   string
}

// New resolves the endpoints from the runtime mode: gcp mode targets
// the deployed functions templated with region and project, local mode
// targets the dev server routes.
func New(cfg *config.Config) *Client {
	c := &Client{httpClient: http.DefaultClient}

	if cfg.Mode == config.ModeGCP {
		base := cfg.FunctionsBaseURL()
		c.generateURL = base + functionGenerate
		c.streamURL = base + functionGenerateStream
		c.modelsURL = base + functionListModels
	} else {
		base := "http://localhost:" + cfg.Port
		c.generateURL = base + "/api/gemini"
		c.streamURL = base + "/api/gemini/stream"
		c.modelsURL = base + "/api/gemini/models"
	}

	return c
}

// GenerateURL exposes the resolved generate endpoint, mostly for
// startup logging.
func (c *Client) GenerateURL() string {
	return c.generateURL
}

type promptRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

type promptResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Model   string `json:"model"`
	Error   string `json:"error"`
}

type modelsResponse struct {
	Success bool               `json:"success"`
	Models  []domain.ModelInfo `json:"models"`
	Error   string             `json:"error"`
}

// SendPrompt sends a prompt and returns the full generated text. An
// empty model selects the gateway default.
func (c *Client) SendPrompt(ctx context.Context, prompt, model string) (string, error) {
	resp, err := c.post(ctx, c.generateURL, prompt, model)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out promptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return "", fmt.Errorf("gateway: %s", out.Error)
		}
		return "", fmt.Errorf("gateway: unexpected status %d", resp.StatusCode)
	}

	return out.Text, nil
}

// SendPromptStream sends a prompt and delivers the response body to
// onChunk piece by piece until the stream ends. It fails if the
// gateway answers a non-success status before any streaming begins.
func (c *Client) SendPromptStream(ctx context.Context, prompt, model string, onChunk func(text string)) error {
	resp, err := c.post(ctx, c.streamURL, prompt, model)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var out promptResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && out.Error != "" {
			return fmt.Errorf("gateway: %s", out.Error)
		}
		return fmt.Errorf("gateway: unexpected status %d", resp.StatusCode)
	}

	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			onChunk(string(buf[:n]))
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading stream: %w", err)
		}
	}
}

// ListModels fetches the provider's model catalog from the gateway.
func (c *Client) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelsURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	var out modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return nil, fmt.Errorf("gateway: %s", out.Error)
		}
		return nil, fmt.Errorf("gateway: unexpected status %d", resp.StatusCode)
	}

	return out.Models, nil
}

func (c *Client) post(ctx context.Context, url, prompt, model string) (*http.Response, error) {
	body, err := json.Marshal(promptRequest{Prompt: prompt, Model: model})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gateway: %w", err)
	}
	return resp, nil
}
