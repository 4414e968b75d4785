package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/agroplot/agroplot/internal/config"
	"github.com/agroplot/agroplot/internal/domain"
)

// maxOutputTokens is the output ceiling requested on every generation.
const maxOutputTokens = int32(2048)

// GeminiClient implements domain.TextGenerator on the Gemini API.
type GeminiClient struct {
	client       *genai.Client
	defaultModel string
}

// NewGeminiClient builds the provider client. With an API key it talks
// to the Gemini API directly; otherwise it goes through Vertex AI and
// needs a project and location.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	var clientCfg *genai.ClientConfig

	if cfg.GeminiAPIKey != "" {
		clientCfg = &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		}
	} else {
		if cfg.GCPProjectID == "" || cfg.GCPLocation == "" {
			return nil, fmt.Errorf("either AGROPLOT_GEMINI_API_KEY or AGROPLOT_GCP_PROJECT and AGROPLOT_GCP_LOCATION must be set")
		}
		clientCfg = &genai.ClientConfig{
			Project:  cfg.GCPProjectID,
			Location: cfg.GCPLocation,
			Backend:  genai.BackendVertexAI,
		}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{
		client:       client,
		defaultModel: cfg.ModelName,
	}, nil
}

func (g *GeminiClient) model(requested string) string {
	if requested != "" {
		return requested
	}
	return g.defaultModel
}

// GenerateText implements domain.TextGenerator.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt, model string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: maxOutputTokens,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model(model), contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}

// StreamText implements domain.TextGenerator.
func (g *GeminiClient) StreamText(ctx context.Context, prompt, model string, onChunk func(text string) error) error {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: maxOutputTokens,
	}

	for res, err := range g.client.Models.GenerateContentStream(ctx, g.model(model), contents, cfg) {
		if err != nil {
			return fmt.Errorf("gemini stream content: %w", err)
		}
		if text := res.Text(); text != "" {
			if err := onChunk(text); err != nil {
				return err
			}
		}
	}
	return nil
}

// ListModels implements domain.TextGenerator.
func (g *GeminiClient) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	var out []domain.ModelInfo
	for m, err := range g.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("gemini list models: %w", err)
		}
		out = append(out, domain.ModelInfo{
			Name:             m.Name,
			DisplayName:      m.DisplayName,
			Description:      m.Description,
			SupportedMethods: m.SupportedActions,
		})
	}
	return out, nil
}
