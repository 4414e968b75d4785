package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agroplot/agroplot/internal/domain"
)

// Mock is a canned domain.TextGenerator for local mode and tests. If
// Err is set, every call fails with it.
type Mock struct {
	Err error
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) GenerateText(ctx context.Context, prompt, model string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("You asked: %q. This is a canned reply.", prompt), nil
}

func (m *Mock) StreamText(ctx context.Context, prompt, model string, onChunk func(text string) error) error {
	if m.Err != nil {
		return m.Err
	}

	text, _ := m.GenerateText(ctx, prompt, model)
	for _, word := range strings.SplitAfter(text, " ") {
		if err := onChunk(word); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mock) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return []domain.ModelInfo{
		{
			Name:             "models/gemini-2.0-flash-exp",
			DisplayName:      "Gemini 2.0 Flash (experimental)",
			Description:      "Fast general-purpose model",
			SupportedMethods: []string{"generateContent", "streamGenerateContent"},
		},
		{
			Name:             "models/gemini-2.5-pro",
			DisplayName:      "Gemini 2.5 Pro",
			Description:      "Long-context reasoning model",
			SupportedMethods: []string{"generateContent", "streamGenerateContent"},
		},
	}, nil
}
