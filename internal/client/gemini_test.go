package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	httpadapter "github.com/agroplot/agroplot/internal/adapters/http"
	"github.com/agroplot/agroplot/internal/adapters/llm"
	"github.com/agroplot/agroplot/internal/adapters/storage/memory"
	"github.com/agroplot/agroplot/internal/app/chathistory"
	"github.com/agroplot/agroplot/internal/app/fields"
	"github.com/agroplot/agroplot/internal/client"
	"github.com/agroplot/agroplot/internal/config"
)

// newGatewayClient starts the real gateway on a loopback listener and
// points a local-mode client at it.
func newGatewayClient(t *testing.T, gen *llm.Mock) *client.Client {
	t.Helper()

	handler := httpadapter.NewServer(gen, "gemini-2.0-flash-exp",
		chathistory.NewService(memory.NewSessionStore()),
		fields.NewService(memory.NewFieldStore()))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parsing test server url: %v", err)
	}

	return client.New(&config.Config{
		Mode: config.ModeLocal,
		Port: u.Port(),
	})
}

func TestSendPrompt(t *testing.T) {
	c := newGatewayClient(t, llm.NewMock())

	text, err := c.SendPrompt(context.Background(), "Hello", "")
	if err != nil {
		t.Fatalf("SendPrompt failed: %v", err)
	}
	if text == "" {
		t.Fatalf("expected non-empty text")
	}
}

func TestSendPromptRelaysError(t *testing.T) {
	gen := llm.NewMock()
	gen.Err = errors.New("quota exceeded")
	c := newGatewayClient(t, gen)

	_, err := c.SendPrompt(context.Background(), "Hello", "")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !strings.Contains(err.Error(), "Failed to generate response") {
		t.Errorf("expected relayed gateway error, got %v", err)
	}
}

func TestSendPromptStream(t *testing.T) {
	gen := llm.NewMock()
	c := newGatewayClient(t, gen)

	var chunks []string
	err := c.SendPromptStream(context.Background(), "Hello", "", func(text string) {
		chunks = append(chunks, text)
	})
	if err != nil {
		t.Fatalf("SendPromptStream failed: %v", err)
	}

	full, err := gen.GenerateText(context.Background(), "Hello", "")
	if err != nil {
		t.Fatalf("mock generate: %v", err)
	}
	if strings.Join(chunks, "") != full {
		t.Errorf("expected chunks to reassemble the full text, got %q", strings.Join(chunks, ""))
	}
}

func TestSendPromptStreamFailsBeforeStart(t *testing.T) {
	gen := llm.NewMock()
	gen.Err = errors.New("model overloaded")
	c := newGatewayClient(t, gen)

	err := c.SendPromptStream(context.Background(), "Hello", "", func(string) {
		t.Errorf("no chunk expected on failure")
	})
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestListModels(t *testing.T) {
	c := newGatewayClient(t, llm.NewMock())

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) == 0 {
		t.Fatalf("expected a non-empty catalog")
	}
	if models[0].Name == "" || len(models[0].SupportedMethods) == 0 {
		t.Errorf("expected populated projection, got %+v", models[0])
	}
}

func TestProductionEndpointResolution(t *testing.T) {
	c := client.New(&config.Config{
		Mode:            config.ModeGCP,
		GCPProjectID:    "demo-project",
		FunctionsRegion: "europe-west1",
	})

	want := "https://europe-west1-demo-project.cloudfunctions.net/geminiChatV2"
	if got := c.GenerateURL(); got != want {
		t.Errorf("expected deployed function url %q, got %q", want, got)
	}

	local := client.New(&config.Config{Mode: config.ModeLocal, Port: "8080"})
	if got := local.GenerateURL(); got != "http://localhost:8080/api/gemini" {
		t.Errorf("expected local dev route, got %q", got)
	}
}
