package main

import (
	"context"
	"log"
	"net/http"

	httpadapter "github.com/agroplot/agroplot/internal/adapters/http"
	"github.com/agroplot/agroplot/internal/adapters/llm"
	firestorestore "github.com/agroplot/agroplot/internal/adapters/storage/firestore"
	memstore "github.com/agroplot/agroplot/internal/adapters/storage/memory"
	"github.com/agroplot/agroplot/internal/app/chathistory"
	"github.com/agroplot/agroplot/internal/app/fields"
	"github.com/agroplot/agroplot/internal/config"
	"github.com/agroplot/agroplot/internal/domain"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Generator: mock or Gemini by config (mock is the local default).
	var (
		generator domain.TextGenerator
		err       error
	)
	if cfg.UseMockLLM {
		log.Println("[LLM] Using MOCK generator")
		generator = llm.NewMock()
	} else {
		log.Println("[LLM] Using Gemini generator")
		generator, err = llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("error initializing Gemini client: %v", err)
		}
	}

	// Storage: Firestore or Memory.
	var sessionStore domain.SessionStore
	var fieldStore domain.FieldStore

	switch cfg.StorageBackend {
	case "firestore":
		if cfg.GCPProjectID == "" {
			log.Fatal("AGROPLOT_GCP_PROJECT is required for Firestore storage backend")
		}

		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}

		// 1 store, implements 2 interfaces
		sessionStore = fsStore
		fieldStore = fsStore

	default:
		log.Println("[STORE] Using in-memory storage")
		sessionStore = memstore.NewSessionStore()
		fieldStore = memstore.NewFieldStore()
	}

	chatSvc := chathistory.NewService(sessionStore)
	fieldSvc := fields.NewService(fieldStore)

	handler := httpadapter.NewServer(generator, cfg.ModelName, chatSvc, fieldSvc)

	port := ":" + cfg.Port
	log.Println("agroplot API listening on port:", port)
	if err := http.ListenAndServe(port, handler); err != nil {
		log.Fatal(err)
	}
}
