package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string

	GCPProjectID    string
	GCPLocation     string
	FunctionsRegion string

	GeminiAPIKey string
	ModelName    string

	StorageBackend string // "memory" or "firestore"
	UseMockLLM     bool   // true = use mock even on GCP
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

// Load reads .env (if present) plus env vars and builds the config.
func Load() *Config {
	// Missing .env is fine; deployed environments inject real env vars.
	_ = godotenv.Load()

	modeStr := getEnv("AGROPLOT_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("AGROPLOT_PORT", "8080"),

		GCPProjectID:    getEnv("AGROPLOT_GCP_PROJECT", ""),
		GCPLocation:     getEnv("AGROPLOT_GCP_LOCATION", "us-central1"),
		FunctionsRegion: getEnv("AGROPLOT_FUNCTIONS_REGION", "europe-west1"),

		GeminiAPIKey: getEnv("AGROPLOT_GEMINI_API_KEY", ""),
		ModelName:    getEnv("AGROPLOT_MODEL_NAME", "gemini-2.0-flash-exp"),

		StorageBackend: getEnv("AGROPLOT_STORAGE_BACKEND", "memory"),
		UseMockLLM:     getBoolEnv("AGROPLOT_USE_MOCK_LLM", mode == ModeLocal),
	}

	// Minimal validation in GCP mode.
	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		log.Fatal("AGROPLOT_GCP_PROJECT must be set in gcp mode")
	}

	return cfg
}

// FunctionsBaseURL is the deployed gateway root the web client targets
// in production, templated with the region and project.
func (c *Config) FunctionsBaseURL() string {
	return fmt.Sprintf("https://%s-%s.cloudfunctions.net", c.FunctionsRegion, c.GCPProjectID)
}
