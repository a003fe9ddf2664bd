package config

import (
	"os"
)

type Config struct {
	HTTPAddr      string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	ServiceName   string
}

func Load() Config {
	return Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		GeminiAPIKey:  getenv("GEMINI_API_KEY", ""),
		GeminiModel:   getenv("GEMINI_MODEL", "gemini-3-flash-preview"),
		GeminiBaseURL: getenv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		ServiceName:   getenv("SERVICE_NAME", "meumercado-api"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
