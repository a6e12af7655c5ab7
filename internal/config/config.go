package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Auth
	JWTSecret string

	// Text generation (Gemini primary)
	GeminiAPIKey string
	GeminiModel  string

	// Text generation fallback (OpenAI-compatible)
	FallbackAPIURL string
	FallbackAPIKey string
	FallbackModel  string

	// Speech transcription
	TranscribeAPIURL string
	TranscribeAPIKey string
	TranscribeModel  string

	// Timeouts
	GenerateTimeoutSeconds int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	generateTimeout, _ := strconv.Atoi(getEnv("GENERATE_TIMEOUT_SECONDS", "45"))
	return &Config{
		Port:                   getEnv("PORT", "8099"),
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 getEnv("DB_PORT", "5432"),
		DBUser:                 getEnv("DB_USER", "postgres"),
		DBPassword:             getEnv("DB_PASSWORD", ""),
		DBName:                 getEnv("DB_NAME", "agentarium_db"),
		DBSSLMode:              getEnv("DB_SSLMODE", "disable"),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		GeminiModel:            getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		FallbackAPIURL:         getEnv("FALLBACK_API_URL", "https://api.openai.com/v1/chat/completions"),
		FallbackAPIKey:         getEnv("FALLBACK_API_KEY", ""),
		FallbackModel:          getEnv("FALLBACK_MODEL", "gpt-4o-mini"),
		TranscribeAPIURL:       getEnv("TRANSCRIBE_API_URL", "https://api.openai.com/v1/audio/transcriptions"),
		TranscribeAPIKey:       getEnv("TRANSCRIBE_API_KEY", ""),
		TranscribeModel:        getEnv("TRANSCRIBE_MODEL", "whisper-1"),
		GenerateTimeoutSeconds: generateTimeout,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
