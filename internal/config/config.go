// Package config loads application configuration from the environment.
//
// The pipeline runs with zero configuration: every setting has a working
// default and validation only rejects values it cannot interpret.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
)

// OCR engine selection for the second extraction pass.
const (
	OCREngineTesseract = "tesseract"
	OCREngineVision    = "vision"
	OCREngineOff       = "off"
)

type Config struct {
	// OwnCUIT is the caller's own tax ID, excluded from tax ID candidates
	// so the recipient's registration printed on the invoice is never
	// mistaken for the issuer's.
	OwnCUIT string

	// OCR second pass configuration
	OCREngine   string // tesseract, vision or off
	OCRLanguage string // tesseract language pack

	// Optional LLM fallback extractor (OpenAI-compatible endpoint)
	AIFallback bool
	AIBaseURL  string
	AIAPIKey   string
	AIModel    string

	// Batch processing
	BatchWorkers int

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OwnCUIT:       getEnv("OWN_CUIT", ""),
		OCREngine:     getEnv("OCR_ENGINE", OCREngineTesseract),
		OCRLanguage:   getEnv("OCR_LANGUAGE", "spa"),
		AIFallback:    getEnv("AI_FALLBACK", "") == "true",
		AIBaseURL:     getEnv("AI_BASE_URL", ""),
		AIAPIKey:      getEnv("AI_API_KEY", ""),
		AIModel:       getEnv("AI_MODEL", "qwen2.5"),
		BatchWorkers:  getEnvInt("BATCH_WORKERS", 4),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OCREngine {
	case OCREngineTesseract, OCREngineVision, OCREngineOff:
	default:
		return fmt.Errorf("OCR_ENGINE must be one of tesseract, vision, off; got %q", c.OCREngine)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be positive, got %d", c.BatchWorkers)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
