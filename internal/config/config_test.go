package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"OWN_CUIT", "OCR_ENGINE", "OCR_LANGUAGE", "AI_FALLBACK", "BATCH_WORKERS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OCREngine != OCREngineTesseract {
		t.Errorf("OCREngine = %q, want tesseract", cfg.OCREngine)
	}
	if cfg.OCRLanguage != "spa" {
		t.Errorf("OCRLanguage = %q, want spa", cfg.OCRLanguage)
	}
	if cfg.AIFallback {
		t.Error("AIFallback = true, want false by default")
	}
	if cfg.BatchWorkers != 4 {
		t.Errorf("BatchWorkers = %d, want 4", cfg.BatchWorkers)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("OWN_CUIT", "30-54008029-8")
	t.Setenv("OCR_ENGINE", "vision")
	t.Setenv("AI_FALLBACK", "true")
	t.Setenv("BATCH_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OwnCUIT != "30-54008029-8" {
		t.Errorf("OwnCUIT = %q", cfg.OwnCUIT)
	}
	if cfg.OCREngine != OCREngineVision {
		t.Errorf("OCREngine = %q, want vision", cfg.OCREngine)
	}
	if !cfg.AIFallback {
		t.Error("AIFallback = false, want true")
	}
	if cfg.BatchWorkers != 8 {
		t.Errorf("BatchWorkers = %d, want 8", cfg.BatchWorkers)
	}
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	t.Setenv("OCR_ENGINE", "easyocr")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for unknown OCR engine")
	}
}

func TestLoadRejectsZeroWorkers(t *testing.T) {
	t.Setenv("BATCH_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for zero workers")
	}
}
