package config

import (
	"log/slog"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "PDFBM_API_KEY", "PDFBM_MARKER", "PDFBM_OUTPUT_SUFFIX", "PDFBM_MAX_UPLOAD_BYTES", "PDFBM_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.Marker != '+' {
		t.Errorf("expected marker '+', got %q", cfg.Marker)
	}
	if cfg.OutputSuffix != "-new" {
		t.Errorf("expected suffix -new, got %q", cfg.OutputSuffix)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("expected 50MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %v", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PDFBM_MARKER", "*")
	t.Setenv("PDFBM_OUTPUT_SUFFIX", "(new)")
	t.Setenv("PDFBM_MAX_UPLOAD_BYTES", "1024")
	t.Setenv("PDFBM_LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.Port != "9000" || cfg.Marker != '*' || cfg.OutputSuffix != "(new)" || cfg.MaxUploadBytes != 1024 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("PDFBM_MARKER", "++")
	t.Setenv("PDFBM_MAX_UPLOAD_BYTES", "-5")
	t.Setenv("PDFBM_LOG_LEVEL", "loud")

	cfg := Load()
	if cfg.Marker != '+' {
		t.Errorf("expected fallback marker, got %q", cfg.Marker)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("expected fallback upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected fallback level, got %v", cfg.LogLevel)
	}
}

func TestValidate_Rejects(t *testing.T) {
	base := Config{Port: "8090", Marker: '+', OutputSuffix: "-new", MaxUploadBytes: 1}
	tests := map[string]func(*Config){
		"port":     func(c *Config) { c.Port = "http" },
		"quote":    func(c *Config) { c.Marker = '"' },
		"pipe":     func(c *Config) { c.Marker = '|' },
		"space":    func(c *Config) { c.Marker = ' ' },
		"suffix":   func(c *Config) { c.OutputSuffix = "" },
		"limit":    func(c *Config) { c.MaxUploadBytes = 0 },
		"negative": func(c *Config) { c.MaxUploadBytes = -1 },
	}
	for name, mutate := range tests {
		cfg := base
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
