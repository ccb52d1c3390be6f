package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config struct {
	Port string

	// Auth; empty disables it.
	APIKey string

	// Listing format
	Marker rune

	// Output naming: <input basename><OutputSuffix><ext>
	OutputSuffix string

	// Upload limits
	MaxUploadBytes int64

	LogLevel slog.Level
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("PDFBM_API_KEY"),

		Marker: envRune("PDFBM_MARKER", '+'),

		OutputSuffix: envOr("PDFBM_OUTPUT_SUFFIX", "-new"),

		MaxUploadBytes: envInt64("PDFBM_MAX_UPLOAD_BYTES", 52428800), // 50MB

		LogLevel: envLevel("PDFBM_LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	return cfg
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.By(isPort)),
		validation.Field(&c.Marker, validation.By(isMarker)),
		validation.Field(&c.OutputSuffix, validation.Required),
		validation.Field(&c.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
	)
}

func isPort(value any) error {
	s, _ := value.(string)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("must be a TCP port number")
	}
	return nil
}

func isMarker(value any) error {
	r, _ := value.(rune)
	switch {
	case r == 0:
		return fmt.Errorf("must be set")
	case r == '"' || r == '|':
		return fmt.Errorf("cannot be %q", r)
	case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		return fmt.Errorf("cannot be whitespace")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envRune(key string, fallback rune) rune {
	if v := os.Getenv(key); v != "" {
		if r, size := utf8.DecodeRuneInString(v); r != utf8.RuneError && size == len(v) {
			return r
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.ToUpper(v))); err == nil {
			return l
		}
	}
	return fallback
}
