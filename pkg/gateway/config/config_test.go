package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MOCKMATE_ADDR", "MOCKMATE_AUTH_MODE", "MOCKMATE_API_KEYS",
		"MOCKMATE_DEV_OWNER", "MOCKMATE_DATABASE_URL", "GEMINI_API_KEY",
		"MOCKMATE_GEMINI_MODEL", "MOCKMATE_GENERATION_TIMEOUT",
		"MOCKMATE_MAX_BODY_BYTES", "MOCKMATE_CORS_ORIGINS",
		"MOCKMATE_VOICE_MAX_FRAME_BYTES", "MOCKMATE_VOICE_MAX_AUDIO_BYTES",
		"MOCKMATE_VOICE_WRITE_TIMEOUT", "MOCKMATE_READ_HEADER_TIMEOUT",
		"MOCKMATE_READ_TIMEOUT", "MOCKMATE_SHUTDOWN_GRACE_PERIOD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOCKMATE_AUTH_MODE", "disabled")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.DevOwner != "local" {
		t.Fatalf("DevOwner = %q", cfg.DevOwner)
	}
	if cfg.GeminiModel != "gemini-1.5-pro" {
		t.Fatalf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.GenerationTimeout != 15*time.Second {
		t.Fatalf("GenerationTimeout = %v", cfg.GenerationTimeout)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("MaxBodyBytes = %d", cfg.MaxBodyBytes)
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFromEnvParsesAPIKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOCKMATE_AUTH_MODE", "required")
	t.Setenv("MOCKMATE_API_KEYS", "alice:tok_a, bob:tok_b")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.APIKeys["tok_a"] != "alice" || cfg.APIKeys["tok_b"] != "bob" {
		t.Fatalf("APIKeys = %v", cfg.APIKeys)
	}
}

func TestLoadFromEnvRejectsBadAPIKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOCKMATE_AUTH_MODE", "required")
	t.Setenv("MOCKMATE_API_KEYS", "missing-colon")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("LoadFromEnv accepted a malformed api key entry")
	}
}

func TestLoadFromEnvRequiresKeysWhenAuthRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOCKMATE_AUTH_MODE", "required")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("LoadFromEnv accepted required auth without keys")
	}
}

func TestLoadFromEnvRejectsUnknownAuthMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOCKMATE_AUTH_MODE", "maybe")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("LoadFromEnv accepted an unknown auth mode")
	}
}

func TestLoadFromEnvCORSOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOCKMATE_AUTH_MODE", "disabled")
	t.Setenv("MOCKMATE_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if _, ok := cfg.CORSAllowedOrigins["https://a.example"]; !ok {
		t.Fatalf("origin a missing: %v", cfg.CORSAllowedOrigins)
	}
	if _, ok := cfg.CORSAllowedOrigins["https://b.example"]; !ok {
		t.Fatalf("origin b missing: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFromEnvVoiceLimits(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOCKMATE_AUTH_MODE", "disabled")
	t.Setenv("MOCKMATE_VOICE_MAX_FRAME_BYTES", "1024")
	t.Setenv("MOCKMATE_VOICE_MAX_AUDIO_BYTES", "512")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("LoadFromEnv accepted audio limit below frame limit")
	}
}
