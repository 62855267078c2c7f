package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AuthMode string

const (
	AuthModeRequired AuthMode = "required"
	AuthModeDisabled AuthMode = "disabled"
)

type Config struct {
	Addr string

	AuthMode AuthMode
	// APIKeys maps bearer tokens to owner ids.
	APIKeys map[string]string
	// DevOwner is the owner id resolved for every request when auth is
	// disabled (local development only).
	DevOwner string

	// DatabaseURL selects the Postgres store; empty selects the in-memory
	// store.
	DatabaseURL string

	// Gemini generation capability. An empty API key runs the engine
	// fallback-only.
	GeminiAPIKey string
	GeminiModel  string

	// GenerationTimeout bounds the external generation call; on expiry the
	// fallback selector takes over.
	GenerationTimeout time.Duration

	MaxBodyBytes int64

	// CORS
	CORSAllowedOrigins map[string]struct{} // empty => disabled

	// Voice websocket limits.
	VoiceMaxFrameBytes int64
	VoiceMaxAudioBytes int64
	VoiceWriteTimeout  time.Duration

	// Operational defaults
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                envOr("MOCKMATE_ADDR", ":8080"),
		AuthMode:            AuthMode(envOr("MOCKMATE_AUTH_MODE", string(AuthModeRequired))),
		APIKeys:             make(map[string]string),
		DevOwner:            envOr("MOCKMATE_DEV_OWNER", "local"),
		DatabaseURL:         strings.TrimSpace(os.Getenv("MOCKMATE_DATABASE_URL")),
		GeminiAPIKey:        strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:         envOr("MOCKMATE_GEMINI_MODEL", "gemini-1.5-pro"),
		GenerationTimeout:   envDurationOr("MOCKMATE_GENERATION_TIMEOUT", 15*time.Second),
		MaxBodyBytes:        envInt64Or("MOCKMATE_MAX_BODY_BYTES", 1<<20), // 1 MiB
		CORSAllowedOrigins:  make(map[string]struct{}),
		VoiceMaxFrameBytes:  envInt64Or("MOCKMATE_VOICE_MAX_FRAME_BYTES", 64<<10),  // 64 KiB
		VoiceMaxAudioBytes:  envInt64Or("MOCKMATE_VOICE_MAX_AUDIO_BYTES", 16<<20), // 16 MiB
		VoiceWriteTimeout:   envDurationOr("MOCKMATE_VOICE_WRITE_TIMEOUT", 5*time.Second),
		ReadHeaderTimeout:   envDurationOr("MOCKMATE_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:         envDurationOr("MOCKMATE_READ_TIMEOUT", 30*time.Second),
		ShutdownGracePeriod: envDurationOr("MOCKMATE_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
	}

	switch cfg.AuthMode {
	case AuthModeRequired, AuthModeDisabled:
	default:
		return Config{}, fmt.Errorf("MOCKMATE_AUTH_MODE must be one of required|disabled")
	}

	// MOCKMATE_API_KEYS is "owner:token" pairs, comma separated.
	for _, pair := range splitCSV(os.Getenv("MOCKMATE_API_KEYS")) {
		owner, token, ok := strings.Cut(pair, ":")
		owner = strings.TrimSpace(owner)
		token = strings.TrimSpace(token)
		if !ok || owner == "" || token == "" {
			return Config{}, fmt.Errorf("MOCKMATE_API_KEYS entries must be owner:token pairs")
		}
		cfg.APIKeys[token] = owner
	}

	for _, origin := range splitCSV(os.Getenv("MOCKMATE_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("MOCKMATE_MAX_BODY_BYTES must be > 0")
	}
	if cfg.GenerationTimeout <= 0 {
		return Config{}, fmt.Errorf("MOCKMATE_GENERATION_TIMEOUT must be > 0")
	}
	if cfg.VoiceMaxFrameBytes <= 0 {
		return Config{}, fmt.Errorf("MOCKMATE_VOICE_MAX_FRAME_BYTES must be > 0")
	}
	if cfg.VoiceMaxAudioBytes < cfg.VoiceMaxFrameBytes {
		return Config{}, fmt.Errorf("MOCKMATE_VOICE_MAX_AUDIO_BYTES must be >= MOCKMATE_VOICE_MAX_FRAME_BYTES")
	}
	if cfg.VoiceWriteTimeout <= 0 {
		return Config{}, fmt.Errorf("MOCKMATE_VOICE_WRITE_TIMEOUT must be > 0")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("MOCKMATE_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("MOCKMATE_READ_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("MOCKMATE_SHUTDOWN_GRACE_PERIOD must be > 0")
	}
	if cfg.AuthMode == AuthModeRequired && len(cfg.APIKeys) == 0 {
		return Config{}, fmt.Errorf("MOCKMATE_API_KEYS must be set when MOCKMATE_AUTH_MODE=required")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt64Or(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
