package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	LLM      LLMConfig
	TTS      TTSConfig
	Storage  StorageConfig
	Music    MusicConfig
	Mixer    MixerConfig
	Client   ClientConfig
}

type ServerConfig struct {
	Host    string
	Port    int
	WebRoot string // directory holding index.html and the bundled UI
	// CORSOrigins lists browser origins allowed to call the API. "*" is any.
	CORSOrigins []string
	// Per-IP token bucket; a zero rate disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	SessionSecret string
	SessionTTLH   int // hours
}

type LLMConfig struct {
	OpenAIKey        string
	OpenAIBaseURL    string // OpenAI-compatible server, e.g. a local Ollama
	AnthropicKey     string
	DefaultProvider  string
	DefaultModel     string
	FallbackProvider string
	FallbackModel    string
	MaxRetries       int
}

type TTSConfig struct {
	Backend         string // "openai" or "local"
	OpenAIKey       string
	OpenAIBaseURL   string
	OpenAIModel     string
	LocalBinPath    string // default: "piper"
	LocalModel      string // required when backend=local
	LocalSampleRate int
	CacheTTLMinutes int // 0 disables the Redis audio cache
}

type StorageConfig struct {
	Backend     string // "supabase", "minio" or "memory"
	SupabaseURL string
	SupabaseKey string
	Bucket      string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
}

type MusicConfig struct {
	Dir string
}

type MixerConfig struct {
	TailSeconds float64
	FadeSeconds float64
	VoiceFade   string // "constant" or "fade-out"
	FadeAnchor  string // "output-end" or "speech-end"
}

// ClientConfig drives pkg/client and cmd/affirm.
type ClientConfig struct {
	RemoteBase     string
	SameOriginBase string
	MusicBases     []string
	TimeoutSeconds int
}

func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 3000)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	rps, err := getEnvFloat("RATE_LIMIT_RPS", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := getEnvInt("RATE_LIMIT_BURST", 200)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sessionTTL, err := getEnvInt("SESSION_TTL_HOURS", 24*30)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	localRate, err := getEnvInt("TTS_LOCAL_SAMPLE_RATE", 22050)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_LOCAL_SAMPLE_RATE: %w", err)
	}

	cacheTTL, err := getEnvInt("TTS_CACHE_TTL_MINUTES", 60)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_CACHE_TTL_MINUTES: %w", err)
	}

	tail, err := getEnvFloat("MIX_TAIL_SECONDS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid MIX_TAIL_SECONDS: %w", err)
	}

	fade, err := getEnvFloat("MIX_FADE_SECONDS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid MIX_FADE_SECONDS: %w", err)
	}

	clientTimeout, err := getEnvInt("CLIENT_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, fmt.Errorf("invalid CLIENT_TIMEOUT_SECONDS: %w", err)
	}

	openAIKey := getEnv("OPENAI_API_KEY", "")

	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("HOST", "0.0.0.0"),
			Port:        port,
			WebRoot:     getEnv("WEB_ROOT", "web"),
			CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),

			RateLimitRPS:   rps,
			RateLimitBurst: burst,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			SessionSecret: getEnv("SESSION_SECRET", ""),
			SessionTTLH:   sessionTTL,
		},
		LLM: LLMConfig{
			OpenAIKey:        openAIKey,
			OpenAIBaseURL:    getEnv("LLM_OPENAI_BASE_URL", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			DefaultModel:     getEnv("LLM_DEFAULT_MODEL", "gpt-4o-mini"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			FallbackModel:    getEnv("LLM_FALLBACK_MODEL", "claude-3-haiku-20240307"),
			MaxRetries:       maxRetries,
		},
		TTS: TTSConfig{
			Backend:         getEnv("TTS_BACKEND", "openai"),
			OpenAIKey:       openAIKey,
			OpenAIBaseURL:   getEnv("TTS_OPENAI_BASE_URL", ""),
			OpenAIModel:     getEnv("TTS_OPENAI_MODEL", "tts-1"),
			LocalBinPath:    getEnv("TTS_LOCAL_PIPER_BIN", "piper"),
			LocalModel:      getEnv("TTS_LOCAL_PIPER_MODEL", ""),
			LocalSampleRate: localRate,
			CacheTTLMinutes: cacheTTL,
		},
		Storage: StorageConfig{
			Backend:        getEnv("STORAGE_BACKEND", "supabase"),
			SupabaseURL:    getEnv("SUPABASE_URL", ""),
			SupabaseKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:         getEnv("STORAGE_BUCKET", "affirmations"),
			MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
			MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
			MinioUseSSL:    strings.EqualFold(getEnv("MINIO_USE_SSL", ""), "true"),
		},
		Music: MusicConfig{
			Dir: getEnv("MUSIC_DIR", "music"),
		},
		Mixer: MixerConfig{
			TailSeconds: tail,
			FadeSeconds: fade,
			VoiceFade:   getEnv("MIX_VOICE_FADE", "constant"),
			FadeAnchor:  getEnv("MIX_FADE_ANCHOR", "output-end"),
		},
		Client: ClientConfig{
			RemoteBase:     getEnv("API_REMOTE_BASE", "https://listen-you-are-loved.onrender.com/api"),
			SameOriginBase: getEnv("API_SAME_ORIGIN_BASE", "http://localhost:3000/api"),
			MusicBases:     getEnvList("MUSIC_BASES", nil),
			TimeoutSeconds: clientTimeout,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports settings the API server cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.Auth.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if c.TTS.Backend == "local" && c.TTS.LocalModel == "" {
		missing = append(missing, "TTS_LOCAL_PIPER_MODEL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

// getEnvList splits a comma-separated variable, dropping blank items.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
