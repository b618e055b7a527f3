package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Auth      AuthConfig
	LLM       LLMConfig
	Translate TranslateConfig
	Chat      ChatConfig
	Reminders RemindersConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type JWTConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

type AuthConfig struct {
	// DemoMode accepts any non-empty username/password pair on /auth/token.
	// Disable it to require credentials from Auth.Users.
	DemoMode bool
	// AllowLegacyIdentity accepts an unverified X-User-Id header as the
	// caller's identity. Non-production escape hatch for old clients.
	AllowLegacyIdentity bool
	// Users maps username -> bcrypt hash, used when DemoMode is off.
	Users map[string]string
}

type LLMConfig struct {
	// Provider selects the inference backend: "huggingface" or "openai".
	Provider string

	HFURL     string
	HFKey     string
	HFTimeout time.Duration

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAITimeout time.Duration

	MaxTokens int
}

type TranslateConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type ChatConfig struct {
	// MaxHistoryTurns bounds the prompt context and the per-session history
	// buffer (the buffer keeps 2x this many entries: user + assistant).
	MaxHistoryTurns int
}

type RemindersConfig struct {
	PollInterval time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Enabled       bool
	AuthMaxReqs   int
	AuthWindowSec int
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		JWT: JWTConfig{
			Secret: k.String("jwt.secret"),
			Issuer: k.String("jwt.issuer"),
		},
		Auth: AuthConfig{
			DemoMode:            k.Bool("auth.demo.mode"),
			AllowLegacyIdentity: k.Bool("auth.allow.legacy.identity"),
			Users:               k.StringMap("auth.users"),
		},
		LLM: LLMConfig{
			Provider:      k.String("llm.provider"),
			HFURL:         k.String("llm.hf.url"),
			HFKey:         k.String("llm.hf.key"),
			OpenAIKey:     k.String("llm.openai.key"),
			OpenAIBaseURL: k.String("llm.openai.base.url"),
			OpenAIModel:   k.String("llm.openai.model"),
			MaxTokens:     k.Int("llm.max.tokens"),
		},
		Translate: TranslateConfig{
			URL:    k.String("translate.url"),
			APIKey: k.String("translate.api.key"),
		},
		Chat: ChatConfig{
			MaxHistoryTurns: k.Int("chat.max.history.turns"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitOrigins(k.String("cors.origins")),
		},
		RateLimit: RateLimitConfig{
			Enabled:       k.Bool("ratelimit.enabled"),
			AuthMaxReqs:   k.Int("ratelimit.auth.max.reqs"),
			AuthWindowSec: k.Int("ratelimit.auth.window.sec"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "virgil"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "virgil"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev_secret_change_me"
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "virgil"
	}
	if !k.Exists("auth.demo.mode") {
		cfg.Auth.DemoMode = true
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "huggingface"
	}
	if cfg.LLM.HFURL == "" {
		cfg.LLM.HFURL = "https://api-inference.huggingface.co/models/mistralai/Mixtral-8x7B-Instruct-v0.1"
	}
	if cfg.LLM.OpenAIModel == "" {
		cfg.LLM.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 500
	}
	if cfg.Translate.URL == "" {
		cfg.Translate.URL = "https://libretranslate.de/translate"
	}
	if cfg.Chat.MaxHistoryTurns == 0 {
		cfg.Chat.MaxHistoryTurns = 10
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	if cfg.RateLimit.AuthMaxReqs == 0 {
		cfg.RateLimit.AuthMaxReqs = 20
	}
	if cfg.RateLimit.AuthWindowSec == 0 {
		cfg.RateLimit.AuthWindowSec = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	cfg.JWT.Expiry, err = parseDuration(k.String("jwt.expiry"), "60m")
	if err != nil {
		return nil, fmt.Errorf("parsing jwt expiry: %w", err)
	}
	cfg.LLM.HFTimeout, err = parseDuration(k.String("llm.hf.timeout"), "120s")
	if err != nil {
		return nil, fmt.Errorf("parsing huggingface timeout: %w", err)
	}
	cfg.LLM.OpenAITimeout, err = parseDuration(k.String("llm.openai.timeout"), "60s")
	if err != nil {
		return nil, fmt.Errorf("parsing openai timeout: %w", err)
	}
	cfg.Translate.Timeout, err = parseDuration(k.String("translate.timeout"), "15s")
	if err != nil {
		return nil, fmt.Errorf("parsing translate timeout: %w", err)
	}
	cfg.Reminders.PollInterval, err = parseDuration(k.String("reminders.poll.interval"), "3s")
	if err != nil {
		return nil, fmt.Errorf("parsing reminder poll interval: %w", err)
	}

	return cfg, nil
}

func parseDuration(s, fallback string) (time.Duration, error) {
	if s == "" {
		s = fallback
	}
	return time.ParseDuration(s)
}

func splitOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
