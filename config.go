package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is layered: defaults, then the YAML file, then environment.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Logging   LoggingConfig   `koanf:"logging"`
	Crops     CropsConfig     `koanf:"crops"`
}

type ServerConfig struct {
	Port            string        `koanf:"port"             validate:"required,numeric"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// StorageConfig selects the history backend: "mongo" or "memory".
type StorageConfig struct {
	Driver   string `koanf:"driver"    validate:"oneof=mongo memory"`
	MongoURI string `koanf:"mongo_uri" validate:"required_if=Driver mongo"`
	MongoDB  string `koanf:"mongo_db"  validate:"required_if=Driver mongo"`
}

// ScoringConfig points at the optional remote scoring service. An empty URL
// disables it and every request is answered locally.
type ScoringConfig struct {
	URL     string        `koanf:"url"     validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	Breaker BreakerConfig `koanf:"breaker"`
}

type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	OpenTimeout      time.Duration `koanf:"open_timeout"`
	MinRequests      uint32        `koanf:"min_requests"`
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gte=0,lte=1"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required"`
	TokenTTL  time.Duration `koanf:"token_ttl"  validate:"gt=0"`
}

type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests" validate:"gte=0"`
	Window   time.Duration `koanf:"window"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// CropsConfig optionally replaces the built-in crop table.
type CropsConfig struct {
	TablePath string `koanf:"table_path"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			Driver:   "mongo",
			MongoURI: "mongodb://localhost:27017",
			MongoDB:  "fertadvisor",
		},
		Scoring: ScoringConfig{
			Timeout: 5 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests:      3,
				Interval:         time.Minute,
				OpenTimeout:      30 * time.Second,
				MinRequests:      5,
				FailureThreshold: 0.6,
			},
		},
		Auth: AuthConfig{
			JWTSecret: "change_me",
			TokenTTL:  24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 100,
			Window:   15 * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// configPathEnv overrides the config file location.
const configPathEnv = "CONFIG_PATH"

var defaultConfigPaths = []string{"config.yaml", "config.yml", "/etc/fertadvisor/config.yaml"}

// envPrefix namespaces env vars: FERT_SCORING_URL -> scoring.url.
const envPrefix = "FERT_"

// legacyEnv keeps the original deployment variables working.
var legacyEnv = map[string]string{
	"MONGO_URI":     "storage.mongo_uri",
	"MONGO_DB":      "storage.mongo_db",
	"PROCESSOR_URL": "scoring.url",
	"SCORING_URL":   "scoring.url",
	"JWT_SECRET":    "auth.jwt_secret",
	"PORT":          "server.port",
	"LOG_LEVEL":     "logging.level",
	"LOG_FORMAT":    "logging.format",
}

// sectionKeys are the config sections whose names may contain underscores.
var sectionKeys = []string{"rate_limit", "scoring.breaker"}

// loadConfig reads .env (if present), then layers defaults, the config file
// at path (or the first default path found) and the environment.
func loadConfig(path string) (Config, error) {
	_ = godotenv.Load() // .env is optional

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if origins, ok := k.Get("cors.allowed_origins").(string); ok {
		_ = k.Set("cors.allowed_origins", splitList(origins))
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(configPathEnv); p != "" {
		return p
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKey maps an env var name to a koanf path, or "" to skip it.
func envKey(name string) string {
	if mapped, ok := legacyEnv[name]; ok {
		return mapped
	}
	if !strings.HasPrefix(name, envPrefix) {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	for _, section := range sectionKeys {
		flat := strings.ReplaceAll(section, ".", "_")
		if strings.HasPrefix(key, flat+"_") {
			return section + "." + strings.TrimPrefix(key, flat+"_")
		}
	}
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return ""
	}
	return section + "." + rest
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
