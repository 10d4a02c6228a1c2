// Package config loads simmr settings from a YAML file with environment
// overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/simmr/internal/ledger"
)

// Config holds all simmr configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Speech   SpeechConfig   `yaml:"speech"`
	Story    StoryConfig    `yaml:"story"`
	Pantry   PantryConfig   `yaml:"pantry"`
	Recipes  RecipesConfig  `yaml:"recipes"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AllowOrigins    []string      `yaml:"allow_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

// DatabaseConfig configures Postgres. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
}

// StorageConfig configures the R2/S3 bucket for dish photos. An empty
// endpoint selects the in-memory image store.
type StorageConfig struct {
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Bucket        string `yaml:"bucket"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// AuthConfig configures token signing.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// LedgerConfig configures pantry matching.
type LedgerConfig struct {
	MatchPolicy string `yaml:"match_policy"`
}

// SpeechConfig configures Azure text-to-speech.
type SpeechConfig struct {
	AzureKey    string `yaml:"azure_key"`
	AzureRegion string `yaml:"azure_region"`
	Voice       string `yaml:"voice"`
	CacheDir    string `yaml:"cache_dir"`
	DiskWrite   bool   `yaml:"disk_write"`
}

// StoryConfig selects the narrator backend: "canned", "gemini" or "chat".
type StoryConfig struct {
	Provider     string `yaml:"provider"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`
	ChatEndpoint string `yaml:"chat_endpoint"`
	ChatKey      string `yaml:"chat_key"`
}

// PantryConfig configures the local SQLite pantry used by the CLI when no
// database URL is set.
type PantryConfig struct {
	Path string `yaml:"path"`
}

// RecipesConfig points at an optional JSON catalogue to load.
type RecipesConfig struct {
	SeedFile string `yaml:"seed_file"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			AllowOrigins:    []string{"http://localhost:8081", "http://localhost:19006"},
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Database: DatabaseConfig{
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
		},
		Storage: StorageConfig{
			Bucket: "story_log_images",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Ledger: LedgerConfig{
			MatchPolicy: ledger.PolicyExact.String(),
		},
		Speech: SpeechConfig{
			CacheDir:  ".simmr-cache",
			DiskWrite: true,
		},
		Story: StoryConfig{
			Provider:    "canned",
			GeminiModel: "gemini-2.5-flash",
		},
		Pantry: PantryConfig{
			Path: filepath.Join(homeDir(), ".simmr", "pantry.db"),
		},
		Logging: LoggingConfig{
			Level: "normal",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

// Save writes the configuration to path atomically.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// MatchPolicy returns the parsed ledger policy.
func (c *Config) MatchPolicy() (ledger.Policy, error) {
	return ledger.ParsePolicy(c.Ledger.MatchPolicy)
}

// Validate checks settings that do not depend on the command being run.
func (c *Config) Validate() error {
	if _, err := c.MatchPolicy(); err != nil {
		return err
	}
	switch c.Story.Provider {
	case "", "canned", "gemini", "chat":
	default:
		return fmt.Errorf("unknown story provider %q", c.Story.Provider)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	return nil
}

// ValidateServe additionally checks what the HTTP server needs.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET not set")
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Server.Addr, "SIMMR_ADDR")
	set(&c.Database.URL, "DATABASE_URL")
	set(&c.Auth.JWTSecret, "JWT_SECRET")
	set(&c.Storage.Endpoint, "R2_ENDPOINT")
	set(&c.Storage.AccessKey, "R2_ACCESS_KEY")
	set(&c.Storage.SecretKey, "R2_SECRET_KEY")
	set(&c.Storage.Bucket, "R2_BUCKET_NAME")
	set(&c.Storage.PublicBaseURL, "R2_PUBLIC_BASE_URL")
	set(&c.Speech.AzureKey, "AZURE_SPEECH_KEY")
	set(&c.Speech.AzureRegion, "AZURE_SPEECH_REGION")
	set(&c.Story.GeminiAPIKey, "GEMINI_API_KEY")
	set(&c.Story.ChatEndpoint, "GPT_CHAT_ENDPOINT")
	set(&c.Story.ChatKey, "GPT_CHAT_KEY")
	set(&c.Ledger.MatchPolicy, "SIMMR_MATCH_POLICY")
	set(&c.Logging.Level, "SIMMR_LOG_LEVEL")
	set(&c.Recipes.SeedFile, "SIMMR_RECIPES_FILE")

	if v := getenv("SIMMR_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Auth.TokenTTL = d
		}
	}
	if v := getenv("SIMMR_DISK_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Speech.DiskWrite = b
		}
	}
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return "."
}
