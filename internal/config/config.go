package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/validator"
)

// Environment variables that override file settings.
const (
	EnvAppEnv         = "APP_ENV"
	EnvDBPath         = "RIFTBOUND_DB_PATH"
	EnvAIBaseURL      = "AI_API_BASE_URL"
	EnvJWTSecret      = "RIFTBOUND_JWT_SECRET"
	EnvPort           = "RIFTBOUND_PORT"
	EnvBackupPassword = "RIFTBOUND_BACKUP_PASSWORD" // Never stored in the config file
	configDirName     = ".riftbound-companion"
	configFileName    = "config.toml"
	dbFileName        = "riftbound.db"
)

// Config represents the application configuration.
type Config struct {
	// Deck construction rules
	Rules RulesConfig `toml:"rules"`

	// Record store
	Storage StorageConfig `toml:"storage"`

	// HTTP API
	API APIConfig `toml:"api"`

	// Assistant client
	Assistant AssistantConfig `toml:"assistant"`

	// Card catalog cache
	Catalog CatalogConfig `toml:"catalog"`

	// Session tokens
	Auth AuthConfig `toml:"auth"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// RulesConfig contains the deck construction constants.
type RulesConfig struct {
	MainMinimum                int  `toml:"main_minimum"`                 // Minimum main deck size
	CopyLimit                  int  `toml:"copy_limit"`                   // Max copies per card name
	StrictCopyRule             bool `toml:"strict_copy_rule"`             // Count main and sideboard together
	SignatureCap               int  `toml:"signature_cap"`                // Max signature cards
	SignatureIncludesSideboard bool `toml:"signature_includes_sideboard"` // Count sideboard signatures
	RuneDeckSize               int  `toml:"rune_deck_size"`               // Exact rune deck size
	SideboardMax               int  `toml:"sideboard_max"`                // Max sideboard size (0 = none)
}

// StorageConfig contains database settings.
type StorageConfig struct {
	Path           string `toml:"path"`            // SQLite file (empty = ~/.riftbound-companion/riftbound.db)
	AutoMigrate    bool   `toml:"auto_migrate"`    // Run migrations on open
	BackupDir      string `toml:"backup_dir"`      // Empty = "backups" next to the database
	BackupInterval string `toml:"backup_interval"` // Scheduled backups while serving (e.g. "24h", "0" = off)
	BackupKeep     int    `toml:"backup_keep"`     // Newest backups kept by the scheduler (0 = all)
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"` // CORS origins
	RequestTimeout string   `toml:"request_timeout"` // e.g. "30s"
}

// AssistantConfig contains assistant API client settings.
type AssistantConfig struct {
	BaseURL           string  `toml:"base_url"`
	RulesEdition      string  `toml:"rules_edition"`
	RequestTimeout    string  `toml:"request_timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	MaxRetries        int     `toml:"max_retries"`
}

// CatalogConfig contains card catalog cache settings.
type CatalogConfig struct {
	CacheSize   int    `toml:"cache_size"`    // Cards kept by id
	MaxStaleAge string `toml:"max_stale_age"` // Snapshot lifetime (e.g., "24h")
}

// AuthConfig contains session token settings.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	TokenTTL  string `toml:"token_ttl"` // e.g. "720h"
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	rules := validator.DefaultRules()
	return &Config{
		Rules: RulesConfig{
			MainMinimum:                rules.MainMinimum,
			CopyLimit:                  rules.CopyLimit,
			StrictCopyRule:             rules.StrictCopyRule,
			SignatureCap:               rules.SignatureCap,
			SignatureIncludesSideboard: rules.SignatureIncludesSideboard,
			RuneDeckSize:               rules.RuneDeckSize,
			SideboardMax:               0,
		},
		Storage: StorageConfig{
			Path:           "",
			AutoMigrate:    true,
			BackupDir:      "",
			BackupInterval: "24h",
			BackupKeep:     7,
		},
		API: APIConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*"},
			RequestTimeout: "30s",
		},
		Assistant: AssistantConfig{
			BaseURL:           "https://api.riftbound.com",
			RulesEdition:      "1.1-100125",
			RequestTimeout:    "60s",
			RequestsPerSecond: 2,
			MaxRetries:        2,
		},
		Catalog: CatalogConfig{
			CacheSize:   2048,
			MaxStaleAge: "24h",
		},
		Auth: AuthConfig{
			JWTSecret: "",
			TokenTTL:  "720h",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// configDir returns the per-user configuration directory.
func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, configDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

// Path returns the path to the configuration file.
func Path() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadDotEnv loads a .env file into the environment unless APP_ENV is production.
func LoadDotEnv(files ...string) {
	if os.Getenv(EnvAppEnv) == "production" {
		return
	}
	if err := godotenv.Load(files...); err != nil {
		log.Printf("warning: Error loading .env file (this is fine in production): %v", err)
	}
}

// Load loads the configuration from the default path. Returns the default
// config if the file doesn't exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from path. Keys missing from the file
// keep their default values.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(EnvAIBaseURL); v != "" {
		c.Assistant.BaseURL = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.API.Port = port
	}
	return nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo saves the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if err := c.ToRules().Validate(); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid API port: %d", c.API.Port)
	}

	durations := map[string]string{
		"API request timeout":       c.API.RequestTimeout,
		"assistant request timeout": c.Assistant.RequestTimeout,
		"catalog max stale age":     c.Catalog.MaxStaleAge,
		"token TTL":                 c.Auth.TokenTTL,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}

	if c.Assistant.RequestsPerSecond <= 0 {
		return fmt.Errorf("assistant requests per second must be positive: %v", c.Assistant.RequestsPerSecond)
	}
	if c.Assistant.MaxRetries < 0 {
		return fmt.Errorf("assistant max retries cannot be negative: %d", c.Assistant.MaxRetries)
	}
	if interval, err := c.GetBackupInterval(); err != nil || interval < 0 {
		return fmt.Errorf("invalid backup interval %q", c.Storage.BackupInterval)
	}
	if c.Storage.BackupKeep < 0 {
		return fmt.Errorf("backup keep cannot be negative: %d", c.Storage.BackupKeep)
	}
	if c.Catalog.CacheSize < 0 {
		return fmt.Errorf("catalog cache size cannot be negative: %d", c.Catalog.CacheSize)
	}

	return nil
}

// ToRules converts the rules section to validator rules.
func (c *Config) ToRules() validator.Rules {
	rules := validator.Rules{
		MainMinimum:                c.Rules.MainMinimum,
		CopyLimit:                  c.Rules.CopyLimit,
		StrictCopyRule:             c.Rules.StrictCopyRule,
		SignatureCap:               c.Rules.SignatureCap,
		SignatureIncludesSideboard: c.Rules.SignatureIncludesSideboard,
		RuneDeckSize:               c.Rules.RuneDeckSize,
	}
	if c.Rules.SideboardMax > 0 {
		limit := c.Rules.SideboardMax
		rules.SideboardMax = &limit
	}
	return rules
}

// DBPath returns the database path, defaulting to the config directory.
func (c *Config) DBPath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFileName), nil
}

// GetAPIRequestTimeout returns the API request timeout as a duration.
func (c *Config) GetAPIRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.API.RequestTimeout)
}

// GetAssistantTimeout returns the assistant request timeout as a duration.
func (c *Config) GetAssistantTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Assistant.RequestTimeout)
}

// GetCatalogMaxStaleAge returns the catalog snapshot lifetime as a duration.
func (c *Config) GetCatalogMaxStaleAge() (time.Duration, error) {
	return time.ParseDuration(c.Catalog.MaxStaleAge)
}

// GetTokenTTL returns the session token lifetime as a duration.
func (c *Config) GetTokenTTL() (time.Duration, error) {
	return time.ParseDuration(c.Auth.TokenTTL)
}

// GetBackupInterval returns the scheduled backup interval. Zero disables
// scheduled backups.
func (c *Config) GetBackupInterval() (time.Duration, error) {
	if c.Storage.BackupInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Storage.BackupInterval)
}
