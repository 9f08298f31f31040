package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config represents the main configuration for fyf.
type Config struct {
	BaseDir string `toml:"base_dir"`
	LogDir  string `toml:"log_dir"`

	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Cache    CacheConfig    `toml:"cache"`
	Objects  ObjectsConfig  `toml:"objects"`
	Hasher   HasherConfig   `toml:"hasher"`
	Session  SessionConfig  `toml:"session"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `toml:"addr" validate:"required"` // e.g. ":8080"
}

// DatabaseConfig represents configuration for the metadata database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type" validate:"required,oneof=sqlite memory"`
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// CacheConfig represents configuration for the read-through cache.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type CacheConfig struct {
	Type       string `toml:"type" validate:"required,oneof=memory redis"`
	RedisURL   string `toml:"redis_url,omitempty"` // only used for type=redis
	TTLSeconds int    `toml:"ttl_seconds" validate:"gte=0"`
}

// ObjectsConfig represents configuration for the object-storage backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ObjectsConfig struct {
	Type   string `toml:"type" validate:"required,oneof=memory s3"`
	Bucket string `toml:"bucket" validate:"required"`

	// S3-specific fields (only used when Type == "s3")
	Region          string `toml:"region,omitempty"`
	KeyPrefix       string `toml:"key_prefix,omitempty"`
	Endpoint        string `toml:"endpoint,omitempty"` // set for MinIO-compatible services
	AccessKeyID     string `toml:"access_key_id,omitempty"`
	SecretAccessKey string `toml:"secret_access_key,omitempty"`
}

// HasherConfig selects the password hashing scheme.
type HasherConfig struct {
	Type       string `toml:"type" validate:"omitempty,oneof=bcrypt plain"`
	BcryptCost int    `toml:"bcrypt_cost,omitempty" validate:"gte=0"`
}

// SessionConfig holds session lifetime settings.
type SessionConfig struct {
	// MaxTTLHours is the longest session lifetime CreateSession accepts.
	MaxTTLHours int `toml:"max_ttl_hours" validate:"gt=0"`

	// LoginTTLHours is the lifetime given to sessions issued by login.
	LoginTTLHours int `toml:"login_ttl_hours" validate:"gt=0"`
}

// NewConfig creates a new Config with the provided base directory and
// default values for every section.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Server:  ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Cache: CacheConfig{
			Type:       "memory",
			TTLSeconds: 60,
		},
		Objects: ObjectsConfig{
			Type:   "s3",
			Bucket: "find-your-file",
		},
		Hasher: HasherConfig{Type: "bcrypt"},
		Session: SessionConfig{
			MaxTTLHours:   30 * 24,
			LoginTTLHours: 7 * 24,
		},
	}
}

// Validate checks the struct-tag constraints on cfg.
func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads and validates a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
