package config

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/fyf",
		LogDir:  "/home/user/.local/share/fyf/log",
		Server:  ServerConfig{Addr: ":9090"},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: "/home/user/.local/share/fyf/data",
		},
		Cache: CacheConfig{
			Type:       "redis",
			RedisURL:   "redis://localhost:6379/0",
			TTLSeconds: 120,
		},
		Objects: ObjectsConfig{
			Type:      "s3",
			Bucket:    "my-bucket",
			Region:    "eu-west-1",
			Endpoint:  "http://localhost:9000",
			KeyPrefix: "fyf/",
		},
		Hasher: HasherConfig{Type: "bcrypt", BcryptCost: 12},
		Session: SessionConfig{
			MaxTTLHours:   720,
			LoginTTLHours: 168,
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want %q", got.Server.Addr, ":9090")
	}
	if got.Database.Type != "sqlite" || got.Database.DataDir != original.Database.DataDir {
		t.Errorf("Database = %+v", got.Database)
	}
	if got.Cache.Type != "redis" || got.Cache.RedisURL != original.Cache.RedisURL || got.Cache.TTLSeconds != 120 {
		t.Errorf("Cache = %+v", got.Cache)
	}
	if got.Objects.Bucket != "my-bucket" || got.Objects.Endpoint != original.Objects.Endpoint {
		t.Errorf("Objects = %+v", got.Objects)
	}
	if got.Hasher.BcryptCost != 12 {
		t.Errorf("Hasher.BcryptCost = %d, want 12", got.Hasher.BcryptCost)
	}
	if got.Session.MaxTTLHours != 720 || got.Session.LoginTTLHours != 168 {
		t.Errorf("Session = %+v", got.Session)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/fyf")

	if cfg.BaseDir != "/data/fyf" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/fyf")
	}
	if cfg.LogDir != "/data/fyf/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/fyf/log")
	}
	if cfg.Database.DataDir != "/data/fyf/data" {
		t.Errorf("Database.DataDir = %q, want %q", cfg.Database.DataDir, "/data/fyf/data")
	}
	if cfg.Session.MaxTTLHours != 720 {
		t.Errorf("Session.MaxTTLHours = %d, want 720", cfg.Session.MaxTTLHours)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on default config error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("rejects unknown database type", func(t *testing.T) {
		cfg := NewConfig("/data/fyf")
		cfg.Database.Type = "postgres"

		if err := cfg.Validate(); err == nil {
			t.Error("Validate() error = nil for unknown database type")
		}
	})

	t.Run("rejects missing bucket", func(t *testing.T) {
		cfg := NewConfig("/data/fyf")
		cfg.Objects.Bucket = ""

		if err := cfg.Validate(); err == nil {
			t.Error("Validate() error = nil for missing bucket")
		}
	})

	t.Run("rejects zero session ttl", func(t *testing.T) {
		cfg := NewConfig("/data/fyf")
		cfg.Session.MaxTTLHours = 0

		if err := cfg.Validate(); err == nil {
			t.Error("Validate() error = nil for zero session ttl")
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fyf.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.BaseDir != dir {
			t.Errorf("BaseDir = %q, want %q", got.BaseDir, dir)
		}
	})

	t.Run("refuses to overwrite an existing file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fyf.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Error("Init() error = nil on existing file, want error")
		}
	})
}

func TestReadFromFile_Missing(t *testing.T) {
	_, err := ReadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Error("ReadFromFile(missing) error = nil, want error")
	}
}
