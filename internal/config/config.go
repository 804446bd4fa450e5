package config

import (
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Files    FilesConfig    `koanf:"files"`
	Session  SessionConfig  `koanf:"session"`
	Billing  BillingConfig  `koanf:"billing"`
	Notify   NotifyConfig   `koanf:"notify"`
	Invite   InviteConfig   `koanf:"invite"`
	Locale   LocaleConfig   `koanf:"locale"`
	Site     SiteConfig     `koanf:"site"`
	API      APIConfig      `koanf:"api"`
}

type ServerConfig struct {
	Port           int           `koanf:"port"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// FilesConfig configures the file storage backend.
type FilesConfig struct {
	Root string `koanf:"root"`
}

type SessionConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
}

type BillingConfig struct {
	APIKey      string        `koanf:"api_key"`
	BaseURL     string        `koanf:"base_url"`
	SyncTimeout time.Duration `koanf:"sync_timeout"`
}

// NotifyConfig configures the internal event-notification endpoint
// used by the feedback action.
type NotifyConfig struct {
	Endpoint string `koanf:"endpoint"`
	Token    string `koanf:"token"`
}

type InviteConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

type LocaleConfig struct {
	Default string `koanf:"default"`
}

// SiteConfig names the public site the feed links back to.
type SiteConfig struct {
	BaseURL string `koanf:"base_url"`
	Title   string `koanf:"title"`
}

// APIConfig lists machine credentials. Only key hashes live in config.
type APIConfig struct {
	Keys []APIKeyConfig `koanf:"keys"`
}

type APIKeyConfig struct {
	Hash        string `koanf:"hash"`
	TenantID    string `koanf:"tenant_id"`
	Description string `koanf:"description"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads configuration from config.yaml (when present) with
// OPSBOARD_* environment variables layered on top.
func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// Missing file is fine, env vars and defaults still apply
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// Environment variables override file config: OPSBOARD_SERVER__PORT → server.port
	if err := k.Load(env.Provider("OPSBOARD_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "OPSBOARD_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	defaults := map[string]interface{}{
		"server.port":            8080,
		"server.request_timeout": "30s",
		"database.path":          "opsboard.db",
		"files.root":             "data/files",
		"session.ttl":            "720h",
		"billing.sync_timeout":   "2m",
		"invite.ttl":             "168h",
		"locale.default":         "en",
		"site.base_url":          "http://localhost:8080",
		"site.title":             "OpsBoard",
	}
	for key, val := range defaults {
		if !k.Exists(key) {
			k.Set(key, val)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	// Substitute ${VAR} references in secrets so they can live in the
	// environment rather than the config file
	cfg.Session.Secret = substituteEnvVars(cfg.Session.Secret)
	cfg.Billing.APIKey = substituteEnvVars(cfg.Billing.APIKey)
	cfg.Notify.Token = substituteEnvVars(cfg.Notify.Token)

	return &cfg, nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
