package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatalf("write tmp config: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `{
		"server": {
			"host": "localhost",
			"port": 8080,
			"subpath": "/api",
			"jwtSecret": "mysecret",
			"frontendUrl": "https://nearmex.example"
		},
		"database": {
			"driver": "sqlite",
			"dsn": "file::memory:"
		},
		"redis": {
			"addr": "localhost:6379",
			"db": 2
		},
		"auth": {
			"tokenTtl": "2h",
			"resetTtl": "30m",
			"bcryptCost": 10
		}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.JWTSecret != "mysecret" {
		t.Errorf("jwt secret not loaded, got %q", cfg.Server.JWTSecret)
	}
	if cfg.Server.FrontendURL != "https://nearmex.example" {
		t.Errorf("frontend url not loaded, got %q", cfg.Server.FrontendURL)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.Database.Driver)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour || cfg.Auth.ResetTTL != 30*time.Minute {
		t.Errorf("unexpected auth durations: %+v", cfg.Auth)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if !cfg.RedisEnabled() || cfg.Redis.DB != 2 {
		t.Errorf("redis config not loaded: %+v", cfg.Redis)
	}
	if cfg.SMTPEnabled() {
		t.Errorf("smtp should be disabled without credentials")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `{"server": {"jwtSecret": "s"}}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Auth.TokenTTL != 7*24*time.Hour {
		t.Errorf("expected 7 day session tokens, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.ResetTTL != time.Hour {
		t.Errorf("expected 1 hour reset tokens, got %v", cfg.Auth.ResetTTL)
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Errorf("expected bcrypt cost 12, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Server.Subpath != "/api" {
		t.Errorf("expected /api subpath, got %q", cfg.Server.Subpath)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"server": {"jwtSecret": "fromfile"}}`)
	t.Setenv("NEARMEX_SERVER_JWTSECRET", "fromenv")
	t.Setenv("NEARMEX_SMTP_USER", "mailer")
	t.Setenv("NEARMEX_SMTP_PASSWORD", "pw")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.JWTSecret != "fromenv" {
		t.Errorf("expected env override, got %q", cfg.Server.JWTSecret)
	}
	if !cfg.SMTPEnabled() {
		t.Errorf("expected smtp enabled from env")
	}
}

func TestLoadConfig_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("NEARMEX_SERVER_JWTSECRET", "envonly")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "no_such_config.json"))
	if err != nil {
		t.Fatalf("missing file should fall back to env: %v", err)
	}
	if cfg.Server.JWTSecret != "envonly" {
		t.Errorf("expected env secret, got %q", cfg.Server.JWTSecret)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{this is not json}`)
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("expected error for malformed JSON")
	}
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	path := writeConfig(t, `{"server": {"host": "localhost"}}`)
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("expected error when jwtSecret is empty")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		var c Config
		c.Server.JWTSecret = "s"
		c.Server.Subpath = "/api"
		c.Database.Driver = "postgres"
		c.Auth.TokenTTL = time.Hour
		c.Auth.ResetTTL = time.Hour
		c.Auth.BcryptCost = 12
		return c
	}

	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"zero token ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"negative reset ttl", func(c *Config) { c.Auth.ResetTTL = -time.Minute }},
		{"bcrypt cost too high", func(c *Config) { c.Auth.BcryptCost = 99 }},
		{"relative subpath", func(c *Config) { c.Server.Subpath = "api" }},
	}

	ok := base()
	if err := ok.Validate(); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}
