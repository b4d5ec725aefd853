package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"watchvault/pkg/session"
)

// Config holds everything the server reads from the environment. Secrets and
// expiry windows are passed down explicitly; nothing below main reads env vars.
type Config struct {
	Env           string // "development" or "production"
	Addr          string
	DSN           string
	AutoMigrate   bool
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int
	UploadBase    string
	LogLevel      string
	Thumbnailer   bool
}

func loadConfig() Config {
	cfg := Config{
		Env:           envOr("ENV", "development"),
		Addr:          envOr("ADDR", ":8081"),
		DSN:           os.Getenv("DB_DSN"),
		AutoMigrate:   true,
		AccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTTL:     session.DefaultAccessTTL,
		RefreshTTL:    session.DefaultRefreshTTL,
		BcryptCost:    bcrypt.DefaultCost,
		UploadBase:    envOr("UPLOAD_BASE", "uploads"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		Thumbnailer:   os.Getenv("THUMBNAILER") == "1",
	}
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			cfg.AutoMigrate = false
		}
	}
	if cfg.AccessSecret == "" {
		cfg.AccessSecret = "dev-insecure-access-secret-change"
	}
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = "dev-insecure-refresh-secret-change"
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AccessTTL = d
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RefreshTTL = d
		}
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= bcrypt.MinCost && n <= bcrypt.MaxCost {
			cfg.BcryptCost = n
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadDotEnv loads key=value pairs from a local .env file into the environment
// without overwriting variables that are already set. Lines starting with # are ignored.
func loadDotEnv() {
	path := ".env"
	if _, err := os.Stat(path); err != nil {
		return // no .env file
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.TrimSpace(line[eq+1:])
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
