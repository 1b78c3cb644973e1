package config

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ADMIN_EMAILS", " a@x.com, ,B@x.com ")
	t.Setenv("CHAT_TIMEOUT", "nonsense")
	t.Setenv("FRONTEND_URL", "http://app.local/")

	cfg := Load()
	if cfg.Port != "8080" || cfg.MongoDatabase != "civiclens" || cfg.StoreDriver != "mongo" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.ChatTimeout != 20*time.Second {
		t.Errorf("expected fallback chat timeout, got %s", cfg.ChatTimeout)
	}
	if cfg.JWTExpiry != 72*time.Hour {
		t.Errorf("expected 72h expiry, got %s", cfg.JWTExpiry)
	}
	if cfg.SessionSecret != "s3cret" {
		t.Errorf("session secret should fall back to JWT secret")
	}
	if len(cfg.AdminEmails) != 2 || cfg.AdminEmails[1] != "B@x.com" {
		t.Errorf("unexpected admin emails: %v", cfg.AdminEmails)
	}
	if cfg.FrontendURL != "http://app.local" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.FrontendURL)
	}
	if cfg.IssueRateLimit != 20 || cfg.IssueRateWindow != 24*time.Hour {
		t.Errorf("unexpected rate limit: %d per %s", cfg.IssueRateLimit, cfg.IssueRateWindow)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory store", Config{JWTSecret: "x", StoreDriver: "memory"}, false},
		{"mongo store", Config{JWTSecret: "x", StoreDriver: "mongo", MongoURI: "mongodb://localhost"}, false},
		{"missing secret", Config{StoreDriver: "memory"}, true},
		{"mongo without uri", Config{JWTSecret: "x", StoreDriver: "mongo"}, true},
		{"unknown driver", Config{JWTSecret: "x", StoreDriver: "sqlite"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("DEBUG") != slog.LevelDebug || parseLevel("warn") != slog.LevelWarn || parseLevel("") != slog.LevelInfo {
		t.Error("unexpected level mapping")
	}
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient(context.Background(), "", "")
	if err != nil || client != nil {
		t.Fatalf("expected disabled client, got %v %v", client, err)
	}

	mr := miniredis.RunT(t)
	client, err = NewRedisClient(context.Background(), mr.Addr(), "")
	if err != nil {
		t.Fatalf("NewRedisClient failed: %v", err)
	}
	defer client.Close()

	if _, err := NewRedisClient(context.Background(), "127.0.0.1:1", ""); err == nil {
		t.Error("expected ping failure")
	}
}
