package config_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/msomdec/contacts-api/internal/config"
)

const testSecret = "test-secret-key-at-least-32-bytes-long!!"

func TestParse_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("expected port 3000, got %q", cfg.Port)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.BcryptCost)
	}
	if cfg.StoreDriver != config.DriverSQLite {
		t.Errorf("expected sqlite driver, got %q", cfg.StoreDriver)
	}
	if cfg.DatabaseURL != "contacts.db" {
		t.Errorf("expected contacts.db, got %q", cfg.DatabaseURL)
	}
	if cfg.AvatarStorage != config.AvatarStorageDisk || cfg.AvatarDir != "public/avatars" {
		t.Errorf("unexpected avatar defaults: %q %q", cfg.AvatarStorage, cfg.AvatarDir)
	}
	if cfg.AvatarMaxBytes != 5<<20 {
		t.Errorf("expected 5 MiB limit, got %d", cfg.AvatarMaxBytes)
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("expected smtp port 587, got %d", cfg.SMTPPort)
	}
	level, err := cfg.SlogLevel()
	if err != nil || level != slog.LevelInfo {
		t.Errorf("expected info level, got %v (%v)", level, err)
	}
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "8081")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("DATABASE_URL", "redis://localhost:6379/0")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Port != "8081" || cfg.BcryptCost != 12 || cfg.StoreDriver != "redis" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if level, _ := cfg.SlogLevel(); level != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", level)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET is required"},
		{"short secret", map[string]string{"JWT_SECRET": "short"}, "at least 32"},
		{"cost too low", map[string]string{"JWT_SECRET": testSecret, "BCRYPT_COST": "4"}, "BCRYPT_COST"},
		{"cost too high", map[string]string{"JWT_SECRET": testSecret, "BCRYPT_COST": "15"}, "BCRYPT_COST"},
		{"cost not a number", map[string]string{"JWT_SECRET": testSecret, "BCRYPT_COST": "ten"}, "parse env"},
		{"unknown driver", map[string]string{"JWT_SECRET": testSecret, "STORE_DRIVER": "mongo"}, "STORE_DRIVER"},
		{"smtp without from", map[string]string{"JWT_SECRET": testSecret, "SMTP_HOST": "smtp.example.com"}, "MAIL_FROM"},
		{"s3 without bucket", map[string]string{"JWT_SECRET": testSecret, "AVATAR_STORAGE": "s3"}, "S3_BUCKET"},
		{"unknown avatar storage", map[string]string{"JWT_SECRET": testSecret, "AVATAR_STORAGE": "ftp"}, "AVATAR_STORAGE"},
		{"bad log level", map[string]string{"JWT_SECRET": testSecret, "LOG_LEVEL": "loud"}, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Parse()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
