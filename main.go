package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/contacts-api/internal/config"
	"github.com/msomdec/contacts-api/internal/domain"
	"github.com/msomdec/contacts-api/internal/handler"
	"github.com/msomdec/contacts-api/internal/mail"
	"github.com/msomdec/contacts-api/internal/repository/postgres"
	"github.com/msomdec/contacts-api/internal/repository/redis"
	"github.com/msomdec/contacts-api/internal/repository/sqlite"
	"github.com/msomdec/contacts-api/internal/service"
	"github.com/msomdec/contacts-api/internal/storage/disk"
	"github.com/msomdec/contacts-api/internal/storage/s3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "driver", cfg.StoreDriver)

	mailer, err := newMailer(cfg, logger)
	if err != nil {
		slog.Error("failed to configure mailer", "error", err)
		os.Exit(1)
	}

	avatarStore, avatarDir, err := newAvatarStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to configure avatar storage", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadTempDir, 0o755); err != nil {
		slog.Error("failed to create upload temp dir", "error", err)
		os.Exit(1)
	}

	authService := service.NewAuthService(db.Users(),
		service.NewPasswordHasher(cfg.BcryptCost),
		service.NewTokenIssuer(cfg.JWTSecret),
		mailer,
		cfg.BaseURL,
	)
	contactService := service.NewContactService(db.Contacts())
	avatarService := service.NewAvatarService(db.Users(), avatarStore)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Auth:           authService,
		Contacts:       contactService,
		Avatars:        avatarService,
		Store:          db,
		UploadTempDir:  cfg.UploadTempDir,
		AvatarMaxBytes: cfg.AvatarMaxBytes,
		AvatarDir:      avatarDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.RequestLogger(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCtx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openDatabase(ctx context.Context, cfg config.Config) (domain.Database, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	case config.DriverRedis:
		return redis.New(ctx, cfg.DatabaseURL)
	case config.DriverSQLite:
		return sqlite.New(cfg.DatabaseURL)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func newMailer(cfg config.Config, logger *slog.Logger) (domain.Mailer, error) {
	if cfg.SMTPHost == "" {
		slog.Warn("SMTP_HOST not set, verification emails will be logged")
		return mail.NewLogMailer(logger), nil
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}

// newAvatarStore returns the configured store and, for disk storage, the
// directory the router should serve avatars from.
func newAvatarStore(ctx context.Context, cfg config.Config) (domain.AvatarStore, string, error) {
	if cfg.AvatarStorage == config.AvatarStorageS3 {
		store, err := s3.New(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		return store, "", err
	}

	store, err := disk.New(cfg.AvatarDir)
	if err != nil {
		return nil, "", err
	}
	return store, store.Dir(), nil
}
