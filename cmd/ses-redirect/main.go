// Package main is the entry point for the SES inbound redirect function.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/shineum/ses-redirect/internal/config"
	"github.com/shineum/ses-redirect/internal/forwarder"
	"github.com/shineum/ses-redirect/internal/provider"
	"github.com/shineum/ses-redirect/internal/provider/ses"
	"github.com/shineum/ses-redirect/internal/provider/stdout"
	"github.com/shineum/ses-redirect/internal/storage"
	"github.com/shineum/ses-redirect/internal/storage/disk"
	s3store "github.com/shineum/ses-redirect/internal/storage/s3"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	eventPath := flag.String("event", "", "process the SES event in this JSON file and exit, instead of starting the Lambda runtime")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	setupLogger(cfg.Logging.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	store, err := selectStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to setup message store", "error", err)
		os.Exit(1)
	}

	prov, err := selectProvider(ctx, cfg)
	if err != nil {
		slog.Error("failed to setup email provider", "error", err)
		os.Exit(1)
	}

	fwd := forwarder.New(cfg, store, prov)

	slog.Info("starting ses-redirect",
		"domain", cfg.Mail.Domain,
		"store", store.Location(),
		"provider", prov.Name(),
		"notifications", cfg.NotificationsEnabled(),
	)

	if *eventPath != "" {
		if err := runOnce(ctx, fwd, *eventPath); err != nil {
			slog.Error("redirect failed", "error", err)
			os.Exit(1)
		}
		return
	}

	lambda.Start(fwd.HandleEvent)
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// selectStore picks a local directory when one is configured, S3 otherwise.
func selectStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Dir != "" {
		slog.Info("using local message store", "dir", cfg.Storage.Dir)
		return disk.New(cfg.Storage.Dir), nil
	}

	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("BUCKET_NAME or STORAGE_DIR is required")
	}
	slog.Info("using S3 message store",
		"bucket", cfg.Storage.Bucket,
		"prefix", cfg.Storage.Prefix,
	)
	return s3store.New(ctx, s3store.StoreConfig{
		Bucket: cfg.Storage.Bucket,
		Region: cfg.Storage.Region,
	})
}

// selectProvider chooses the email delivery backend based on configuration.
func selectProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	switch cfg.Provider {
	case "ses", "":
		slog.Info("using AWS SES provider", "region", cfg.SES.Region)
		return ses.New(ctx, ses.SESProviderConfig{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
		})
	case "stdout":
		slog.Info("using stdout provider")
		return stdout.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// runOnce processes a single SES event read from a JSON file.
func runOnce(ctx context.Context, fwd *forwarder.Forwarder, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read event file: %w", err)
	}

	var event events.SimpleEmailEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to parse event file: %w", err)
	}

	return fwd.HandleEvent(ctx, event)
}
