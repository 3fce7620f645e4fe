package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/logmon/internal/config"
	"github.com/SmitUplenchwar2687/logmon/internal/logging"
	"github.com/SmitUplenchwar2687/logmon/internal/notify"
)

// loadSession reads the configuration for cmd and builds its logger.
func loadSession(cmd *cobra.Command, configPath string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// buildNotifiers connects every sink enabled in cfg. The log notifier is
// always present; extra sinks such as a recorder are appended as given.
func buildNotifiers(ctx context.Context, cfg config.NotifyConfig, logger *zap.Logger, extra ...notify.Notifier) (notify.Multi, error) {
	sinks := notify.Multi{notify.NewLogNotifier(logger)}
	sinks = append(sinks, extra...)

	if cfg.Webhook.URL != "" {
		wh, err := notify.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout, cfg.Webhook.Retries)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, wh)
	}
	if cfg.Redis.Addr != "" {
		rn, err := notify.NewRedisNotifier(ctx, notify.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.Redis.Channel,
		})
		if err != nil {
			_ = sinks.Close()
			return nil, fmt.Errorf("redis notifier: %w", err)
		}
		sinks = append(sinks, rn)
	}
	if cfg.NATS.URL != "" {
		nn, err := notify.NewNATSNotifier(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			_ = sinks.Close()
			return nil, fmt.Errorf("nats notifier: %w", err)
		}
		sinks = append(sinks, nn)
	}
	return sinks, nil
}
