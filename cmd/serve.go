package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/buttonplus-integration/internal/pkg/config"
	"github.com/anicoll/buttonplus-integration/internal/pkg/mqtt"
	"github.com/anicoll/buttonplus-integration/internal/pkg/server"
)

var errCron = errors.New("cron error")

// run connects the mqtt bridge, follows button events of the configured
// devices, schedules backups and serves the HTTP API until ctx is done.
func run(ctx context.Context, cfg *config.Config, mqttSvc MqttService, logicSvc LogicService, cleaner BackupCleaner, logger *zap.Logger) error {
	if err := mqttSvc.Connect(); err != nil {
		return err
	}
	subscribeDevices(ctx, cfg.Devices, mqttSvc, logicSvc, logger)

	eg, ctx := errgroup.WithContext(ctx)

	if cleaner != nil {
		eg.Go(func() error {
			return cronBackups(ctx, cfg, logicSvc, cleaner, logger)
		})
	}

	srv := &http.Server{
		Handler:      server.New(logicSvc, mqttSvc).Handler(),
		Addr:         cfg.Server.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("context done")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	})

	return eg.Wait()
}

// subscribeDevices logs clicks and long presses of every reachable device. A
// device that cannot be read is skipped.
func subscribeDevices(ctx context.Context, ips []string, mqttSvc MqttService, logicSvc LogicService, logger *zap.Logger) {
	for _, ip := range ips {
		device, err := logicSvc.Inspect(ctx, ip)
		if err != nil {
			logger.Warn("cannot read device, not following its buttons", zap.String("ip", ip), zap.Error(err))
			continue
		}
		err = mqttSvc.SubscribeButtons(device.Identifier(), func(e mqtt.ButtonEvent) {
			logger.Info("button event",
				zap.String("device_id", e.DeviceID),
				zap.Int("button", e.ButtonID),
				zap.Stringer("event", e.EventType),
				zap.String("payload", e.Payload))
		})
		if err != nil {
			logger.Error("failed to subscribe to buttons", zap.String("device_id", device.Identifier()), zap.Error(err))
		}
	}
}

func cronBackups(ctx context.Context, cfg *config.Config, logicSvc LogicService, cleaner BackupCleaner, logger *zap.Logger) error {
	c := cron.New()
	if _, err := c.AddFunc(cfg.Backup.Schedule, func() {
		backupAndCleanup(ctx, cfg, logicSvc, cleaner, logger)
	}); err != nil {
		return fmt.Errorf("%w: %w", errCron, err)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func backupAndCleanup(ctx context.Context, cfg *config.Config, logicSvc LogicService, cleaner BackupCleaner, logger *zap.Logger) {
	if len(cfg.Devices) > 0 {
		if err := logicSvc.BackupDevices(ctx, cfg.Devices); err != nil {
			logger.Error("error backing up devices", zap.Error(err))
		}
	}
	removed, err := cleaner.Cleanup(ctx, cfg.Backup.Retention)
	if err != nil {
		logger.Error("error cleaning up database", zap.Error(err))
		return
	}
	logger.Info("scheduled backup done", zap.Int("devices", len(cfg.Devices)), zap.Int64("removed_backups", removed))
}
