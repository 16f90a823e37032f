package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/anicoll/buttonplus-integration/internal/pkg/account"
	"github.com/anicoll/buttonplus-integration/internal/pkg/config"
	"github.com/anicoll/buttonplus-integration/internal/pkg/contxt"
	"github.com/anicoll/buttonplus-integration/internal/pkg/database"
	"github.com/anicoll/buttonplus-integration/internal/pkg/database/migration"
	"github.com/anicoll/buttonplus-integration/internal/pkg/detection"
	"github.com/anicoll/buttonplus-integration/internal/pkg/local"
	"github.com/anicoll/buttonplus-integration/internal/pkg/logic"
	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
	"github.com/anicoll/buttonplus-integration/internal/pkg/mqtt"
	"github.com/anicoll/buttonplus-integration/internal/pkg/provision"
	"github.com/anicoll/buttonplus-integration/internal/pkg/publisher"
	"github.com/anicoll/buttonplus-integration/internal/pkg/wire"
)

var errNoDevices = errors.New("no device ip given, use --ip or DEVICES")

// environment is everything a command needs, built from the configuration.
type environment struct {
	cfg    *config.Config
	logger *zap.Logger
	logic  LogicService
	mqtt   MqttService
	// cleaner is nil without a database.
	cleaner BackupCleaner
	close   func()
}

func ProvisionCommand(c *cli.Context) error {
	env, err := setup(c, true)
	if err != nil {
		return err
	}
	defer env.close()

	ips := env.cfg.Devices
	if c.IsSet("ip") {
		ips = c.StringSlice("ip")
	}
	if len(ips) == 0 {
		return errNoDevices
	}
	if err := env.mqtt.Connect(); err != nil {
		return err
	}
	return provisionDevices(c.Context, env.logic, ips, env.cfg.RequestTimeout*2, env.logger)
}

// provisionDevices gives every device its own deadline, so a long list does not
// starve the devices at its end.
func provisionDevices(parent context.Context, logicSvc LogicService, ips []string, timeout time.Duration, logger *zap.Logger) error {
	var errs []error
	for _, ip := range ips {
		ctx, cancel := contxt.NewContext(parent, timeout)
		res, err := logicSvc.ProvisionDevice(ctx, ip)
		cancel()
		if err != nil {
			logger.Error("failed to provision device", zap.String("ip", ip), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		logProvisioned(logger, res)
	}
	return errors.Join(errs...)
}

func ImportCommand(c *cli.Context) error {
	env, err := setup(c, true)
	if err != nil {
		return err
	}
	defer env.close()
	if err := env.mqtt.Connect(); err != nil {
		return err
	}

	ctx, cancel := contxt.NewContext(c.Context, 0)
	defer cancel()
	if ids := c.IntSlice("website-id"); len(ids) > 0 {
		return importWebsiteDevices(ctx, env.logic, ids, env.logger)
	}
	provisioned, err := env.logic.ProvisionAccount(ctx)
	for _, res := range provisioned {
		logProvisioned(env.logger, res)
	}
	return err
}

// importWebsiteDevices provisions the listed account devices one by one.
func importWebsiteDevices(ctx context.Context, logicSvc LogicService, ids []int, logger *zap.Logger) error {
	var errs []error
	for _, id := range ids {
		res, err := logicSvc.ProvisionAccountDevice(ctx, id)
		if err != nil {
			logger.Error("failed to import device", zap.Int("website_id", id), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		logProvisioned(logger, res)
	}
	return errors.Join(errs...)
}

func RestoreCommand(c *cli.Context) error {
	env, err := setup(c, false)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := contxt.NewContext(c.Context, env.cfg.RequestTimeout*2)
	defer cancel()
	backup, err := env.logic.Restore(ctx, c.String("device"))
	if err != nil {
		return err
	}
	env.logger.Info("restore complete",
		zap.String("device_id", backup.DeviceID),
		zap.String("ip", backup.IPAddress),
		zap.Time("taken_at", backup.CreatedAt))
	return nil
}

func BackupCommand(c *cli.Context) error {
	env, err := setup(c, false)
	if err != nil {
		return err
	}
	defer env.close()

	ips := env.cfg.Devices
	if c.IsSet("ip") {
		ips = c.StringSlice("ip")
	}
	if len(ips) == 0 {
		return errNoDevices
	}
	ctx, cancel := contxt.NewContext(c.Context, 0)
	defer cancel()
	return env.logic.BackupDevices(ctx, ips)
}

func VerifyCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	path := c.String("file")
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	device, err := verify(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("configuration round trips",
		zap.String("file", path),
		zap.String("device_id", device.Identifier()),
		zap.String("generation", device.Generation()),
		zap.String("firmware", device.FirmwareVersion().String()))
	return nil
}

// verify decodes raw with the schema its firmware selects and checks that
// encoding it again reproduces the document.
func verify(raw []byte) (model.DeviceConfiguration, error) {
	device, err := detection.Parse(raw)
	if err != nil {
		return nil, err
	}
	encoded, err := device.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if err := wire.CheckRoundTrip(raw, encoded); err != nil {
		return nil, err
	}
	return device, nil
}

func ServeCommand(c *cli.Context) error {
	env, err := setup(c, true)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := contxt.NewContext(c.Context, 0)
	defer cancel()
	return run(ctx, env.cfg, env.mqtt, env.logic, env.cleaner, env.logger)
}

func logProvisioned(logger *zap.Logger, res logic.Provisioned) {
	logger.Info("device provisioned",
		zap.String("device_id", res.DeviceID),
		zap.String("ip", res.IPAddress),
		zap.String("generation", res.Generation),
		zap.Ints("buttons", res.Buttons),
		zap.Int("dangling_topics", res.Dangling))
}

// loadConfig reads the environment and lets explicitly set flags win.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	overrides := []struct {
		flag  string
		apply func()
	}{
		{"log-level", func() { cfg.LogLevel = c.String("log-level") }},
		{"mqtt-host", func() { cfg.MQTT.Host = c.String("mqtt-host") }},
		{"mqtt-port", func() { cfg.MQTT.Port = c.Int("mqtt-port") }},
		{"mqtt-user", func() { cfg.MQTT.Username = c.String("mqtt-user") }},
		{"mqtt-pass", func() { cfg.MQTT.Password = c.String("mqtt-pass") }},
		{"mqtt-advertised-host", func() { cfg.MQTT.AdvertisedHost = c.String("mqtt-advertised-host") }},
		{"database-url", func() { cfg.Database.URL = c.String("database-url") }},
		{"migrations-folder", func() { cfg.Database.MigrationsFolder = c.String("migrations-folder") }},
		{"request-timeout", func() { cfg.RequestTimeout = c.Duration("request-timeout") }},
		{"email", func() { cfg.Account.Email = c.String("email") }},
		{"password", func() { cfg.Account.Password = c.String("password") }},
		{"cookie", func() { cfg.Account.Cookie = c.String("cookie") }},
		{"addr", func() { cfg.Server.Addr = c.String("addr") }},
		{"backup-schedule", func() { cfg.Backup.Schedule = c.String("backup-schedule") }},
	}
	for _, o := range overrides {
		if c.IsSet(o.flag) {
			o.apply()
		}
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	var err error
	logCfg := zap.NewProductionConfig()
	logCfg.Level, err = zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	zap.ReplaceGlobals(logger)
	return logger, nil
}

type accountAuth interface {
	Login(ctx context.Context, email, password string) (string, error)
	TestConnection(ctx context.Context) (bool, error)
}

// authenticate logs in with the credentials, or checks that a configured cookie
// is still accepted.
func authenticate(ctx context.Context, acct accountAuth, cfg config.AccountConfig) error {
	if cfg.Cookie == "" {
		_, err := acct.Login(ctx, cfg.Email, cfg.Password)
		return err
	}
	ok, err := acct.TestConnection(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: cookie rejected", account.ErrLogin)
	}
	return nil
}

func setup(c *cli.Context, needBroker bool) (_ *environment, err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if needBroker {
		if err := cfg.ValidateBroker(); err != nil {
			return nil, err
		}
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	env := &environment{cfg: cfg, logger: logger}
	closers := []func(){func() { _ = logger.Sync() }}
	env.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	defer func() {
		if err != nil {
			env.close()
		}
	}()

	registry := publisher.New()
	var opts []logic.Option

	if cfg.HasDatabase() {
		if err := migration.Migrate(cfg.Database.URL, cfg.Database.MigrationsFolder); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		db, err := database.New(c.Context, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		closers = append(closers, func() { _ = db.Close() })
		if err := registry.RegisterPublisher("postgres", db); err != nil {
			return nil, err
		}
		opts = append(opts, logic.WithBackups(db))
		env.cleaner = db
	}

	if cfg.MQTT.Host != "" {
		client := mqtt.NewClient(cfg.MQTT)
		closers = append(closers, func() { client.Disconnect(250) })
		svc := mqtt.New(client)
		if err := registry.RegisterPublisher("mqtt", svc); err != nil {
			return nil, err
		}
		env.mqtt = svc
	}

	if cfg.Account.Cookie != "" || cfg.Account.Email != "" {
		acct := account.New(cfg.Account.Cookie, account.WithBaseURL(cfg.Account.BaseURL))
		if err := authenticate(c.Context, acct, cfg.Account); err != nil {
			return nil, err
		}
		opts = append(opts, logic.WithAccount(acct))
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	devices := func(ip string) logic.DeviceClient {
		return local.New(ip, local.WithHTTPClient(httpClient))
	}
	broker := provision.Broker{
		Endpoint: provision.BrokerEndpoint(cfg.MQTT.Host, cfg.MQTT.AdvertisedHost),
		Port:     cfg.MQTT.Port,
		Username: cfg.MQTT.Username,
		Password: cfg.MQTT.Password,
	}
	env.logic = logic.NewLogicSvc(devices, broker, registry, opts...)
	return env, nil
}
