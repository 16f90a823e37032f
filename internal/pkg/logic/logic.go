package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/buttonplus-integration/internal/pkg/account"
	"github.com/anicoll/buttonplus-integration/internal/pkg/database"
	"github.com/anicoll/buttonplus-integration/internal/pkg/detection"
	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
	"github.com/anicoll/buttonplus-integration/internal/pkg/provision"
)

var (
	ErrNoBackupStore      = errors.New("database is not configured")
	ErrNoAccount          = errors.New("account is not configured")
	ErrUnknownButton      = errors.New("unknown button")
	ErrGenerationMismatch = errors.New("device runs a different schema generation than the backup")
	ErrNoIPAddress        = errors.New("configuration has no ip address")
)

const accountConcurrency = 4

// DeviceClient reads and writes the configuration a device serves on the LAN.
type DeviceClient interface {
	FetchConfig(ctx context.Context) ([]byte, error)
	PushConfig(ctx context.Context, cfg json.Marshaler) ([]byte, error)
	PushRaw(ctx context.Context, document []byte) ([]byte, error)
}

type DeviceFactory func(ipAddress string) DeviceClient

type backupStore interface {
	WriteBackup(ctx context.Context, b database.Backup) (database.Backup, error)
	GetLatestBackup(ctx context.Context, deviceID string) (database.Backup, error)
	ListBackups(ctx context.Context, deviceID string) ([]database.Backup, error)
	ListDevices(ctx context.Context) ([]database.Device, error)
}

type accountService interface {
	FetchConfigs(ctx context.Context) ([]account.Device, error)
	FetchConfig(ctx context.Context, id int) ([]byte, error)
}

type registrar interface {
	RegisterDevice(ctx context.Context, cfg model.DeviceConfiguration) error
}

// Provisioned describes one device after its configuration was pushed back.
type Provisioned struct {
	DeviceID   string
	IPAddress  string
	Generation string
	provision.Result
	// Dangling counts topics that point at a broker the device does not know.
	Dangling int
}

type logic struct {
	devices   DeviceFactory
	broker    provision.Broker
	publisher registrar
	backups   backupStore
	account   accountService
	logger    *zap.Logger
}

type Option func(*logic)

// WithBackups stores every fetched document before it is modified.
func WithBackups(store backupStore) Option {
	return func(l *logic) {
		l.backups = store
	}
}

func WithAccount(svc accountService) Option {
	return func(l *logic) {
		l.account = svc
	}
}

func NewLogicSvc(devices DeviceFactory, broker provision.Broker, publisher registrar, opts ...Option) *logic {
	l := &logic{
		devices:   devices,
		broker:    broker,
		publisher: publisher,
		logger:    zap.L(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Inspect fetches and decodes a device configuration without changing it.
func (l *logic) Inspect(ctx context.Context, ipAddress string) (model.DeviceConfiguration, error) {
	raw, err := l.devices(ipAddress).FetchConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ipAddress, err)
	}
	return detection.Parse(raw)
}

// ProvisionDevice fetches the configuration of the device at ipAddress, backs it
// up, adds the broker and topics and pushes it back.
func (l *logic) ProvisionDevice(ctx context.Context, ipAddress string) (Provisioned, error) {
	raw, err := l.devices(ipAddress).FetchConfig(ctx)
	if err != nil {
		return Provisioned{}, fmt.Errorf("fetch %s: %w", ipAddress, err)
	}
	return l.provision(ctx, ipAddress, raw)
}

// ProvisionAccount provisions every physical device of the account, using the
// document the account holds for it.
func (l *logic) ProvisionAccount(ctx context.Context) ([]Provisioned, error) {
	if l.account == nil {
		return nil, ErrNoAccount
	}
	devices, err := l.account.FetchConfigs(ctx)
	if err != nil {
		return nil, err
	}
	devices = account.PhysicalDevices(devices)

	var (
		mu  sync.Mutex
		out []Provisioned
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(accountConcurrency)
	for _, device := range devices {
		eg.Go(func() error {
			res, err := l.provision(ctx, device.IPAddress, []byte(device.JSON))
			if err != nil {
				return fmt.Errorf("account device %d: %w", device.ID, err)
			}
			mu.Lock()
			out = append(out, res)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

// ProvisionAccountDevice provisions one device of the account by its website id.
// The device is pushed to the address its stored configuration reports.
func (l *logic) ProvisionAccountDevice(ctx context.Context, websiteID int) (Provisioned, error) {
	if l.account == nil {
		return Provisioned{}, ErrNoAccount
	}
	raw, err := l.account.FetchConfig(ctx, websiteID)
	if err != nil {
		return Provisioned{}, fmt.Errorf("account device %d: %w", websiteID, err)
	}
	cfg, err := detection.Parse(raw)
	if err != nil {
		return Provisioned{}, fmt.Errorf("account device %d: %w", websiteID, err)
	}
	if cfg.IPAddress() == "" {
		return Provisioned{}, fmt.Errorf("account device %d: %w", websiteID, ErrNoIPAddress)
	}
	return l.provision(ctx, cfg.IPAddress(), raw)
}

func (l *logic) provision(ctx context.Context, ipAddress string, raw []byte) (Provisioned, error) {
	cfg, err := detection.Parse(raw)
	if err != nil {
		return Provisioned{}, fmt.Errorf("decode %s: %w", ipAddress, err)
	}
	logger := l.logger.With(zap.String("device_id", cfg.Identifier()), zap.String("ip", ipAddress))

	if err := l.backup(ctx, ipAddress, cfg, raw); err != nil {
		return Provisioned{}, err
	}

	result := provision.Provision(cfg, l.broker)
	dangling := provision.DanglingTopics(cfg)
	for _, topic := range dangling {
		logger.Warn("topic refers to unknown broker", zap.String("broker_id", topic.BrokerID), zap.String("topic", topic.Topic))
	}

	if _, err := l.devices(ipAddress).PushConfig(ctx, cfg); err != nil {
		return Provisioned{}, fmt.Errorf("push %s: %w", ipAddress, err)
	}
	logger.Info("provisioned device",
		zap.String("generation", cfg.Generation()),
		zap.String("broker", result.BrokerURL),
		zap.Int("device_topics", result.DeviceTopics),
		zap.Ints("buttons", result.Buttons))

	if err := l.publisher.RegisterDevice(ctx, cfg); err != nil {
		return Provisioned{}, err
	}
	return Provisioned{
		DeviceID:   cfg.Identifier(),
		IPAddress:  ipAddress,
		Generation: cfg.Generation(),
		Result:     result,
		Dangling:   len(dangling),
	}, nil
}

func (l *logic) backup(ctx context.Context, ipAddress string, cfg model.DeviceConfiguration, raw []byte) error {
	if l.backups == nil {
		return nil
	}
	b, err := l.backups.WriteBackup(ctx, database.Backup{
		DeviceID:   cfg.Identifier(),
		IPAddress:  ipAddress,
		Generation: cfg.Generation(),
		Firmware:   cfg.FirmwareVersion().String(),
		Document:   raw,
	})
	if err != nil {
		return fmt.Errorf("backup %s: %w", cfg.Identifier(), err)
	}
	l.logger.Debug("stored backup", zap.String("device_id", b.DeviceID), zap.Int64("backup_id", b.ID))
	return nil
}

// BackupDevices stores the current configuration of every device. A device that
// cannot be reached does not stop the others.
func (l *logic) BackupDevices(ctx context.Context, ipAddresses []string) error {
	if l.backups == nil {
		return ErrNoBackupStore
	}
	var errs []error
	for _, ip := range ipAddresses {
		raw, err := l.devices(ip).FetchConfig(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch %s: %w", ip, err))
			continue
		}
		cfg, err := detection.Parse(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("decode %s: %w", ip, err))
			continue
		}
		if err := l.backup(ctx, ip, cfg, raw); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Restore pushes the latest backup of a device back to the address it was taken
// from. The device must still run the schema generation the backup was taken
// with.
func (l *logic) Restore(ctx context.Context, deviceID string) (database.Backup, error) {
	if l.backups == nil {
		return database.Backup{}, ErrNoBackupStore
	}
	b, err := l.backups.GetLatestBackup(ctx, deviceID)
	if err != nil {
		return database.Backup{}, err
	}
	backupCfg, err := detection.Parse(b.Document)
	if err != nil {
		return database.Backup{}, fmt.Errorf("backup %d: %w", b.ID, err)
	}

	device := l.devices(b.IPAddress)
	current, err := device.FetchConfig(ctx)
	if err != nil {
		return database.Backup{}, fmt.Errorf("fetch %s: %w", b.IPAddress, err)
	}
	generation, err := detection.Generation(current)
	if err != nil {
		return database.Backup{}, fmt.Errorf("decode %s: %w", b.IPAddress, err)
	}
	if generation != backupCfg.Generation() {
		return database.Backup{}, fmt.Errorf("%w: device %s, backup %s", ErrGenerationMismatch, generation, backupCfg.Generation())
	}

	if _, err := device.PushRaw(ctx, b.Document); err != nil {
		return database.Backup{}, fmt.Errorf("push %s: %w", b.IPAddress, err)
	}
	l.logger.Info("restored device", zap.String("device_id", deviceID), zap.Int64("backup_id", b.ID), zap.Time("taken_at", b.CreatedAt))
	return b, nil
}

// ListBackups returns the stored backups of a device, newest first.
func (l *logic) ListBackups(ctx context.Context, deviceID string) ([]database.Backup, error) {
	if l.backups == nil {
		return nil, ErrNoBackupStore
	}
	return l.backups.ListBackups(ctx, deviceID)
}

// ListDevices returns every device that was provisioned while a database was
// configured.
func (l *logic) ListDevices(ctx context.Context) ([]database.Device, error) {
	if l.backups == nil {
		return nil, ErrNoBackupStore
	}
	return l.backups.ListDevices(ctx)
}

// SetButtonColors changes the front and wall LED colours of one button and pushes
// the configuration back. The previous document is backed up first.
func (l *logic) SetButtonColors(ctx context.Context, ipAddress string, buttonID, front, wall int) error {
	device := l.devices(ipAddress)
	raw, err := device.FetchConfig(ctx)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", ipAddress, err)
	}
	cfg, err := detection.Parse(raw)
	if err != nil {
		return fmt.Errorf("decode %s: %w", ipAddress, err)
	}
	button, found := lo.Find(cfg.Buttons(), func(b model.Button) bool {
		return b.ID() == buttonID
	})
	if !found {
		return fmt.Errorf("%w: %d on %s", ErrUnknownButton, buttonID, cfg.Identifier())
	}
	if err := l.backup(ctx, ipAddress, cfg, raw); err != nil {
		return err
	}

	button.SetLEDColors(front, wall)
	if _, err := device.PushConfig(ctx, cfg); err != nil {
		return fmt.Errorf("push %s: %w", ipAddress, err)
	}
	l.logger.Info("button colours changed",
		zap.String("device_id", cfg.Identifier()),
		zap.Int("button", buttonID),
		zap.Int("front", front),
		zap.Int("wall", wall))
	return nil
}
