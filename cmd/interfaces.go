package cmd

import (
	"context"
	"time"

	"github.com/anicoll/buttonplus-integration/internal/pkg/database"
	"github.com/anicoll/buttonplus-integration/internal/pkg/logic"
	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
	"github.com/anicoll/buttonplus-integration/internal/pkg/mqtt"
)

// MqttService defines what the commands expect from the mqtt bridge.
type MqttService interface {
	Connect() error
	SubscribeButtons(deviceID string, handler func(mqtt.ButtonEvent)) error
	// Methods needed by server.New
	PublishLabel(deviceID string, buttonID int, label string) error
	PublishTopLabel(deviceID string, buttonID int, label string) error
	PublishBrightness(deviceID string, display mqtt.Display, value int) error
	SetPage(deviceID string, page int) error
}

// LogicService defines the provisioning workflow the commands drive.
type LogicService interface {
	Inspect(ctx context.Context, ipAddress string) (model.DeviceConfiguration, error)
	ProvisionDevice(ctx context.Context, ipAddress string) (logic.Provisioned, error)
	ProvisionAccount(ctx context.Context) ([]logic.Provisioned, error)
	ProvisionAccountDevice(ctx context.Context, websiteID int) (logic.Provisioned, error)
	BackupDevices(ctx context.Context, ipAddresses []string) error
	Restore(ctx context.Context, deviceID string) (database.Backup, error)
	// Methods needed by server.New
	SetButtonColors(ctx context.Context, ipAddress string, buttonID, front, wall int) error
	ListDevices(ctx context.Context) ([]database.Device, error)
	ListBackups(ctx context.Context, deviceID string) ([]database.Backup, error)
}

// BackupCleaner removes backups past the retention period.
type BackupCleaner interface {
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}
