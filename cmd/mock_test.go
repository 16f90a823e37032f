package cmd

import (
	"context"
	"sync"
	"time"

	"github.com/anicoll/buttonplus-integration/internal/pkg/database"
	"github.com/anicoll/buttonplus-integration/internal/pkg/logic"
	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
	"github.com/anicoll/buttonplus-integration/internal/pkg/mqtt"
)

// MockMqttService is a mock implementation of the MqttService interface.
type MockMqttService struct {
	ConnectFunc          func() error
	SubscribeButtonsFunc func(deviceID string, handler func(mqtt.ButtonEvent)) error

	mu         sync.Mutex
	Subscribed []string
	Labels     []string
}

func (m *MockMqttService) Connect() error {
	if m.ConnectFunc != nil {
		return m.ConnectFunc()
	}
	return nil
}

func (m *MockMqttService) SubscribeButtons(deviceID string, handler func(mqtt.ButtonEvent)) error {
	m.mu.Lock()
	m.Subscribed = append(m.Subscribed, deviceID)
	m.mu.Unlock()
	if m.SubscribeButtonsFunc != nil {
		return m.SubscribeButtonsFunc(deviceID, handler)
	}
	return nil
}

func (m *MockMqttService) PublishLabel(deviceID string, _ int, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Labels = append(m.Labels, deviceID+":"+label)
	return nil
}

func (m *MockMqttService) PublishTopLabel(deviceID string, _ int, label string) error {
	return m.PublishLabel(deviceID, 0, label)
}

func (m *MockMqttService) PublishBrightness(string, mqtt.Display, int) error {
	return nil
}

func (m *MockMqttService) SetPage(string, int) error {
	return nil
}

// MockLogicService is a mock implementation of the LogicService interface.
type MockLogicService struct {
	InspectFunc          func(ctx context.Context, ip string) (model.DeviceConfiguration, error)
	ProvisionDeviceFunc  func(ctx context.Context, ip string) (logic.Provisioned, error)
	ProvisionAccountFunc func(ctx context.Context) ([]logic.Provisioned, error)
	ProvisionWebsiteFunc func(ctx context.Context, websiteID int) (logic.Provisioned, error)
	BackupDevicesFunc    func(ctx context.Context, ips []string) error
	RestoreFunc          func(ctx context.Context, deviceID string) (database.Backup, error)
	ListDevicesFunc      func(ctx context.Context) ([]database.Device, error)
}

func (m *MockLogicService) Inspect(ctx context.Context, ip string) (model.DeviceConfiguration, error) {
	return m.InspectFunc(ctx, ip)
}

func (m *MockLogicService) ProvisionDevice(ctx context.Context, ip string) (logic.Provisioned, error) {
	return m.ProvisionDeviceFunc(ctx, ip)
}

func (m *MockLogicService) ProvisionAccount(ctx context.Context) ([]logic.Provisioned, error) {
	return m.ProvisionAccountFunc(ctx)
}

func (m *MockLogicService) ProvisionAccountDevice(ctx context.Context, websiteID int) (logic.Provisioned, error) {
	return m.ProvisionWebsiteFunc(ctx, websiteID)
}

func (m *MockLogicService) BackupDevices(ctx context.Context, ips []string) error {
	if m.BackupDevicesFunc != nil {
		return m.BackupDevicesFunc(ctx, ips)
	}
	return nil
}

func (m *MockLogicService) Restore(ctx context.Context, deviceID string) (database.Backup, error) {
	return m.RestoreFunc(ctx, deviceID)
}

func (m *MockLogicService) SetButtonColors(context.Context, string, int, int, int) error {
	return nil
}

func (m *MockLogicService) ListDevices(ctx context.Context) ([]database.Device, error) {
	if m.ListDevicesFunc != nil {
		return m.ListDevicesFunc(ctx)
	}
	return nil, nil
}

func (m *MockLogicService) ListBackups(context.Context, string) ([]database.Backup, error) {
	return nil, nil
}

// MockCleaner records the retention it was called with.
type MockCleaner struct {
	Err error

	mu         sync.Mutex
	Retentions []time.Duration
}

func (m *MockCleaner) Cleanup(_ context.Context, retention time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Retentions = append(m.Retentions, retention)
	return 3, m.Err
}
