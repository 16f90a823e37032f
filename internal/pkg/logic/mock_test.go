package logic

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/anicoll/buttonplus-integration/internal/pkg/account"
	"github.com/anicoll/buttonplus-integration/internal/pkg/database"
	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
)

// MockDevice serves a fixed document and records what is pushed to it.
type MockDevice struct {
	FetchFunc func(ctx context.Context) ([]byte, error)
	PushErr   error

	mu     sync.Mutex
	Pushed [][]byte
}

func (m *MockDevice) FetchConfig(ctx context.Context) ([]byte, error) {
	return m.FetchFunc(ctx)
}

func (m *MockDevice) PushConfig(ctx context.Context, cfg json.Marshaler) ([]byte, error) {
	doc, err := cfg.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return m.PushRaw(ctx, doc)
}

func (m *MockDevice) PushRaw(_ context.Context, document []byte) ([]byte, error) {
	if m.PushErr != nil {
		return nil, m.PushErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pushed = append(m.Pushed, document)
	return []byte(`{"status":"ok"}`), nil
}

type MockDevices struct {
	mu      sync.Mutex
	devices map[string]*MockDevice
}

func (m *MockDevices) Add(ip string, device *MockDevice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.devices == nil {
		m.devices = map[string]*MockDevice{}
	}
	m.devices[ip] = device
}

func (m *MockDevices) Get(ip string) *MockDevice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.devices[ip]
}

func (m *MockDevices) Factory(ip string) DeviceClient {
	return m.Get(ip)
}

func serving(doc []byte) *MockDevice {
	return &MockDevice{FetchFunc: func(context.Context) ([]byte, error) { return doc, nil }}
}

type MockBackups struct {
	WriteErr error

	mu      sync.Mutex
	Backups []database.Backup
}

func (m *MockBackups) WriteBackup(_ context.Context, b database.Backup) (database.Backup, error) {
	if m.WriteErr != nil {
		return database.Backup{}, m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = int64(len(m.Backups) + 1)
	m.Backups = append(m.Backups, b)
	return b, nil
}

func (m *MockBackups) GetLatestBackup(_ context.Context, deviceID string) (database.Backup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Backups) - 1; i >= 0; i-- {
		if m.Backups[i].DeviceID == deviceID {
			return m.Backups[i], nil
		}
	}
	return database.Backup{}, database.ErrNoBackup
}

func (m *MockBackups) ListBackups(_ context.Context, deviceID string) ([]database.Backup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.Backup
	for i := len(m.Backups) - 1; i >= 0; i-- {
		if m.Backups[i].DeviceID == deviceID {
			out = append(out, m.Backups[i])
		}
	}
	return out, nil
}

func (m *MockBackups) ListDevices(context.Context) ([]database.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []database.Device
	for _, b := range m.Backups {
		if !seen[b.DeviceID] {
			seen[b.DeviceID] = true
			out = append(out, database.Device{ID: b.DeviceID, IPAddress: b.IPAddress, Generation: b.Generation})
		}
	}
	return out, nil
}

type MockAccount struct {
	Devices []account.Device
	Err     error
}

func (m *MockAccount) FetchConfigs(context.Context) ([]account.Device, error) {
	return m.Devices, m.Err
}

func (m *MockAccount) FetchConfig(_ context.Context, id int) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, d := range m.Devices {
		if d.ID == id {
			return []byte(d.JSON), nil
		}
	}
	return nil, errors.New("no such device")
}

type MockRegistrar struct {
	mu         sync.Mutex
	Registered []string
}

func (m *MockRegistrar) RegisterDevice(_ context.Context, cfg model.DeviceConfiguration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Registered = append(m.Registered, cfg.Identifier())
	return nil
}
