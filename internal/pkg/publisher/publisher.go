package publisher

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
)

var errAlreadyRegistered = errors.New("publisher already registered")

type publisher interface {
	// RegisterDevice announces a provisioned device to the sink.
	RegisterDevice(ctx context.Context, cfg model.DeviceConfiguration) error
}

type Registry struct {
	mu         sync.RWMutex
	publishers map[string]publisher
	logger     *zap.Logger
}

func New() *Registry {
	return &Registry{
		publishers: make(map[string]publisher),
		logger:     zap.L(),
	}
}

func (r *Registry) RegisterPublisher(name string, publisher publisher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.publishers[name]; ok {
		return errAlreadyRegistered
	}
	r.publishers[name] = publisher
	return nil
}

// RegisterDevice hands cfg to every sink. A failing sink is logged and skipped.
func (r *Registry) RegisterDevice(ctx context.Context, cfg model.DeviceConfiguration) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, publisher := range r.publishers {
		if err := publisher.RegisterDevice(ctx, cfg); err != nil {
			r.logger.Error("failed to register device", zap.Error(err), zap.String("publisher", name), zap.String("device_id", cfg.Identifier()))
			continue
		}
		r.logger.Debug("registered device", zap.String("device_id", cfg.Identifier()), zap.String("publisher", name))
	}
	return ctx.Err()
}
