// Package local talks to the HTTP configuration API a device serves on the LAN.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/anicoll/buttonplus-integration/internal/pkg/transport"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL replaces http://{ip}.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func New(ipAddress string, opts ...Option) *Client {
	c := &Client{
		baseURL:    "http://" + ipAddress,
		httpClient: &http.Client{Timeout: transport.DefaultTimeout},
		logger:     zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchConfig returns the raw configuration document of the device.
func (c *Client) FetchConfig(ctx context.Context) ([]byte, error) {
	url := c.baseURL + "/config"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("fetching device config", zap.String("url", url))
	body, _, err := transport.Do(c.httpClient, req)
	return body, err
}

// PushConfig writes cfg to the device as a raw JSON body and returns the device's
// reply.
func (c *Client) PushConfig(ctx context.Context, cfg json.Marshaler) ([]byte, error) {
	payload, err := cfg.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return c.PushRaw(ctx, payload)
}

// PushRaw writes an already encoded document, used when restoring a backup.
func (c *Client) PushRaw(ctx context.Context, document []byte) ([]byte, error) {
	url := c.baseURL + "/configsave"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(document))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.logger.Debug("pushing device config", zap.String("url", url), zap.Int("bytes", len(document)))
	body, _, err := transport.Do(c.httpClient, req)
	return body, err
}
