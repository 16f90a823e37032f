// Package account reads device configurations stored on the button.plus
// website.
package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/buttonplus-integration/internal/pkg/detection"
	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
	"github.com/anicoll/buttonplus-integration/internal/pkg/transport"
)

const (
	DefaultBaseURL = "https://api.button.plus"
	authCookieName = "auth_cookie"
)

var ErrLogin = errors.New("login failed")

// Device is one entry of the account's device list. JSON holds the same
// document the device serves on /config.
type Device struct {
	ID        int    `json:"Id"`
	IPAddress string `json:"IpAddress"`
	JSON      string `json:"Json"`
}

func (d Device) Configuration() (model.DeviceConfiguration, error) {
	return detection.Parse([]byte(d.JSON))
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cookie     string
	logger     *zap.Logger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client. cookie may be empty when Login is called next.
func New(cookie string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: transport.DefaultTimeout},
		cookie:     cookie,
		logger:     zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for the auth cookie and keeps it for later calls.
// The returned value is in name=value form.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"email":    email,
		"password": password,
		"remember": true,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/account/login", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	body, res, err := transport.Do(c.httpClient, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLogin, err)
	}
	cookie, found := lo.Find(res.Cookies(), func(ck *http.Cookie) bool {
		return ck.Name == authCookieName && ck.Value != ""
	})
	if !found {
		return "", fmt.Errorf("%w: no %s in response: %s", ErrLogin, authCookieName, body)
	}
	c.cookie = authCookieName + "=" + cookie.Value
	return c.cookie, nil
}

// TestConnection reports whether the cookie is accepted.
func (c *Client) TestConnection(ctx context.Context) (bool, error) {
	_, err := c.get(ctx, "/button/buttons")
	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		c.logger.Debug("account rejected cookie", zap.Int("status", statusErr.StatusCode))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) FetchConfigs(ctx context.Context) ([]Device, error) {
	body, err := c.get(ctx, "/button/buttons")
	if err != nil {
		return nil, err
	}
	var devices []Device
	if err := json.Unmarshal(body, &devices); err != nil {
		return nil, fmt.Errorf("decode device list: %w", err)
	}
	return devices, nil
}

func (c *Client) FetchConfig(ctx context.Context, id int) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/button/config/%d", id))
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cookie", c.cookie)
	req.Header.Set("Cache-Control", "no-cache")
	body, _, err := transport.Do(c.httpClient, req)
	return body, err
}

// PhysicalDevices drops devices without an IP address; those only exist on the
// website.
func PhysicalDevices(devices []Device) []Device {
	logger := zap.L()
	return lo.Filter(devices, func(d Device, _ int) bool {
		if d.IPAddress == "" {
			logger.Warn("skipping device without ip, it must be virtual", zap.Int("website_id", d.ID))
			return false
		}
		return true
	})
}
