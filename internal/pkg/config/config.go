package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrMissingBroker = errors.New("mqtt host is required")

type Config struct {
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"INFO"`
	Devices        []string      `env:"DEVICES" envSeparator:","`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	MQTT     MQTTConfig     `envPrefix:"MQTT_"`
	Account  AccountConfig  `envPrefix:"ACCOUNT_"`
	Database DatabaseConfig
	Server   ServerConfig
	Backup   BackupConfig `envPrefix:"BACKUP_"`
}

type MQTTConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"1883"`
	Username string `env:"USER"`
	Password string `env:"PASS"`
	ClientID string `env:"CLIENT_ID" envDefault:"buttonplus-integration"`
	// AdvertisedHost replaces Host in device configurations when Host is only
	// reachable from this machine.
	AdvertisedHost string `env:"ADVERTISED_HOST"`
}

type AccountConfig struct {
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
	Cookie   string `env:"COOKIE"`
	BaseURL  string `env:"BASE_URL" envDefault:"https://api.button.plus"`
}

type DatabaseConfig struct {
	URL              string `env:"DATABASE_URL"`
	MigrationsFolder string `env:"MIGRATIONS_FOLDER" envDefault:"migrations"`
}

type ServerConfig struct {
	Addr string `env:"HTTP_ADDR" envDefault:"0.0.0.0:8000"`
}

type BackupConfig struct {
	Schedule  string        `env:"SCHEDULE" envDefault:"0 3 * * *"`
	Retention time.Duration `env:"RETENTION" envDefault:"720h"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from environ instead of the process
// environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HasDatabase reports whether configuration backups are enabled.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// ValidateBroker is required before anything is provisioned.
func (c *Config) ValidateBroker() error {
	if c.MQTT.Host == "" {
		return ErrMissingBroker
	}
	return nil
}
