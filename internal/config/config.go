package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all bridge configuration.
type Config struct {
	Socket     SocketConfig     `yaml:"socket"`
	TextBridge TextBridgeConfig `yaml:"text_bridge"`
	Admin      AdminConfig      `yaml:"admin"`
	Host       HostConfig       `yaml:"host"`
	Metadata   MetadataConfig   `yaml:"metadata"`
	Presence   PresenceConfig   `yaml:"presence"`
	Logging    LogConfig        `yaml:"logging"`
}

// SocketConfig holds the companion socket configuration.
type SocketConfig struct {
	URL            string        `envconfig:"BRIDGE_SOCKET_URL" default:"ws://127.0.0.1:3020" yaml:"url"`
	ConnectTimeout time.Duration `envconfig:"BRIDGE_CONNECT_TIMEOUT" default:"1s" yaml:"connect_timeout"`
}

// TextBridgeConfig holds the secondary chat relay configuration.
type TextBridgeConfig struct {
	URL            string        `envconfig:"BRIDGE_TEXT_URL" default:"ws://127.0.0.1:8787" yaml:"url"`
	ConnectTimeout time.Duration `envconfig:"BRIDGE_TEXT_CONNECT_TIMEOUT" default:"1s" yaml:"connect_timeout"`
	Override       bool          `envconfig:"BRIDGE_TEXT_OVERRIDE" default:"false" yaml:"override"`
}

// AdminConfig holds the local control surface configuration.
type AdminConfig struct {
	Addr string `envconfig:"BRIDGE_ADMIN_ADDR" default:"127.0.0.1:3022" yaml:"addr"`
}

// HostConfig holds the host API configuration.
type HostConfig struct {
	API string `envconfig:"BRIDGE_HOST_API" default:"http://127.0.0.1:6463/api" yaml:"api"`
}

// MetadataConfig holds the public presence-definition repository settings.
type MetadataConfig struct {
	RepoURL   string  `envconfig:"BRIDGE_METADATA_REPO" default:"https://raw.githubusercontent.com/PreMiD/Presences/main/websites" yaml:"repo_url"`
	RateLimit float64 `envconfig:"BRIDGE_METADATA_RPS" default:"4" yaml:"rate_limit"`
}

// PresenceConfig holds operator presence preferences.
type PresenceConfig struct {
	DefaultCategory string `envconfig:"BRIDGE_DEFAULT_CATEGORY" default:"playing" yaml:"default_category"`
	ShowButtons     bool   `envconfig:"BRIDGE_SHOW_BUTTONS" default:"true" yaml:"show_buttons"`
	HideViewChannel bool   `envconfig:"BRIDGE_HIDE_VIEW_CHANNEL" default:"false" yaml:"hide_view_channel"`
	ManualShare     bool   `envconfig:"BRIDGE_MANUAL_SHARE" default:"false" yaml:"manual_share"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile loads configuration from the environment, then overlays values
// from a YAML file. File values win over environment values.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
