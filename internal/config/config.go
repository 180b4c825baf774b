// internal/config/config.go
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bridge BridgeConfig `yaml:"bridge"`
}

type BridgeConfig struct {
	Device    DeviceConfig    `yaml:"device"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Port  string `yaml:"port"`
	Model string `yaml:"model"`

	// Optional; zero values are filled from the model's profile defaults.
	BaudRate      int    `yaml:"baud_rate"`
	SlaveID       *uint8 `yaml:"slave_id"`
	PollIntervalS int    `yaml:"poll_interval_s"`
	TimeoutMs     int    `yaml:"timeout_ms"`
	ReadDelayMs   *int   `yaml:"read_delay_ms"`
}

// ---- MQTT ----

type MQTTConfig struct {
	Broker          string `yaml:"broker"`
	ClientID        string `yaml:"client_id"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	TopicPrefix     string `yaml:"topic_prefix"`
	DiscoveryPrefix string `yaml:"discovery_prefix"`
	QoS             int    `yaml:"qos"`
	Retain          *bool  `yaml:"retain"`
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level  string     `yaml:"level"`
	Format string     `yaml:"format"`
	Loki   LokiConfig `yaml:"loki"`
}

type LokiConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Labels  map[string]string `yaml:"labels"`
}

// ---- TELEMETRY ----

type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Load reads and parses the YAML configuration file. Unknown keys are
// rejected so a typo fails at setup instead of silently becoming a default.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
