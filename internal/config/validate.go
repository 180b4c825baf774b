// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/east-ups-bridge/internal/profile"
)

// allowed serial baud rates; the device does not negotiate.
var validBaudRates = map[int]bool{
	2400:   true,
	4800:   true,
	9600:   true,
	19200:  true,
	38400:  true,
	57600:  true,
	115200: true,
}

const (
	// Modbus slave addresses live in [0, 247]; 248-255 are reserved.
	maxSlaveID = 247

	minPollIntervalS = 5
	maxPollIntervalS = 300
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil configuration")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	dev := cfg.Bridge.Device

	if dev.Port == "" {
		return fmt.Errorf("device: serial port is required")
	}

	if dev.Model == "" {
		return fmt.Errorf("device: model is required (supported: %v)", profile.Models())
	}
	if _, err := profile.Lookup(dev.Model); err != nil {
		return fmt.Errorf("device: %w", err)
	}

	if dev.BaudRate != 0 && !validBaudRates[dev.BaudRate] {
		return fmt.Errorf("device: unsupported baud rate %d", dev.BaudRate)
	}

	if dev.SlaveID != nil && *dev.SlaveID > maxSlaveID {
		return fmt.Errorf("device: slave_id %d out of range [0, %d]", *dev.SlaveID, maxSlaveID)
	}

	if dev.PollIntervalS != 0 &&
		(dev.PollIntervalS < minPollIntervalS || dev.PollIntervalS > maxPollIntervalS) {
		return fmt.Errorf("device: poll_interval_s %d out of range [%d, %d]",
			dev.PollIntervalS, minPollIntervalS, maxPollIntervalS)
	}

	if dev.TimeoutMs < 0 {
		return fmt.Errorf("device: timeout_ms must not be negative")
	}
	if dev.ReadDelayMs != nil && *dev.ReadDelayMs < 0 {
		return fmt.Errorf("device: read_delay_ms must not be negative")
	}

	// ------------------------------------------------------------
	// MQTT
	// ------------------------------------------------------------

	mq := cfg.Bridge.MQTT

	if mq.Broker == "" {
		return fmt.Errorf("mqtt: broker is required")
	}
	if mq.QoS < 0 || mq.QoS > 2 {
		return fmt.Errorf("mqtt: qos %d out of range [0, 2]", mq.QoS)
	}

	// ------------------------------------------------------------
	// LOGGING / TELEMETRY
	// ------------------------------------------------------------

	if cfg.Bridge.Logging.Loki.Enabled && cfg.Bridge.Logging.Loki.URL == "" {
		return fmt.Errorf("logging: loki is enabled but url is empty")
	}

	if cfg.Bridge.Telemetry.Enabled && cfg.Bridge.Telemetry.Listen == "" {
		return fmt.Errorf("telemetry: enabled but listen address is empty")
	}

	return nil
}
