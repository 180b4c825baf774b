// internal/config/normalize.go
package config

import "github.com/tamzrod/east-ups-bridge/internal/profile"

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ------------------------------------------------------------
	// DEVICE DEFAULTS (from the model's profile)
	// ------------------------------------------------------------

	dev := &cfg.Bridge.Device

	prof, err := profile.Lookup(dev.Model)
	if err != nil {
		// Validate() already rejected unknown models.
		return
	}

	if dev.BaudRate == 0 {
		dev.BaudRate = prof.Defaults.BaudRate
	}
	if dev.SlaveID == nil {
		slave := prof.Defaults.SlaveID
		dev.SlaveID = &slave
	}
	if dev.PollIntervalS == 0 {
		dev.PollIntervalS = int(prof.Defaults.PollInterval.Seconds())
	}
	if dev.TimeoutMs == 0 {
		dev.TimeoutMs = 3000
	}
	if dev.ReadDelayMs == nil {
		// The UPS firmware needs a breather between transactions.
		delay := 100
		dev.ReadDelayMs = &delay
	}

	// ------------------------------------------------------------
	// MQTT DEFAULTS
	// ------------------------------------------------------------

	mq := &cfg.Bridge.MQTT

	if mq.ClientID == "" {
		mq.ClientID = "east-ups-bridge"
	}
	if mq.TopicPrefix == "" {
		mq.TopicPrefix = "east_ups"
	}
	if mq.DiscoveryPrefix == "" {
		mq.DiscoveryPrefix = "homeassistant"
	}
	if mq.Retain == nil {
		retain := true
		mq.Retain = &retain
	}

	// ------------------------------------------------------------
	// LOGGING DEFAULTS
	// ------------------------------------------------------------

	if cfg.Bridge.Logging.Level == "" {
		cfg.Bridge.Logging.Level = "info"
	}
	if cfg.Bridge.Logging.Format == "" {
		cfg.Bridge.Logging.Format = "json"
	}
}
