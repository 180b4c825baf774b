// internal/publisher/publisher.go
package publisher

import (
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/tamzrod/east-ups-bridge/internal/coordinator"
	"github.com/tamzrod/east-ups-bridge/internal/profile"
)

const connectTimeout = 10 * time.Second

// Config is the MQTT output config.
type Config struct {
	Broker          string
	ClientID        string
	Username        string
	Password        string
	TopicPrefix     string
	DiscoveryPrefix string
	QoS             byte
	Retain          bool
}

// Publisher republishes each decoded sensor value over MQTT, announcing the
// sensors to Home Assistant through its discovery protocol. It is the sole
// consumer-facing boundary of the bridge: one retained state topic per
// sensor plus an availability topic reflecting snapshot freshness.
type Publisher struct {
	cfg    Config
	prof   *profile.DeviceProfile
	cli    mqtt.Client
	logger zerolog.Logger

	discoverOnce sync.Once
}

// New builds a connected publisher. The broker holds an "offline" last will
// on the availability topic so consumers see the bridge drop out.
func New(cfg Config, prof *profile.DeviceProfile, logger zerolog.Logger) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("publisher: broker address required")
	}
	if prof == nil {
		return nil, errors.New("publisher: device profile required")
	}

	p := &Publisher{cfg: cfg, prof: prof, logger: logger}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetWill(p.availabilityTopic(), payloadOffline, cfg.QoS, true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	cli := mqtt.NewClient(opts)
	token := cli.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("publisher: connect %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("publisher: connect %s: %w", cfg.Broker, err)
	}

	p.cli = cli
	return p, nil
}

const (
	payloadOnline  = "online"
	payloadOffline = "offline"
)

func (p *Publisher) availabilityTopic() string {
	return p.cfg.TopicPrefix + "/status"
}

func (p *Publisher) stateTopic(key string) string {
	return p.cfg.TopicPrefix + "/" + key
}

// HandleSnapshot publishes every sensor of a freshly published snapshot.
// Discovery configs go out once, ahead of the first states.
func (p *Publisher) HandleSnapshot(snap coordinator.Snapshot) {
	p.discoverOnce.Do(p.publishDiscovery)

	p.publish(p.availabilityTopic(), payloadOnline, true)

	for _, key := range p.prof.SensorKeys() {
		value, ok := snap.Value(key)
		if !ok {
			// A published snapshot covers every key; anything missing
			// would be a coordinator defect.
			p.logger.Error().Str("sensor", key).Msg("snapshot missing sensor value")
			continue
		}
		p.publish(p.stateTopic(key), value.String(), p.cfg.Retain)
	}
}

// HandleStale marks the device unavailable after a failed poll cycle. The
// retained state topics keep the last known values.
func (p *Publisher) HandleStale() {
	p.publish(p.availabilityTopic(), payloadOffline, true)
}

func (p *Publisher) publishDiscovery() {
	for _, msg := range p.discoveryMessages() {
		p.publish(msg.topic, string(msg.payload), true)
	}
	p.logger.Info().Str("prefix", p.cfg.DiscoveryPrefix).Msg("discovery configs published")
}

func (p *Publisher) publish(topic, payload string, retain bool) {
	token := p.cli.Publish(topic, p.cfg.QoS, retain, payload)
	if !token.WaitTimeout(connectTimeout) {
		p.logger.Warn().Str("topic", topic).Msg("publish timed out")
		return
	}
	if err := token.Error(); err != nil {
		p.logger.Warn().Err(err).Str("topic", topic).Msg("publish failed")
	}
}

// Close marks the device offline and disconnects.
func (p *Publisher) Close() {
	if p.cli == nil {
		return
	}
	p.publish(p.availabilityTopic(), payloadOffline, true)
	p.cli.Disconnect(250)
}
