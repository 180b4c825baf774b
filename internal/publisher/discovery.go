// internal/publisher/discovery.go
package publisher

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tamzrod/east-ups-bridge/internal/profile"
)

type discoveryMessage struct {
	topic   string
	payload []byte
}

// discoveryMessages builds one Home Assistant discovery config per sensor,
// including the bitfield sub-sensors derived from the status word.
func (p *Publisher) discoveryMessages() []discoveryMessage {
	node := slug(p.cfg.TopicPrefix)
	device := map[string]any{
		"identifiers":  []string{node},
		"name":         fmt.Sprintf("EAST UPS %s", p.prof.Model),
		"manufacturer": p.prof.Manufacturer,
		"model":        p.prof.Model,
	}

	var msgs []discoveryMessage
	for _, spec := range p.prof.Specs {
		msgs = append(msgs, p.discoveryFor(node, device, sensorMeta{
			key:         spec.Key,
			name:        spec.Name,
			unit:        spec.Unit,
			deviceClass: spec.DeviceClass,
			diagnostic:  spec.Diagnostic,
			numeric:     spec.Kind == profile.KindNumeric || spec.Kind == profile.KindSigned,
		}))
		if spec.Kind != profile.KindStatusWord {
			continue
		}
		for _, f := range spec.Fields {
			msgs = append(msgs, p.discoveryFor(node, device, sensorMeta{
				key:  f.Key,
				name: f.Name,
			}))
		}
	}
	return msgs
}

type sensorMeta struct {
	key         string
	name        string
	unit        string
	deviceClass string
	diagnostic  bool
	numeric     bool
}

func (p *Publisher) discoveryFor(node string, device map[string]any, meta sensorMeta) discoveryMessage {
	payload := map[string]any{
		"name":                  meta.name,
		"unique_id":             fmt.Sprintf("%s_%s", node, meta.key),
		"state_topic":           p.stateTopic(meta.key),
		"availability_topic":    p.availabilityTopic(),
		"payload_available":     payloadOnline,
		"payload_not_available": payloadOffline,
		"device":                device,
	}
	if meta.unit != "" {
		payload["unit_of_measurement"] = meta.unit
	}
	if meta.deviceClass != "" {
		payload["device_class"] = meta.deviceClass
	}
	if meta.numeric {
		payload["state_class"] = "measurement"
	}
	if meta.diagnostic {
		payload["entity_category"] = "diagnostic"
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		// Payload is built from plain maps and strings; this cannot fail.
		p.logger.Error().Err(err).Str("sensor", meta.key).Msg("discovery payload marshal failed")
	}

	topic := fmt.Sprintf("%s/sensor/%s/%s/config", strings.Trim(p.cfg.DiscoveryPrefix, "/"), node, meta.key)
	return discoveryMessage{topic: topic, payload: raw}
}

func slug(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "_", "/", "_", "-", "_").Replace(s)
	return s
}
