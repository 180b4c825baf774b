// internal/coordinator/snapshot.go
package coordinator

import (
	"time"

	"github.com/tamzrod/east-ups-bridge/internal/decode"
)

// Snapshot is the full set of decoded sensor values from one successful poll
// cycle. Immutable once published; superseded wholesale by the next cycle.
// It contains a value for every spec in the active profile, or the cycle
// never produced it.
type Snapshot struct {
	Model   string
	TakenAt time.Time
	values  map[string]decode.Value
}

// Value returns the decoded reading for a sensor key.
func (s Snapshot) Value(key string) (decode.Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns every sensor key present in the snapshot.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of decoded sensors.
func (s Snapshot) Len() int { return len(s.values) }
