// internal/profile/profile.go
package profile

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Table identifies which Modbus register table a spec lives in.
type Table uint8

const (
	TableInput Table = iota
	TableHolding
)

func (t Table) String() string {
	switch t {
	case TableInput:
		return "input"
	case TableHolding:
		return "holding"
	default:
		return fmt.Sprintf("table(%d)", uint8(t))
	}
}

// Kind selects the decode rule applied to a register's raw words.
type Kind uint8

const (
	// KindNumeric combines 1 or 2 words (high word first, unsigned) and
	// multiplies by Scale.
	KindNumeric Kind = iota
	// KindSigned treats a single word as int16 two's complement before scaling.
	KindSigned
	// KindEnum looks the raw word up in the spec's enum table.
	KindEnum
	// KindString unpacks ASCII characters, two per word, NULs skipped.
	KindString
	// KindStatusWord splits a single word into bitfield sub-sensors.
	KindStatusWord
)

// BitField describes one sub-sensor packed into a status word.
type BitField struct {
	Key    string
	Name   string
	Shift  uint
	Mask   uint16
	Labels map[uint16]string
}

// RegisterSpec maps one sensor onto the device's register layout.
// Immutable; defined once per supported model.
type RegisterSpec struct {
	Key         string
	Name        string
	Table       Table
	Address     uint16 // 0-based offset
	Width       uint16 // words
	Scale       decimal.Decimal
	Unit        string
	DeviceClass string
	Diagnostic  bool
	Kind        Kind
	Enum        map[uint16]string
	Fields      []BitField // KindStatusWord only
}

// Defaults carries per-model connection defaults.
type Defaults struct {
	BaudRate     int
	SlaveID      uint8
	PollInterval time.Duration
}

// DeviceProfile is the full register map and identity of one UPS model.
// Profiles are looked up by model string and never merged.
type DeviceProfile struct {
	Model        string
	Manufacturer string
	Defaults     Defaults
	Specs        []RegisterSpec

	// Unverified marks profiles taken from vendor documentation that have
	// not been confirmed against real hardware. Register addresses are
	// known to drift between documented and shipped firmware.
	Unverified bool
}

var registry = map[string]*DeviceProfile{}

func register(p *DeviceProfile) {
	if _, dup := registry[p.Model]; dup {
		panic(fmt.Sprintf("profile: duplicate model %q", p.Model))
	}
	registry[p.Model] = p
}

// Lookup returns the profile for the given model identifier.
// Unknown models fail here, at setup time, never at poll time.
func Lookup(model string) (*DeviceProfile, error) {
	p, ok := registry[model]
	if !ok {
		return nil, fmt.Errorf("profile: unknown model %q (supported: %v)", model, Models())
	}
	return p, nil
}

// Models lists the supported model identifiers in stable order.
func Models() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Spec returns the register spec for a sensor key, if the profile defines it.
func (p *DeviceProfile) Spec(key string) (RegisterSpec, bool) {
	for _, s := range p.Specs {
		if s.Key == key {
			return s, true
		}
	}
	return RegisterSpec{}, false
}

// SensorKeys lists every key a full snapshot of this profile contains,
// including bitfield sub-sensors.
func (p *DeviceProfile) SensorKeys() []string {
	keys := make([]string, 0, len(p.Specs))
	for _, s := range p.Specs {
		keys = append(keys, s.Key)
		if s.Kind == KindStatusWord {
			for _, f := range s.Fields {
				keys = append(keys, f.Key)
			}
		}
	}
	return keys
}

// scale is shorthand for profile table literals.
func scale(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
