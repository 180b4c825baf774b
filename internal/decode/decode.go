// internal/decode/decode.go
package decode

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tamzrod/east-ups-bridge/internal/profile"
)

// Value is one decoded sensor reading. Either numeric or textual.
type Value struct {
	num     decimal.Decimal
	text    string
	numeric bool
}

// Number wraps a numeric reading.
func Number(d decimal.Decimal) Value {
	return Value{num: d, numeric: true}
}

// Text wraps a textual reading (enum label, decoded string).
func Text(s string) Value {
	return Value{text: s}
}

// Numeric returns the numeric reading, if the value carries one.
func (v Value) Numeric() (decimal.Decimal, bool) {
	return v.num, v.numeric
}

// String renders the value the way it is published: exact decimal text for
// numbers, the label itself for text.
func (v Value) String() string {
	if v.numeric {
		return v.num.String()
	}
	return v.text
}

// Equal reports whether two values decode to the same reading.
func (v Value) Equal(o Value) bool {
	if v.numeric != o.numeric {
		return false
	}
	if v.numeric {
		return v.num.Equal(o.num)
	}
	return v.text == o.text
}

// Decoded pairs a sensor key with its value. Most specs decode to one entry;
// a status word decodes to the raw word plus one entry per bitfield.
type Decoded struct {
	Key   string
	Value Value
}

// Decode converts raw register words into sensor readings per the spec's
// rules. Pure; the same words always decode to the same values.
//
// A word count that does not match the spec is a profile/reader mismatch,
// not a device condition, and fails instead of producing garbage.
func Decode(spec profile.RegisterSpec, words []uint16) ([]Decoded, error) {
	if len(words) != int(spec.Width) {
		return nil, fmt.Errorf("decode %s: got %d words, spec wants %d", spec.Key, len(words), spec.Width)
	}

	switch spec.Kind {
	case profile.KindNumeric:
		raw, err := combine(spec, words)
		if err != nil {
			return nil, err
		}
		return []Decoded{{Key: spec.Key, Value: Number(scaled(spec, decimal.NewFromInt(raw)))}}, nil

	case profile.KindSigned:
		if spec.Width != 1 {
			return nil, fmt.Errorf("decode %s: signed decode is single-word only", spec.Key)
		}
		raw := int64(int16(words[0]))
		return []Decoded{{Key: spec.Key, Value: Number(scaled(spec, decimal.NewFromInt(raw)))}}, nil

	case profile.KindEnum:
		if spec.Width != 1 {
			return nil, fmt.Errorf("decode %s: enum decode is single-word only", spec.Key)
		}
		return []Decoded{{Key: spec.Key, Value: Text(enumLabel(spec.Enum, words[0]))}}, nil

	case profile.KindString:
		return []Decoded{{Key: spec.Key, Value: Text(decodeString(words))}}, nil

	case profile.KindStatusWord:
		if spec.Width != 1 {
			return nil, fmt.Errorf("decode %s: status word is single-word only", spec.Key)
		}
		word := words[0]
		out := make([]Decoded, 0, len(spec.Fields)+1)
		out = append(out, Decoded{Key: spec.Key, Value: Number(decimal.NewFromInt(int64(word)))})
		for _, f := range spec.Fields {
			code := (word >> f.Shift) & f.Mask
			out = append(out, Decoded{Key: f.Key, Value: Text(enumLabel(f.Labels, code))})
		}
		return out, nil

	default:
		return nil, fmt.Errorf("decode %s: unsupported kind %d", spec.Key, spec.Kind)
	}
}

// combine merges 1 or 2 words into an unsigned integer, high word first.
func combine(spec profile.RegisterSpec, words []uint16) (int64, error) {
	switch spec.Width {
	case 1:
		return int64(words[0]), nil
	case 2:
		return int64(words[0])<<16 | int64(words[1]), nil
	default:
		return 0, fmt.Errorf("decode %s: numeric width must be 1 or 2, got %d", spec.Key, spec.Width)
	}
}

func scaled(spec profile.RegisterSpec, raw decimal.Decimal) decimal.Decimal {
	if spec.Scale.IsZero() {
		return raw
	}
	return raw.Mul(spec.Scale)
}

// enumLabel resolves a code against the table. Undocumented codes show up
// routinely on reverse-engineered protocols, so unknown codes decode to a
// literal label instead of failing.
func enumLabel(table map[uint16]string, code uint16) string {
	if label, ok := table[code]; ok {
		return label
	}
	return fmt.Sprintf("Unknown (%d)", code)
}

// decodeString unpacks ASCII characters, two per word high byte first,
// skipping NUL padding.
func decodeString(words []uint16) string {
	var b strings.Builder
	for _, w := range words {
		if hi := byte(w >> 8); hi != 0 {
			b.WriteByte(hi)
		}
		if lo := byte(w); lo != 0 {
			b.WriteByte(lo)
		}
	}
	return strings.TrimSpace(b.String())
}
