// internal/profile/plan.go
package profile

import (
	"fmt"
	"sort"
)

// DefaultMaxGap is the widest run of unneeded registers a span will bridge
// rather than split into a second transaction. Reading a few spare words is
// cheaper than another RTU round trip on a 9600 baud link.
const DefaultMaxGap = 8

// Span is one contiguous Modbus read transaction.
type Span struct {
	Table    Table
	Start    uint16
	Quantity uint16
}

// End returns the last register address covered by the span, inclusive.
func (s Span) End() uint16 {
	return s.Start + s.Quantity - 1
}

// ReadPlan is the minimal ordered set of read transactions covering every
// spec in a profile.
type ReadPlan []Span

// BuildReadPlan coalesces the profile's register specs into read spans,
// bridging gaps of up to maxGap registers. Specs are grouped per table;
// input and holding registers never share a transaction.
func BuildReadPlan(p *DeviceProfile, maxGap uint16) (ReadPlan, error) {
	if p == nil {
		return nil, fmt.Errorf("profile: nil profile")
	}
	if len(p.Specs) == 0 {
		return nil, fmt.Errorf("profile %s: no register specs", p.Model)
	}

	type interval struct {
		start uint16
		end   uint16
	}
	byTable := map[Table][]interval{}

	for _, spec := range p.Specs {
		if spec.Width == 0 {
			return nil, fmt.Errorf("profile %s: spec %s has zero width", p.Model, spec.Key)
		}
		end := uint32(spec.Address) + uint32(spec.Width) - 1
		if end > 0xFFFF {
			return nil, fmt.Errorf("profile %s: spec %s exceeds modbus address space", p.Model, spec.Key)
		}
		byTable[spec.Table] = append(byTable[spec.Table], interval{start: spec.Address, end: uint16(end)})
	}

	var plan ReadPlan
	for _, table := range []Table{TableInput, TableHolding} {
		ivs := byTable[table]
		if len(ivs) == 0 {
			continue
		}
		sort.Slice(ivs, func(i, j int) bool {
			if ivs[i].start == ivs[j].start {
				return ivs[i].end < ivs[j].end
			}
			return ivs[i].start < ivs[j].start
		})

		cur := ivs[0]
		for _, iv := range ivs[1:] {
			if iv.start <= cur.end || uint32(iv.start)-uint32(cur.end)-1 <= uint32(maxGap) {
				if iv.end > cur.end {
					cur.end = iv.end
				}
				continue
			}
			plan = append(plan, Span{Table: table, Start: cur.start, Quantity: cur.end - cur.start + 1})
			cur = iv
		}
		plan = append(plan, Span{Table: table, Start: cur.start, Quantity: cur.end - cur.start + 1})
	}

	return plan, nil
}
