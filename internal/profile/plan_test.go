// internal/profile/plan_test.go
package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planProfile(specs ...RegisterSpec) *DeviceProfile {
	return &DeviceProfile{Model: "test", Specs: specs}
}

func numSpec(key string, table Table, addr, width uint16) RegisterSpec {
	return RegisterSpec{Key: key, Table: table, Address: addr, Width: width, Kind: KindNumeric}
}

func TestBuildReadPlan_MergesWithinGap(t *testing.T) {
	p := planProfile(
		numSpec("a", TableInput, 0, 1),
		numSpec("b", TableInput, 5, 1), // gap of 4 registers
	)

	plan, err := BuildReadPlan(p, 8)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, Span{Table: TableInput, Start: 0, Quantity: 6}, plan[0])
}

func TestBuildReadPlan_SplitsBeyondGap(t *testing.T) {
	p := planProfile(
		numSpec("a", TableInput, 0, 1),
		numSpec("b", TableInput, 20, 1), // gap of 19 registers
	)

	plan, err := BuildReadPlan(p, 8)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, Span{Table: TableInput, Start: 0, Quantity: 1}, plan[0])
	assert.Equal(t, Span{Table: TableInput, Start: 20, Quantity: 1}, plan[1])
}

func TestBuildReadPlan_TablesNeverShareASpan(t *testing.T) {
	p := planProfile(
		numSpec("a", TableInput, 0, 1),
		numSpec("b", TableHolding, 0, 1),
	)

	plan, err := BuildReadPlan(p, 8)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.NotEqual(t, plan[0].Table, plan[1].Table)
}

func TestBuildReadPlan_WidthExtendsSpan(t *testing.T) {
	p := planProfile(
		numSpec("a", TableInput, 0, 2),
		numSpec("b", TableInput, 2, 1),
	)

	plan, err := BuildReadPlan(p, 0)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, uint16(3), plan[0].Quantity)
}

func TestBuildReadPlan_ZeroWidthRejected(t *testing.T) {
	p := planProfile(RegisterSpec{Key: "a", Table: TableInput, Address: 0, Width: 0})
	_, err := BuildReadPlan(p, 8)
	require.Error(t, err)
}

func TestBuildReadPlan_EmptyProfileRejected(t *testing.T) {
	_, err := BuildReadPlan(planProfile(), 8)
	require.Error(t, err)
	_, err = BuildReadPlan(nil, 8)
	require.Error(t, err)
}

func TestBuildReadPlan_EA900Geometry(t *testing.T) {
	p, err := Lookup("EA900 G4")
	require.NoError(t, err)

	plan, err := BuildReadPlan(p, DefaultMaxGap)
	require.NoError(t, err)

	// All input registers sit within 72 words; holding registers split into
	// three islands (5-15, 26-27, 76-82).
	require.Len(t, plan, 4)
	assert.Equal(t, Span{Table: TableInput, Start: 0, Quantity: 72}, plan[0])
	assert.Equal(t, Span{Table: TableHolding, Start: 5, Quantity: 11}, plan[1])
	assert.Equal(t, Span{Table: TableHolding, Start: 26, Quantity: 2}, plan[2])
	assert.Equal(t, Span{Table: TableHolding, Start: 76, Quantity: 7}, plan[3])
}

func TestBuildReadPlan_CoversEverySpec(t *testing.T) {
	for _, model := range Models() {
		p, err := Lookup(model)
		require.NoError(t, err)

		plan, err := BuildReadPlan(p, DefaultMaxGap)
		require.NoError(t, err)

		for _, spec := range p.Specs {
			covered := false
			for _, span := range plan {
				if span.Table == spec.Table &&
					spec.Address >= span.Start &&
					spec.Address+spec.Width-1 <= span.End() {
					covered = true
					break
				}
			}
			assert.Truef(t, covered, "model %s: spec %s not covered by plan", model, spec.Key)
		}
	}
}
