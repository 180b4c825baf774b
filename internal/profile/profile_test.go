// internal/profile/profile_test.go
package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_KnownModels(t *testing.T) {
	for _, model := range []string{"EA900 G4", "EA660 G4"} {
		p, err := Lookup(model)
		require.NoError(t, err, model)
		assert.Equal(t, model, p.Model)
		assert.NotEmpty(t, p.Specs)
	}
}

func TestLookup_UnknownModelFails(t *testing.T) {
	_, err := Lookup("EA9000 G5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EA9000 G5")
	// The message should steer the user towards a supported model.
	assert.Contains(t, err.Error(), "EA900 G4")
}

func TestModels_StableOrder(t *testing.T) {
	assert.Equal(t, []string{"EA660 G4", "EA900 G4"}, Models())
}

func TestProfiles_KeysUnique(t *testing.T) {
	for _, model := range Models() {
		p, err := Lookup(model)
		require.NoError(t, err)

		seen := map[string]bool{}
		for _, key := range p.SensorKeys() {
			assert.Falsef(t, seen[key], "model %s: duplicate sensor key %s", model, key)
			seen[key] = true
		}
	}
}

func TestProfiles_ConnectionDefaults(t *testing.T) {
	for _, model := range Models() {
		p, err := Lookup(model)
		require.NoError(t, err)
		assert.Equal(t, 9600, p.Defaults.BaudRate, model)
		assert.Equal(t, uint8(1), p.Defaults.SlaveID, model)
		assert.Positive(t, p.Defaults.PollInterval, model)
	}
}

func TestEA900_SensorKeysIncludeStatusWordFields(t *testing.T) {
	p, err := Lookup("EA900 G4")
	require.NoError(t, err)

	keys := p.SensorKeys()
	assert.Contains(t, keys, "status_word")
	assert.Contains(t, keys, "rectifier_status")
	assert.Contains(t, keys, "inverter_status")
	assert.Contains(t, keys, "battery_mode")
	assert.Contains(t, keys, "bypass_status")
	assert.Contains(t, keys, "load_on_status")
}

func TestEA900_Verified(t *testing.T) {
	p, err := Lookup("EA900 G4")
	require.NoError(t, err)
	assert.False(t, p.Unverified)

	p, err = Lookup("EA660 G4")
	require.NoError(t, err)
	assert.True(t, p.Unverified, "EA660 addresses come from documentation only")
}

func TestProfiles_AddressesDifferPerModel(t *testing.T) {
	// The same logical sensor sits at different registers on each model;
	// profiles are looked up, never merged.
	ea900, err := Lookup("EA900 G4")
	require.NoError(t, err)
	ea660, err := Lookup("EA660 G4")
	require.NoError(t, err)

	s900, ok := ea900.Spec("input_current")
	require.True(t, ok)
	s660, ok := ea660.Spec("input_current")
	require.True(t, ok)
	assert.NotEqual(t, s900.Address, s660.Address)
}
