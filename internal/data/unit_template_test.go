package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/worldsim/internal/unitmod"
)

func TestLoadUnitTemplates_Embedded(t *testing.T) {
	require.NoError(t, LoadUnitTemplates())

	warrior, err := GetUnitTemplate(1)
	require.NoError(t, err)
	assert.Equal(t, "Human Warrior", warrior.Name)
	assert.Equal(t, int32(20), warrior.Level)
	assert.InDelta(t, 62, warrior.BaseValue(unitmod.StatStrength), 1e-9)
	assert.InDelta(t, 410, warrior.BaseValue(unitmod.Armor), 1e-9)
	assert.InDelta(t, 0, warrior.BaseValue(unitmod.PowerMana), 1e-9, "unlisted stats start at 0")

	mh, ok := warrior.Weapon(unitmod.DamageMainHand)
	require.True(t, ok)
	assert.InDelta(t, 2.6, mh.Speed, 1e-9)
	_, ok = warrior.Weapon(unitmod.DamageRanged)
	assert.False(t, ok)
}

func TestGetUnitTemplate_NotFound(t *testing.T) {
	require.NoError(t, LoadUnitTemplates())
	_, err := GetUnitTemplate(424242)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestParseUnitTemplates_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bad yaml", "units: [\n"},
		{"unknown stat", "units:\n  - id: 1\n    base: {luck: 7}\n"},
		{"weapon in non-weapon slot", "units:\n  - id: 1\n    weapons:\n      armor: {min: 1, max: 2, speed: 1}\n"},
		{"zero weapon speed", "units:\n  - id: 1\n    weapons:\n      damage_main_hand: {min: 1, max: 2}\n"},
		{"duplicate id", "units:\n  - id: 5\n  - id: 5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUnitTemplates([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestParseUnitTemplates_DoesNotTouchRegistry(t *testing.T) {
	require.NoError(t, LoadUnitTemplates())
	before := len(UnitTemplates)

	parsed, err := ParseUnitTemplates([]byte("units:\n  - id: 77\n    name: Dummy\n    base: {stamina: 10}\n"))
	require.NoError(t, err)
	require.Contains(t, parsed, int32(77))
	assert.Len(t, UnitTemplates, before)
}
