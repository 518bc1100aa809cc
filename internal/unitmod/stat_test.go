package unitmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchoolMapping(t *testing.T) {
	tests := []struct {
		school   int
		res      Stat
		spell    Stat
		hasSpell bool
	}{
		{SchoolPhysical, Armor, 0, false},
		{SchoolHoly, ResistanceHoly, SpellDamageHoly, true},
		{SchoolFire, ResistanceFire, SpellDamageFire, true},
		{SchoolNature, ResistanceNature, SpellDamageNature, true},
		{SchoolFrost, ResistanceFrost, SpellDamageFrost, true},
		{SchoolShadow, ResistanceShadow, SpellDamageShadow, true},
		{SchoolArcane, ResistanceArcane, SpellDamageArcane, true},
	}
	for _, tt := range tests {
		t.Run(tt.res.String(), func(t *testing.T) {
			res, ok := ResistanceForSchool(tt.school)
			require.True(t, ok)
			assert.Equal(t, tt.res, res)

			spell, ok := SpellDamageForSchool(tt.school)
			assert.Equal(t, tt.hasSpell, ok)
			if tt.hasSpell {
				assert.Equal(t, tt.spell, spell)
			}
		})
	}

	_, ok := ResistanceForSchool(SchoolArcane + 1)
	assert.False(t, ok)
	_, ok = ResistanceForSchool(-1)
	assert.False(t, ok)
	_, ok = SpellDamageForSchool(SchoolArcane + 1)
	assert.False(t, ok)
}
