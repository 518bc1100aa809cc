package unitmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_FindNeverCreates(t *testing.T) {
	var s store
	assert.Nil(t, s.find(BasePermanent, StatStamina))
	assert.True(t, s.empty())
}

func TestStore_FindOrCreateStartsAtIdentity(t *testing.T) {
	var s store
	mod := s.findOrCreate(TotalTemporary, Armor)
	require.NotNil(t, mod)
	assert.Equal(t, TotalTemporary, mod.Type)
	assert.True(t, mod.IsIdle())
	assert.Equal(t, 1, s.len())

	again := s.findOrCreate(TotalTemporary, Armor)
	assert.Same(t, mod, again)
	assert.Equal(t, 1, s.len())
}

func TestStore_LevelsStaySortedAndUnique(t *testing.T) {
	var s store
	inserts := []struct {
		typ  ModType
		stat Stat
	}{
		{TotalTemporary, DamageRanged},
		{BasePermanent, ResistanceFire},
		{BasePermanent, StatStamina},
		{TotalTemporary, StatStrength},
		{BasePermanent, Armor},
		{BaseTemporary, PowerMana},
		{BasePermanent, StatStamina},
		{BasePermanent, StatAgility},
	}
	for _, in := range inserts {
		s.findOrCreate(in.typ, in.stat).Flat.Modify(1, true)
	}

	require.Len(t, s.types, 3)
	for i := 1; i < len(s.types); i++ {
		assert.Less(t, s.types[i-1].typ, s.types[i].typ)
	}
	for _, tn := range s.types {
		for i := 1; i < len(tn.families); i++ {
			assert.Less(t, tn.families[i-1].family, tn.families[i].family)
		}
		for _, fn := range tn.families {
			for i := 1; i < len(fn.stats); i++ {
				assert.Less(t, fn.stats[i-1].stat, fn.stats[i].stat)
			}
		}
	}

	var visited []Stat
	s.each(func(typ ModType, stat Stat, mod UnitMod) {
		if typ == BasePermanent {
			visited = append(visited, stat)
		}
	})
	assert.Equal(t, []Stat{StatAgility, StatStamina, Armor, ResistanceFire}, visited)
	assert.Equal(t, 7, s.len())
}

func TestStore_RemoveCascades(t *testing.T) {
	var s store
	s.findOrCreate(BasePermanent, ResistanceFire).Flat.Modify(5, true)
	s.findOrCreate(BasePermanent, ResistanceFrost).Flat.Modify(5, true)
	s.findOrCreate(BasePermanent, StatStamina).Flat.Modify(5, true)

	require.True(t, s.remove(BasePermanent, ResistanceFire))
	assert.True(t, s.hasFamily(BasePermanent, FamilyResistance), "family still has frost")

	require.True(t, s.remove(BasePermanent, ResistanceFrost))
	assert.False(t, s.hasFamily(BasePermanent, FamilyResistance))
	assert.True(t, s.hasType(BasePermanent))

	require.True(t, s.remove(BasePermanent, StatStamina))
	assert.False(t, s.hasType(BasePermanent))
	assert.True(t, s.empty())

	assert.False(t, s.remove(BasePermanent, StatStamina))
}

func TestStore_CheckForRemoveKeepsActive(t *testing.T) {
	var s store
	mod := s.findOrCreate(BaseTemporary, SpellPower)
	mod.Mult.Modify(1.1, true)
	s.checkForRemove(BaseTemporary, SpellPower)
	assert.NotNil(t, s.find(BaseTemporary, SpellPower))

	s.find(BaseTemporary, SpellPower).Mult.Modify(1.1, false)
	s.checkForRemove(BaseTemporary, SpellPower)
	assert.Nil(t, s.find(BaseTemporary, SpellPower))
	assert.True(t, s.empty())
}

func TestStore_UnknownStatPanics(t *testing.T) {
	var s store
	assert.PanicsWithError(t, "family of stat 200: invalid stat", func() {
		s.findOrCreate(BasePermanent, Stat(200))
	})
}
