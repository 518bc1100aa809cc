package unitmod

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStat is returned for a stat id outside the known ranges.
	ErrInvalidStat = errors.New("invalid stat")
	// ErrInvalidModType is returned for a modification type outside BasePermanent..TotalTemporary.
	ErrInvalidModType = errors.New("invalid mod type")
)

// Stat identifies a named unit stat that modifiers can target.
// Ids are grouped into contiguous ranges, one range per Family.
// FamilyOf depends on that grouping: keep the range markers in sync when adding stats.
type Stat uint8

const (
	// Stat family
	StatStrength Stat = iota
	StatAgility
	StatStamina
	StatIntellect
	StatSpirit
	StatHealth

	// Power family
	PowerMana
	PowerRage
	PowerFocus
	PowerEnergy
	PowerComboPoints
	PowerRunicPower

	// Resistance family (armor is the physical resistance)
	Armor
	ResistanceHoly
	ResistanceFire
	ResistanceNature
	ResistanceFrost
	ResistanceShadow
	ResistanceArcane

	// SpellPower family
	SpellPower
	SpellHealing

	// AttackPower family
	AttackPowerMelee
	AttackPowerRanged

	// SpellDamage family
	SpellDamageHoly
	SpellDamageFire
	SpellDamageNature
	SpellDamageFrost
	SpellDamageShadow
	SpellDamageArcane

	// WeaponDamage family
	DamageMainHand
	DamageOffHand
	DamageRanged

	StatEnd
)

// Range markers.
const (
	statStart         = StatStrength
	statEnd           = StatHealth
	powerStart        = PowerMana
	powerEnd          = PowerRunicPower
	resistanceStart   = Armor
	resistanceEnd     = ResistanceArcane
	spellPowerStart   = SpellPower
	spellPowerEnd     = SpellHealing
	attackPowerStart  = AttackPowerMelee
	attackPowerEnd    = AttackPowerRanged
	spellDamageStart  = SpellDamageHoly
	spellDamageEnd    = SpellDamageArcane
	weaponDamageStart = DamageMainHand
	weaponDamageEnd   = DamageRanged
)

// Family groups related stats that share recompute logic.
type Family uint8

const (
	FamilyStat Family = iota
	FamilyPower
	FamilyResistance
	FamilySpellPower
	FamilyAttackPower
	FamilySpellDamage
	FamilyWeaponDamage
)

var familyNames = [...]string{
	FamilyStat:         "stat",
	FamilyPower:        "power",
	FamilyResistance:   "resistance",
	FamilySpellPower:   "spell_power",
	FamilyAttackPower:  "attack_power",
	FamilySpellDamage:  "spell_damage",
	FamilyWeaponDamage: "weapon_damage",
}

func (f Family) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	return fmt.Sprintf("family(%d)", uint8(f))
}

// FamilyOf returns the family a stat belongs to.
func FamilyOf(s Stat) (Family, error) {
	switch {
	case s >= statStart && s <= statEnd:
		return FamilyStat, nil
	case s >= powerStart && s <= powerEnd:
		return FamilyPower, nil
	case s >= resistanceStart && s <= resistanceEnd:
		return FamilyResistance, nil
	case s >= spellPowerStart && s <= spellPowerEnd:
		return FamilySpellPower, nil
	case s >= attackPowerStart && s <= attackPowerEnd:
		return FamilyAttackPower, nil
	case s >= spellDamageStart && s <= spellDamageEnd:
		return FamilySpellDamage, nil
	case s >= weaponDamageStart && s <= weaponDamageEnd:
		return FamilyWeaponDamage, nil
	}
	return 0, fmt.Errorf("family of stat %d: %w", uint8(s), ErrInvalidStat)
}

// mustFamily panics on unknown stats: an unknown id means the caller and the
// enumeration are out of sync, not a runtime condition.
func mustFamily(s Stat) Family {
	f, err := FamilyOf(s)
	if err != nil {
		panic(err)
	}
	return f
}

var statNames = [StatEnd]string{
	StatStrength:      "strength",
	StatAgility:       "agility",
	StatStamina:       "stamina",
	StatIntellect:     "intellect",
	StatSpirit:        "spirit",
	StatHealth:        "health",
	PowerMana:         "mana",
	PowerRage:         "rage",
	PowerFocus:        "focus",
	PowerEnergy:       "energy",
	PowerComboPoints:  "combo_points",
	PowerRunicPower:   "runic_power",
	Armor:             "armor",
	ResistanceHoly:    "resistance_holy",
	ResistanceFire:    "resistance_fire",
	ResistanceNature:  "resistance_nature",
	ResistanceFrost:   "resistance_frost",
	ResistanceShadow:  "resistance_shadow",
	ResistanceArcane:  "resistance_arcane",
	SpellPower:        "spell_power",
	SpellHealing:      "spell_healing",
	AttackPowerMelee:  "attack_power",
	AttackPowerRanged: "attack_power_ranged",
	SpellDamageHoly:   "spell_damage_holy",
	SpellDamageFire:   "spell_damage_fire",
	SpellDamageNature: "spell_damage_nature",
	SpellDamageFrost:  "spell_damage_frost",
	SpellDamageShadow: "spell_damage_shadow",
	SpellDamageArcane: "spell_damage_arcane",
	DamageMainHand:    "damage_main_hand",
	DamageOffHand:     "damage_off_hand",
	DamageRanged:      "damage_ranged",
}

func (s Stat) String() string {
	if s < StatEnd {
		return statNames[s]
	}
	return fmt.Sprintf("stat(%d)", uint8(s))
}

// ParseStat resolves a stat by its String() name.
func ParseStat(name string) (Stat, error) {
	for i, n := range statNames {
		if n == name {
			return Stat(i), nil
		}
	}
	return 0, fmt.Errorf("parsing stat %q: %w", name, ErrInvalidStat)
}

// Stats returns every known stat in ascending order.
func Stats() []Stat {
	out := make([]Stat, 0, StatEnd)
	for s := Stat(0); s < StatEnd; s++ {
		out = append(out, s)
	}
	return out
}

// School offsets shared by the resistance and spell damage ranges.
// Index 0 is physical (armor) and has no spell damage counterpart.
const (
	SchoolPhysical = iota
	SchoolHoly
	SchoolFire
	SchoolNature
	SchoolFrost
	SchoolShadow
	SchoolArcane
)

// ResistanceForSchool maps a school index to its resistance stat.
func ResistanceForSchool(school int) (Stat, bool) {
	if school < SchoolPhysical || school > SchoolArcane {
		return 0, false
	}
	return resistanceStart + Stat(school), true
}

// SpellDamageForSchool maps a magic school index to its spell damage stat.
func SpellDamageForSchool(school int) (Stat, bool) {
	if school < SchoolHoly || school > SchoolArcane {
		return 0, false
	}
	return spellDamageStart + Stat(school-SchoolHoly), true
}
