package model

import (
	"github.com/udisondev/worldsim/internal/unitmod"
)

// Точка перелома: первые 20 выносливости/интеллекта дают по 1 единице.
const statBreakpoint = 20

// healthFromStamina returns the health granted by stamina.
// Formula: min(sta, 20) + (sta - 20) × 10
func healthFromStamina(stamina float64) float64 {
	low := min(stamina, statBreakpoint)
	return low + max(stamina-statBreakpoint, 0)*10
}

// manaFromIntellect returns the mana granted by intellect.
// Formula: min(int, 20) + (int - 20) × 15
func manaFromIntellect(intellect float64) float64 {
	low := min(intellect, statBreakpoint)
	return low + max(intellect-statBreakpoint, 0)*15
}

// Stat returns the modified value of a primary stat (strength..spirit).
func (u *Unit) Stat(stat unitmod.Stat) float64 {
	if stat < unitmod.StatStrength || stat > unitmod.StatSpirit {
		return 0
	}
	return u.stats[stat-unitmod.StatStrength]
}

// Resistance returns armor or a school resistance.
func (u *Unit) Resistance(res unitmod.Stat) float64 {
	if res < unitmod.Armor || res > unitmod.ResistanceArcane {
		return 0
	}
	return u.resistances[res-unitmod.Armor]
}

// SpellPower returns spell power, or bonus healing when healing is true.
func (u *Unit) SpellPower(healing bool) float64 {
	if healing {
		return u.spellHealing
	}
	return u.spellPower
}

// AttackPower returns melee or ranged attack power.
func (u *Unit) AttackPower(ranged bool) float64 {
	if ranged {
		return u.attackPower[1]
	}
	return u.attackPower[0]
}

// SpellDamage returns the bonus damage of a spell school.
func (u *Unit) SpellDamage(school unitmod.Stat) float64 {
	if school < unitmod.SpellDamageHoly || school > unitmod.SpellDamageArcane {
		return 0
	}
	return u.spellDamage[school-unitmod.SpellDamageHoly]
}

// WeaponDamage returns the damage range of a weapon slot.
// Empty slots deal no damage.
func (u *Unit) WeaponDamage(slot unitmod.Stat) DamageRange {
	if slot < unitmod.DamageMainHand || slot > unitmod.DamageRanged {
		return DamageRange{}
	}
	return u.weaponDamage[slot-unitmod.DamageMainHand]
}

// Value returns the cached derived value of any stat.
// Health and powers report their maximum, weapon slots the average hit.
func (u *Unit) Value(stat unitmod.Stat) float64 {
	family, err := unitmod.FamilyOf(stat)
	if err != nil {
		return 0
	}
	switch family {
	case unitmod.FamilyStat:
		if stat == unitmod.StatHealth {
			return float64(u.maxHP)
		}
		return u.Stat(stat)
	case unitmod.FamilyPower:
		return float64(u.MaxPower(stat))
	case unitmod.FamilyResistance:
		return u.Resistance(stat)
	case unitmod.FamilySpellPower:
		return u.SpellPower(stat == unitmod.SpellHealing)
	case unitmod.FamilyAttackPower:
		return u.AttackPower(stat == unitmod.AttackPowerRanged)
	case unitmod.FamilySpellDamage:
		return u.SpellDamage(stat)
	case unitmod.FamilyWeaponDamage:
		d := u.WeaponDamage(stat)
		return (d.Min + d.Max) / 2
	}
	return 0
}

// BaseValue returns the unmodified value a stat's modifiers are folded onto:
// the template base plus contributions of other (already modified) stats.
func (u *Unit) BaseValue(stat unitmod.Stat) float64 {
	base := u.tmpl.BaseValue(stat)
	switch {
	case stat == unitmod.StatHealth:
		return base + healthFromStamina(u.Stat(unitmod.StatStamina))
	case stat == unitmod.PowerMana:
		// Юниты без маны не получают её от интеллекта.
		if base <= 0 {
			return 0
		}
		return base + manaFromIntellect(u.Stat(unitmod.StatIntellect))
	case stat == unitmod.Armor:
		return base + u.Stat(unitmod.StatAgility)*2
	case stat == unitmod.AttackPowerMelee:
		// Formula: level × 3 + str × 2 - 20
		ap := float64(u.level)*3 + u.Stat(unitmod.StatStrength)*2 - 20
		return base + max(ap, 0)
	case stat == unitmod.AttackPowerRanged:
		// Formula: level × 2 + agi - 10
		ap := float64(u.level)*2 + u.Stat(unitmod.StatAgility) - 10
		return base + max(ap, 0)
	case stat >= unitmod.SpellDamageHoly && stat <= unitmod.SpellDamageArcane:
		return base + u.spellPower
	case stat >= unitmod.DamageMainHand && stat <= unitmod.DamageRanged:
		w, ok := u.tmpl.Weapon(stat)
		if !ok {
			return 0
		}
		return (w.Min+w.Max)/2 + u.weaponBonus(stat, w.Speed)
	}
	return base
}

// StatResult folds the unit's modifiers for stat onto its base and returns
// the breakdown (naked value, positive and negative parts) for display.
func (u *Unit) StatResult(stat unitmod.Stat, ignoreTemporary bool) unitmod.Result {
	r := unitmod.NewResult(u.BaseValue(stat))
	u.mods.ApplyModsTo(stat, &r, ignoreTemporary)
	return r
}

// RecomputeAll refreshes every derived value in dependency order.
func (u *Unit) RecomputeAll() {
	for s := unitmod.StatStrength; s <= unitmod.StatSpirit; s++ {
		u.stats[s-unitmod.StatStrength] = u.mods.GetTotal(s, u.tmpl.BaseValue(s))
	}
	u.UpdateMaxHealth()
	for p := unitmod.PowerMana; p <= unitmod.PowerRunicPower; p++ {
		u.UpdateMaxPower(p)
	}
	for school := unitmod.SchoolPhysical; school <= unitmod.SchoolArcane; school++ {
		res, _ := unitmod.ResistanceForSchool(school)
		u.UpdateResistance(res)
	}
	u.UpdateSpellPower(false) // cascades into spell damage
	u.UpdateSpellPower(true)
	u.UpdateAttackPower(false) // cascades into weapon damage
	u.UpdateAttackPower(true)
}

// UpdateStat implements unitmod.Owner.
func (u *Unit) UpdateStat(stat unitmod.Stat) {
	if stat < unitmod.StatStrength || stat > unitmod.StatSpirit {
		return
	}
	u.stats[stat-unitmod.StatStrength] = u.mods.GetTotal(stat, u.tmpl.BaseValue(stat))

	switch stat {
	case unitmod.StatStrength:
		u.UpdateAttackPower(false)
	case unitmod.StatAgility:
		u.UpdateResistance(unitmod.Armor)
		u.UpdateAttackPower(true)
	case unitmod.StatStamina:
		u.UpdateMaxHealth()
	case unitmod.StatIntellect:
		u.UpdateMaxPower(unitmod.PowerMana)
	}
}

// UpdateMaxHealth implements unitmod.Owner.
func (u *Unit) UpdateMaxHealth() {
	total := u.mods.GetTotal(unitmod.StatHealth, u.BaseValue(unitmod.StatHealth))
	u.setMaxHealth(int32(total))
}

// UpdateMaxPower implements unitmod.Owner.
func (u *Unit) UpdateMaxPower(power unitmod.Stat) {
	i, ok := powerIndex(power)
	if !ok {
		return
	}
	total := u.mods.GetTotal(power, u.BaseValue(power))
	u.setMaxPower(i, int32(total))
}

// UpdateResistance implements unitmod.Owner.
func (u *Unit) UpdateResistance(res unitmod.Stat) {
	if res < unitmod.Armor || res > unitmod.ResistanceArcane {
		return
	}
	u.resistances[res-unitmod.Armor] = max(u.mods.GetTotal(res, u.BaseValue(res)), 0)
}

// UpdateSpellPower implements unitmod.Owner. Spell power feeds every school's
// spell damage, bonus healing feeds nothing else.
func (u *Unit) UpdateSpellPower(healing bool) {
	if healing {
		u.spellHealing = max(u.mods.GetTotal(unitmod.SpellHealing, u.BaseValue(unitmod.SpellHealing)), 0)
		return
	}
	u.spellPower = max(u.mods.GetTotal(unitmod.SpellPower, u.BaseValue(unitmod.SpellPower)), 0)
	for school := unitmod.SchoolHoly; school <= unitmod.SchoolArcane; school++ {
		dmg, _ := unitmod.SpellDamageForSchool(school)
		u.UpdateSpellDamage(dmg)
	}
}

// UpdateAttackPower implements unitmod.Owner.
func (u *Unit) UpdateAttackPower(ranged bool) {
	stat := unitmod.AttackPowerMelee
	idx := 0
	if ranged {
		stat = unitmod.AttackPowerRanged
		idx = 1
	}
	u.attackPower[idx] = max(u.mods.GetTotal(stat, u.BaseValue(stat)), 0)

	if ranged {
		u.UpdateWeaponDamage(unitmod.DamageRanged)
		return
	}
	u.UpdateWeaponDamage(unitmod.DamageMainHand)
	u.UpdateWeaponDamage(unitmod.DamageOffHand)
}

// UpdateSpellDamage implements unitmod.Owner.
func (u *Unit) UpdateSpellDamage(school unitmod.Stat) {
	if school < unitmod.SpellDamageHoly || school > unitmod.SpellDamageArcane {
		return
	}
	u.spellDamage[school-unitmod.SpellDamageHoly] = max(u.mods.GetTotal(school, u.BaseValue(school)), 0)
}

// UpdateWeaponDamage implements unitmod.Owner.
// Formula: (weaponMin|weaponMax + AP / 14 × speed) folded through the slot's modifiers
func (u *Unit) UpdateWeaponDamage(slot unitmod.Stat) {
	if slot < unitmod.DamageMainHand || slot > unitmod.DamageRanged {
		return
	}
	w, ok := u.tmpl.Weapon(slot)
	if !ok {
		u.weaponDamage[slot-unitmod.DamageMainHand] = DamageRange{}
		return
	}
	bonus := u.weaponBonus(slot, w.Speed)

	lo := unitmod.NewResult(w.Min + bonus)
	u.mods.ApplyModsTo(slot, &lo, false)
	hi := unitmod.NewResult(w.Max + bonus)
	u.mods.ApplyModsTo(slot, &hi, false)

	u.weaponDamage[slot-unitmod.DamageMainHand] = DamageRange{
		Min: max(lo.TotalValue, 0),
		Max: max(hi.TotalValue, 0),
	}
}

// weaponBonus returns the attack power contribution to one swing.
func (u *Unit) weaponBonus(slot unitmod.Stat, speed float64) float64 {
	return u.AttackPower(slot == unitmod.DamageRanged) / 14 * speed
}
