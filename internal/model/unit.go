package model

import (
	"math"

	"github.com/udisondev/worldsim/internal/data"
	"github.com/udisondev/worldsim/internal/unitmod"
)

const (
	primaryStatCount = int(unitmod.StatSpirit-unitmod.StatStrength) + 1
	powerCount       = int(unitmod.PowerRunicPower-unitmod.PowerMana) + 1
	resistanceCount  = int(unitmod.ResistanceArcane-unitmod.Armor) + 1
	spellSchoolCount = int(unitmod.SpellDamageArcane-unitmod.SpellDamageHoly) + 1
	weaponSlotCount  = int(unitmod.DamageRanged-unitmod.DamageMainHand) + 1
)

// DamageRange: итоговый урон оружия в слоте.
type DamageRange struct {
	Min float64
	Max float64
}

// Unit: живое существо (игрок или NPC) с модификаторами характеристик.
//
// Unit is owned by exactly one simulation tick at a time and is not
// safe for concurrent use. Derived values are cached and refreshed by the
// unitmod.Manager callbacks whenever a modifier changes.
type Unit struct {
	objectID uint32
	name     string
	level    int32
	tmpl     *data.UnitTemplate

	mods      *unitmod.Manager
	bulkDepth int // CanModifyStats is false while > 0

	stats        [primaryStatCount]float64
	currentHP    int32
	maxHP        int32
	currentPower [powerCount]int32
	maxPower     [powerCount]int32
	resistances  [resistanceCount]float64
	spellPower   float64
	spellHealing float64
	attackPower  [2]float64 // melee, ranged
	spellDamage  [spellSchoolCount]float64
	weaponDamage [weaponSlotCount]DamageRange
}

// NewUnit создаёт юнита из шаблона. Все производные значения рассчитываются
// сразу, текущие HP и ресурсы равны максимальным.
func NewUnit(objectID uint32, name string, tmpl *data.UnitTemplate, opts ...unitmod.Option) *Unit {
	u := &Unit{
		objectID: objectID,
		name:     name,
		level:    tmpl.Level,
		tmpl:     tmpl,
	}
	u.mods = unitmod.NewManager(u, opts...)
	u.RecomputeAll()

	u.currentHP = u.maxHP
	u.currentPower = u.maxPower
	return u
}

// ObjectID возвращает уникальный ID объекта.
func (u *Unit) ObjectID() uint32 { return u.objectID }

// Name возвращает имя юнита.
func (u *Unit) Name() string { return u.name }

// Level возвращает уровень юнита.
func (u *Unit) Level() int32 { return u.level }

// Template returns the template the unit was built from.
func (u *Unit) Template() *data.UnitTemplate { return u.tmpl }

// Mods returns the unit's modifier manager.
func (u *Unit) Mods() *unitmod.Manager { return u.mods }

// SetLevel sets the level (clamp 1..100) and recomputes level-dependent values.
func (u *Unit) SetLevel(level int32) {
	u.level = min(max(level, 1), 100)
	if u.CanModifyStats() {
		u.UpdateAttackPower(false)
		u.UpdateAttackPower(true)
	}
}

// CanModifyStats implements unitmod.Owner.
func (u *Unit) CanModifyStats() bool {
	return u.bulkDepth == 0
}

// BeginBulkLoad suppresses recomputation until the matching EndBulkLoad.
// Calls nest.
func (u *Unit) BeginBulkLoad() {
	u.bulkDepth++
}

// EndBulkLoad re-enables recomputation and refreshes every derived value
// once the outermost bulk load ends.
func (u *Unit) EndBulkLoad() {
	if u.bulkDepth == 0 {
		return
	}
	u.bulkDepth--
	if u.bulkDepth == 0 {
		u.RecomputeAll()
	}
}

// RestoreModifiers loads stored modifiers as one bulk operation.
func (u *Unit) RestoreModifiers(entries []unitmod.Entry) error {
	u.BeginBulkLoad()
	defer u.EndBulkLoad()
	return u.mods.Restore(entries)
}

// PermanentModifiers returns the modifiers worth persisting.
func (u *Unit) PermanentModifiers() []unitmod.Entry {
	return u.mods.Entries(unitmod.BasePermanent, unitmod.TotalPermanent)
}

// --- Health ---

// CurrentHealth возвращает текущее HP.
func (u *Unit) CurrentHealth() int32 { return u.currentHP }

// MaxHealth возвращает максимальное HP.
func (u *Unit) MaxHealth() int32 { return u.maxHP }

// SetCurrentHealth устанавливает текущее HP с валидацией (clamp 0..maxHP).
func (u *Unit) SetCurrentHealth(hp int32) {
	u.currentHP = min(max(hp, 0), u.maxHP)
}

// ReduceCurrentHealth reduces HP by damage (minimum 0).
func (u *Unit) ReduceCurrentHealth(damage int32) {
	u.currentHP = max(u.currentHP-damage, 0)
}

// IsDead проверяет мёртв ли юнит (HP <= 0).
func (u *Unit) IsDead() bool {
	return u.currentHP <= 0
}

// HealthPercentage возвращает процент текущего HP (0.0 - 1.0).
func (u *Unit) HealthPercentage() float64 {
	if u.maxHP == 0 {
		return 0
	}
	return float64(u.currentHP) / float64(u.maxHP)
}

// setMaxHealth устанавливает максимальное HP. При уменьшении текущее HP
// обрезается, при увеличении масштабируется пропорционально.
func (u *Unit) setMaxHealth(maxHP int32) {
	maxHP = max(maxHP, 1)
	u.currentHP = rescaleCurrent(u.currentHP, u.maxHP, maxHP)
	u.maxHP = maxHP
}

// --- Powers ---

// CurrentPower returns the current amount of a power (mana, rage...).
func (u *Unit) CurrentPower(power unitmod.Stat) int32 {
	i, ok := powerIndex(power)
	if !ok {
		return 0
	}
	return u.currentPower[i]
}

// MaxPower returns the maximum of a power.
func (u *Unit) MaxPower(power unitmod.Stat) int32 {
	i, ok := powerIndex(power)
	if !ok {
		return 0
	}
	return u.maxPower[i]
}

// SetCurrentPower sets a power with clamp 0..max.
func (u *Unit) SetCurrentPower(power unitmod.Stat, value int32) {
	i, ok := powerIndex(power)
	if !ok {
		return
	}
	u.currentPower[i] = min(max(value, 0), u.maxPower[i])
}

func (u *Unit) setMaxPower(i int, value int32) {
	value = max(value, 0)
	u.currentPower[i] = rescaleCurrent(u.currentPower[i], u.maxPower[i], value)
	u.maxPower[i] = value
}

// rescaleCurrent keeps the current/max ratio when max grows and clamps when it shrinks.
func rescaleCurrent(current, oldMax, newMax int32) int32 {
	if newMax > oldMax && oldMax > 0 {
		return int32(math.Round(float64(current) * float64(newMax) / float64(oldMax)))
	}
	return min(current, newMax)
}

func powerIndex(power unitmod.Stat) (int, bool) {
	if power < unitmod.PowerMana || power > unitmod.PowerRunicPower {
		return 0, false
	}
	return int(power - unitmod.PowerMana), true
}
