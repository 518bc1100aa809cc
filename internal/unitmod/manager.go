package unitmod

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
)

// Owner is the unit a Manager belongs to. The Manager calls back into it
// after every committed mutation so derived values can be refreshed.
type Owner interface {
	// CanModifyStats gates recomputation, e.g. off during bulk loads.
	CanModifyStats() bool

	UpdateStat(stat Stat) // StatStrength..StatSpirit
	UpdateMaxHealth()
	UpdateMaxPower(power Stat)
	UpdateResistance(res Stat) // Armor and the spell schools
	UpdateSpellPower(healing bool)
	UpdateAttackPower(ranged bool)
	UpdateSpellDamage(school Stat)
	UpdateWeaponDamage(slot Stat)
}

// Entry is one stored modifier, as returned by Entries and consumed by Restore.
type Entry struct {
	Type ModType
	Stat Stat
	Mod  UnitMod
}

// Manager owns the sparse modifier store of a single unit.
//
// Not safe for concurrent use: a unit is mutated only by the tick that owns
// it. Reads do not mutate the store, but pruning can reshape it, so reads
// must not race with writes.
type Manager struct {
	owner  Owner
	store  *store // nil until the first write and after the last prune
	ledger *ledger
	log    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLedger records applied values so mismatched unapply calls are reported.
func WithLedger() Option {
	return func(m *Manager) { m.ledger = newLedger() }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates an empty manager. owner may be nil for detached calculations.
func NewManager(owner Owner, opts ...Option) *Manager {
	m := &Manager{owner: owner, log: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ModifyFlat applies (or unapplies) an additive amount.
func (m *Manager) ModifyFlat(stat Stat, t ModType, value float64, apply bool) {
	m.track(stat, t, kindFlat, value, 0, apply)
	m.writable(stat, t).Flat.Modify(value, apply)
	m.commit(stat, t)
}

// ModifyMult applies (or unapplies) a multiplier.
func (m *Manager) ModifyMult(stat Stat, t ModType, mult float64, apply bool) {
	m.track(stat, t, kindMult, mult, 0, apply)
	m.writable(stat, t).Mult.Modify(mult, apply)
	m.commit(stat, t)
}

// ModifyPercent is ModifyMult with percentage points.
func (m *Manager) ModifyPercent(stat Stat, t ModType, pct float64, apply bool) {
	m.ModifyMult(stat, t, PercentageToMultiplier(pct), apply)
}

// ModifyFlatMod merges a whole FlatModifier, both halves at once.
func (m *Manager) ModifyFlatMod(stat Stat, t ModType, f FlatModifier, apply bool) {
	m.track(stat, t, kindFlatMod, f.positive, f.negative, apply)
	m.writable(stat, t).Flat.ModifyBy(f, apply)
	m.commit(stat, t)
}

// ModifyMultMod merges a whole MultModifier, both products at once.
func (m *Manager) ModifyMultMod(stat Stat, t ModType, mm MultModifier, apply bool) {
	m.track(stat, t, kindMultMod, mm.positive, mm.negative, apply)
	m.writable(stat, t).Mult.ModifyBy(mm, apply)
	m.commit(stat, t)
}

// SetFlat replaces the flat part. Returns false, without recomputing,
// when the stored value already equals f.
func (m *Manager) SetFlat(stat Stat, t ModType, f FlatModifier) bool {
	if m.GetFlat(stat, t).Equal(f) {
		return false
	}
	m.forget(stat, t, kindFlat, kindFlatMod)
	m.writable(stat, t).Flat = f
	m.commit(stat, t)
	return true
}

// SetMult replaces the multiplicative part. Returns false, without
// recomputing, when the stored value already equals mm.
func (m *Manager) SetMult(stat Stat, t ModType, mm MultModifier) bool {
	if m.GetMult(stat, t).Equal(mm) {
		return false
	}
	m.forget(stat, t, kindMult, kindMultMod)
	m.writable(stat, t).Mult = mm
	m.commit(stat, t)
	return true
}

// ModifyMaxFlatWithExchange keeps only the largest of competing flat bonuses
// active. current is the value the caller has applied for the group (0 when
// none). If candidate is larger in magnitude, current is unapplied, candidate
// applied, and candidate returned. Otherwise nothing changes and current is
// returned.
func (m *Manager) ModifyMaxFlatWithExchange(stat Stat, t ModType, current, candidate float64) float64 {
	if math.Abs(candidate) <= math.Abs(current) {
		return current
	}
	mod := m.writable(stat, t)
	if current != 0 {
		m.track(stat, t, kindFlat, current, 0, false)
		mod.Flat.Modify(current, false)
	}
	m.track(stat, t, kindFlat, candidate, 0, true)
	mod.Flat.Modify(candidate, true)
	m.commit(stat, t)
	return candidate
}

// ModifyMaxMultWithExchange is ModifyMaxFlatWithExchange for multipliers.
// Magnitude is the distance from 1, and 1 means "nothing applied".
func (m *Manager) ModifyMaxMultWithExchange(stat Stat, t ModType, current, candidate float64) float64 {
	if math.Abs(candidate-1) <= math.Abs(current-1) {
		return current
	}
	mod := m.writable(stat, t)
	if current != 1 {
		m.track(stat, t, kindMult, current, 0, false)
		mod.Mult.Modify(current, false)
	}
	m.track(stat, t, kindMult, candidate, 0, true)
	mod.Mult.Modify(candidate, true)
	m.commit(stat, t)
	return candidate
}

// Get returns the stored modifier for (stat, t), or the identity and false.
func (m *Manager) Get(stat Stat, t ModType) (UnitMod, bool) {
	mustValidType(t)
	mustFamily(stat)
	if m.store == nil {
		return IdentityMod(t), false
	}
	if mod := m.store.find(t, stat); mod != nil {
		return *mod, true
	}
	return IdentityMod(t), false
}

// GetFlat returns the flat part for (stat, t).
func (m *Manager) GetFlat(stat Stat, t ModType) FlatModifier {
	mod, _ := m.Get(stat, t)
	return mod.Flat
}

// GetMult returns the multiplicative part for (stat, t).
func (m *Manager) GetMult(stat Stat, t ModType) MultModifier {
	mod, _ := m.Get(stat, t)
	return mod.Mult
}

// Cache snapshots the four tiers of a stat.
func (m *Manager) Cache(stat Stat, ignoreTemporary bool) Cache {
	c := newCache(ignoreTemporary)
	for t := ModType(0); t < ModTypeEnd; t++ {
		c.Mods[t], _ = m.Get(stat, t)
	}
	return c
}

// GetBase folds only the base tiers into value.
func (m *Manager) GetBase(stat Stat, value float64) float64 {
	c := m.Cache(stat, false)
	r := NewResult(value)
	c.ApplyBaseTo(&r)
	return r.TotalValue
}

// GetTotal folds all four tiers into value.
func (m *Manager) GetTotal(stat Stat, value float64) float64 {
	r := NewResult(value)
	m.ApplyModsTo(stat, &r, false)
	return r.TotalValue
}

// ApplyModsTo folds the stat's modifiers into r. extra modifiers are merged
// into their tier for this computation only and are never stored.
// An extra with a zero-value Mult contributes its flat part only.
func (m *Manager) ApplyModsTo(stat Stat, r *Result, ignoreTemporary bool, extra ...UnitMod) {
	c := m.Cache(stat, ignoreTemporary)
	for _, e := range extra {
		mustValidType(e.Type)
		if e.Mult == (MultModifier{}) {
			e.Mult = IdentityMult()
		}
		c.Mods[e.Type].ModifyBy(e, true)
	}
	c.ApplyTo(r)
}

// IsEmpty reports whether no modifier is stored.
func (m *Manager) IsEmpty() bool {
	return m.store == nil
}

// Len returns the number of stored (non-idle) modifiers.
func (m *Manager) Len() int {
	if m.store == nil {
		return 0
	}
	return m.store.len()
}

// Each visits stored modifiers in ascending (tier, family, stat) order.
func (m *Manager) Each(fn func(Entry)) {
	if m.store == nil {
		return
	}
	m.store.each(func(t ModType, stat Stat, mod UnitMod) {
		fn(Entry{Type: t, Stat: stat, Mod: mod})
	})
}

// Entries returns all stored modifiers, optionally filtered by tier.
func (m *Manager) Entries(types ...ModType) []Entry {
	var out []Entry
	m.Each(func(e Entry) {
		if len(types) == 0 || slices.Contains(types, e.Type) {
			out = append(out, e)
		}
	})
	return out
}

// Restore replaces the listed (stat, tier) modifiers with stored values.
// Callers should disable recomputation on the owner around bulk restores.
func (m *Manager) Restore(entries []Entry) error {
	for _, e := range entries {
		if !e.Type.Valid() {
			return fmt.Errorf("restoring %s: %w", e.Stat, ErrInvalidModType)
		}
		if _, err := FamilyOf(e.Stat); err != nil {
			return fmt.Errorf("restoring modifier: %w", err)
		}
		m.SetFlat(e.Stat, e.Type, e.Mod.Flat)
		m.SetMult(e.Stat, e.Type, e.Mod.Mult)
	}
	return nil
}

// LedgerMismatches returns how many unapply calls had no matching apply.
// Always 0 without WithLedger.
func (m *Manager) LedgerMismatches() int {
	if m.ledger == nil {
		return 0
	}
	return m.ledger.mismatches
}

// LedgerOutstanding returns how many recorded applications are still unpaired.
func (m *Manager) LedgerOutstanding() int {
	if m.ledger == nil {
		return 0
	}
	return m.ledger.outstanding()
}

func (m *Manager) writable(stat Stat, t ModType) *UnitMod {
	mustValidType(t)
	mustFamily(stat)
	if m.store == nil {
		m.store = &store{}
	}
	return m.store.findOrCreate(t, stat)
}

func (m *Manager) commit(stat Stat, t ModType) {
	m.store.checkForRemove(t, stat)
	if m.store.empty() {
		m.store = nil
	}
	m.update(stat)
}

// update dispatches the recompute callback for stat's family.
func (m *Manager) update(stat Stat) {
	if m.owner == nil {
		return
	}
	if !m.owner.CanModifyStats() {
		m.log.Debug("stat recompute suppressed", "stat", stat)
		return
	}

	switch mustFamily(stat) {
	case FamilyStat:
		if stat == StatHealth {
			m.owner.UpdateMaxHealth()
			return
		}
		m.owner.UpdateStat(stat)
	case FamilyPower:
		m.owner.UpdateMaxPower(stat)
	case FamilyResistance:
		m.owner.UpdateResistance(stat)
	case FamilySpellPower:
		m.owner.UpdateSpellPower(stat == SpellHealing)
	case FamilyAttackPower:
		m.owner.UpdateAttackPower(stat == AttackPowerRanged)
	case FamilySpellDamage:
		m.owner.UpdateSpellDamage(stat)
	case FamilyWeaponDamage:
		m.owner.UpdateWeaponDamage(stat)
	}
}

func (m *Manager) track(stat Stat, t ModType, kind ledgerKind, a, b float64, apply bool) {
	if m.ledger == nil {
		return
	}
	key := ledgerKey{stat: stat, typ: t, kind: kind, value: [2]float64{a, b}}
	if !m.ledger.record(key, apply) {
		m.log.Warn("unapplied modifier was never applied",
			"stat", stat,
			"type", t,
			"kind", kind,
			"value", a)
	}
}

func (m *Manager) forget(stat Stat, t ModType, kinds ...ledgerKind) {
	if m.ledger == nil {
		return
	}
	m.ledger.forget(stat, t, kinds...)
}

func mustValidType(t ModType) {
	if !t.Valid() {
		panic(fmt.Errorf("mod type %d: %w", uint8(t), ErrInvalidModType))
	}
}
