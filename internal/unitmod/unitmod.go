package unitmod

import "fmt"

// ModType is the tier a modifier is folded into:
//
//	value = ((base + baseFlat) * basePct + totalFlat) * totalPct
type ModType uint8

const (
	BasePermanent ModType = iota
	BaseTemporary
	TotalPermanent
	TotalTemporary

	ModTypeEnd
)

var modTypeNames = [ModTypeEnd]string{
	BasePermanent:  "base_permanent",
	BaseTemporary:  "base_temporary",
	TotalPermanent: "total_permanent",
	TotalTemporary: "total_temporary",
}

func (t ModType) String() string {
	if t < ModTypeEnd {
		return modTypeNames[t]
	}
	return fmt.Sprintf("mod_type(%d)", uint8(t))
}

// IsTemporary reports whether the tier is skipped when temporary modifiers are ignored.
func (t ModType) IsTemporary() bool {
	return t == BaseTemporary || t == TotalTemporary
}

// Valid reports whether t names a real tier.
func (t ModType) Valid() bool {
	return t < ModTypeEnd
}

// ParseModType resolves a tier by its String() name.
func ParseModType(name string) (ModType, error) {
	for i, n := range modTypeNames {
		if n == name {
			return ModType(i), nil
		}
	}
	return 0, fmt.Errorf("parsing mod type %q: %w", name, ErrInvalidModType)
}

// UnitMod pairs one flat and one multiplicative accumulator for a tier.
type UnitMod struct {
	Type ModType
	Flat FlatModifier
	Mult MultModifier
}

// IdentityMod returns the neutral modifier for a tier.
func IdentityMod(t ModType) UnitMod {
	return UnitMod{Type: t, Mult: IdentityMult()}
}

// IsIdle reports whether the modifier has no effect; idle modifiers are
// equivalent to absent ones.
func (u UnitMod) IsIdle() bool {
	return u.Flat.IsIdle() && u.Mult.IsIdle()
}

// ModifyBy merges (or removes) both halves of another modifier.
func (u *UnitMod) ModifyBy(other UnitMod, apply bool) {
	u.Flat.ModifyBy(other.Flat, apply)
	u.Mult.ModifyBy(other.Mult, apply)
}

// ApplyFlatTo adds the flat part to r.
//
// Only temporary tiers count toward ModPos: permanent flat bonuses are part
// of the naked value. Penalties always count toward ModNeg.
func (u UnitMod) ApplyFlatTo(r *Result) {
	if u.Flat.IsIdle() {
		return
	}
	r.TotalValue += u.Flat.TotalValue()
	if u.Type.IsTemporary() {
		r.ModPos += u.Flat.Positive()
	}
	r.ModNeg += u.Flat.Negative()
}

// ApplyMultTo scales r by the multiplicative part.
//
// Temporary tiers attribute statValue*(pos-1) to ModPos, measured against the
// value before scaling. TotalPermanent instead rescales ModPos itself, so the
// earlier positive contributions compound. Both branches are intentional.
func (u UnitMod) ApplyMultTo(r *Result) {
	if u.Mult.IsIdle() {
		return
	}
	switch {
	case u.Type.IsTemporary():
		r.ModPos += r.TotalValue * (u.Mult.Positive() - 1)
	case u.Type == TotalPermanent:
		r.ModPos *= u.Mult.Positive()
	}
	r.ModNeg -= r.TotalValue * (1 - u.Mult.Negative())
	r.TotalValue *= u.Mult.TotalValue()
}

// Result accumulates a stat computation.
type Result struct {
	TotalValue float64
	ModPos     float64 // positive contributions, for tooltips
	ModNeg     float64 // negative contributions
}

// NewResult starts a computation from a base value.
func NewResult(base float64) Result {
	return Result{TotalValue: base}
}

// NakedValue is the value without the attributed contributions.
func (r Result) NakedValue() float64 {
	return r.TotalValue - r.ModPos - r.ModNeg
}

// Cache is a snapshot of one stat's modifiers, one per tier.
// Missing tiers hold the identity modifier.
type Cache struct {
	Mods            [ModTypeEnd]UnitMod
	IgnoreTemporary bool
}

func newCache(ignoreTemporary bool) Cache {
	c := Cache{IgnoreTemporary: ignoreTemporary}
	for t := ModType(0); t < ModTypeEnd; t++ {
		c.Mods[t] = IdentityMod(t)
	}
	return c
}

// ApplyTo folds the snapshot into r. The order is fixed: base flat, base
// mult, total flat, total mult, permanent before temporary within each step.
func (c *Cache) ApplyTo(r *Result) {
	c.applyFlat(r, BasePermanent, BaseTemporary)
	c.applyMult(r, BasePermanent, BaseTemporary)
	c.applyFlat(r, TotalPermanent, TotalTemporary)
	c.applyMult(r, TotalPermanent, TotalTemporary)
}

// ApplyBaseTo folds only the base tiers.
func (c *Cache) ApplyBaseTo(r *Result) {
	c.applyFlat(r, BasePermanent, BaseTemporary)
	c.applyMult(r, BasePermanent, BaseTemporary)
}

func (c *Cache) applyFlat(r *Result, permanent, temporary ModType) {
	c.Mods[permanent].ApplyFlatTo(r)
	if !c.IgnoreTemporary {
		c.Mods[temporary].ApplyFlatTo(r)
	}
}

func (c *Cache) applyMult(r *Result, permanent, temporary ModType) {
	c.Mods[permanent].ApplyMultTo(r)
	if !c.IgnoreTemporary {
		c.Mods[temporary].ApplyMultTo(r)
	}
}
