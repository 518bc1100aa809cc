package unitmod

import "math"

// idleEpsilon absorbs floating-point residue left by apply/unapply pairs.
const idleEpsilon = 1e-9

// FlatModifier accumulates additive bonuses and penalties separately,
// so a +10 and a -10 are both kept instead of netting to nothing.
//
// Invariant (given correct apply/unapply pairing): positive >= 0, negative <= 0.
type FlatModifier struct {
	positive float64
	negative float64
}

// FlatFromValue builds a modifier holding a single applied value.
func FlatFromValue(v float64) FlatModifier {
	var f FlatModifier
	f.Modify(v, true)
	return f
}

// NewFlat rebuilds a modifier from stored halves.
func NewFlat(positive, negative float64) FlatModifier {
	return FlatModifier{positive: positive, negative: negative}
}

// FlatFromInt is FlatFromValue for integral amounts.
func FlatFromInt(v int32) FlatModifier {
	return FlatFromValue(float64(v))
}

func (f FlatModifier) Positive() float64 { return f.positive }
func (f FlatModifier) Negative() float64 { return f.negative }

// TotalValue returns positive + negative.
func (f FlatModifier) TotalValue() float64 {
	return f.positive + f.negative
}

// IntValue returns the total truncated toward zero.
func (f FlatModifier) IntValue() int32 {
	return int32(f.TotalValue())
}

// IsIdle reports whether both halves are at the additive identity.
func (f FlatModifier) IsIdle() bool {
	return math.Abs(f.positive) <= idleEpsilon && math.Abs(f.negative) <= idleEpsilon
}

// Modify applies value, or reverses a previous application of the same value.
// The bucket is chosen by the sign of value, so the reversal lands in the
// bucket the application went to. It only cancels out when the caller passes
// the exact value it applied.
func (f *FlatModifier) Modify(value float64, apply bool) {
	delta := value
	if !apply {
		delta = -value
	}
	if value > 0 {
		f.positive = snapZero(f.positive + delta)
	} else {
		f.negative = snapZero(f.negative + delta)
	}
}

// ModifyBy merges (or removes) another modifier half by half.
func (f *FlatModifier) ModifyBy(other FlatModifier, apply bool) {
	sign := 1.0
	if !apply {
		sign = -1
	}
	f.positive = snapZero(f.positive + sign*other.positive)
	f.negative = snapZero(f.negative + sign*other.negative)
}

// Equal compares both halves within the idle tolerance.
func (f FlatModifier) Equal(other FlatModifier) bool {
	return math.Abs(f.positive-other.positive) <= idleEpsilon &&
		math.Abs(f.negative-other.negative) <= idleEpsilon
}

// MultModifier accumulates multiplicative bonuses (> 1) and penalties (< 1)
// in separate products. A x1.5 and a x0.5 compose to x0.75, never to x1.
//
// Invariant (given correct pairing): positive >= 1, 0 < negative <= 1.
// Nothing clamps the product: non-positive multipliers are the caller's problem.
type MultModifier struct {
	positive float64
	negative float64
}

// IdentityMult returns a modifier at the multiplicative identity.
func IdentityMult() MultModifier {
	return MultModifier{positive: 1, negative: 1}
}

// NewMult rebuilds a modifier from stored products.
func NewMult(positive, negative float64) MultModifier {
	return MultModifier{positive: positive, negative: negative}
}

// MultFromValue builds a modifier holding a single applied multiplier.
func MultFromValue(m float64) MultModifier {
	mm := IdentityMult()
	mm.Modify(m, true)
	return mm
}

// MultFromPercent builds a modifier from percentage points (+20 -> x1.2).
func MultFromPercent(pct float64) MultModifier {
	return MultFromValue(PercentageToMultiplier(pct))
}

// PercentageToMultiplier converts percentage points to a multiplier.
func PercentageToMultiplier(pct float64) float64 {
	return 1 + pct/100
}

// MultiplierToPercentage converts a multiplier to percentage points.
func MultiplierToPercentage(m float64) float64 {
	return (m - 1) * 100
}

// Positive returns the product of all bonuses.
func (m MultModifier) Positive() float64 { return m.positive }

// Negative returns the product of all penalties.
func (m MultModifier) Negative() float64 { return m.negative }

// TotalValue returns positive * negative.
func (m MultModifier) TotalValue() float64 {
	return m.positive * m.negative
}

// Percent returns TotalValue as percentage points.
func (m MultModifier) Percent() float64 {
	return MultiplierToPercentage(m.TotalValue())
}

// IsIdle reports whether both products are at the multiplicative identity.
// The zero value is not idle; use IdentityMult.
func (m MultModifier) IsIdle() bool {
	return math.Abs(m.positive-1) <= idleEpsilon && math.Abs(m.negative-1) <= idleEpsilon
}

// Modify applies a multiplier, or reverses it by applying its reciprocal
// to the product the multiplier was folded into.
func (m *MultModifier) Modify(mult float64, apply bool) {
	factor := mult
	if !apply {
		factor = 1 / mult
	}
	if mult > 1 {
		m.positive = snapOne(m.positive * factor)
	} else {
		m.negative = snapOne(m.negative * factor)
	}
}

// ModifyPercent is Modify for percentage points.
func (m *MultModifier) ModifyPercent(pct float64, apply bool) {
	m.Modify(PercentageToMultiplier(pct), apply)
}

// ModifyBy merges (or removes) another modifier product by product.
func (m *MultModifier) ModifyBy(other MultModifier, apply bool) {
	if apply {
		m.positive = snapOne(m.positive * other.positive)
		m.negative = snapOne(m.negative * other.negative)
		return
	}
	m.positive = snapOne(m.positive / other.positive)
	m.negative = snapOne(m.negative / other.negative)
}

// snapZero drops residue an apply/unapply pair leaves around 0,
// so a bucket never drifts to the wrong side of its sign.
func snapZero(v float64) float64 {
	if math.Abs(v) <= idleEpsilon {
		return 0
	}
	return v
}

// snapOne is snapZero for multiplicative products.
func snapOne(v float64) float64 {
	if math.Abs(v-1) <= idleEpsilon {
		return 1
	}
	return v
}

// Equal compares both products within the idle tolerance.
func (m MultModifier) Equal(other MultModifier) bool {
	return math.Abs(m.positive-other.positive) <= idleEpsilon &&
		math.Abs(m.negative-other.negative) <= idleEpsilon
}
