package skill

import (
	"fmt"
	"strings"

	"github.com/udisondev/worldsim/internal/unitmod"
)

// ModKind defines how a stat modifier is folded into the unit's modifiers.
type ModKind int8

const (
	ModFlat    ModKind = iota // Additive bonus (e.g. +100 attack power)
	ModMult                   // Multiplier (e.g. ×1.2 armor)
	ModPercent                // Percentage points (e.g. +20% armor)
)

func (k ModKind) String() string {
	switch k {
	case ModFlat:
		return "flat"
	case ModMult:
		return "mult"
	case ModPercent:
		return "percent"
	}
	return fmt.Sprintf("mod_kind(%d)", int8(k))
}

// ParseModKind resolves a kind by name. "ADD"/"MUL" are accepted as aliases,
// an empty name means flat.
func ParseModKind(name string) (ModKind, error) {
	switch strings.ToLower(name) {
	case "", "flat", "add":
		return ModFlat, nil
	case "mult", "mul":
		return ModMult, nil
	case "percent", "pct":
		return ModPercent, nil
	}
	return 0, fmt.Errorf("unknown modifier kind %q", name)
}

// StatModifier represents a single stat modification from an effect.
// Modifiers with the same non-empty Group on the same (Stat, Type) do not
// stack: only the strongest one is active.
type StatModifier struct {
	Stat  unitmod.Stat
	Type  unitmod.ModType
	Kind  ModKind
	Value float64
	Group string
}

// multiplier returns the modifier as a factor (mult and percent kinds).
func (sm StatModifier) multiplier() float64 {
	if sm.Kind == ModPercent {
		return unitmod.PercentageToMultiplier(sm.Value)
	}
	return sm.Value
}

// applyTo applies or unapplies an ungrouped modifier.
func (sm StatModifier) applyTo(mods *unitmod.Manager, apply bool) {
	switch sm.Kind {
	case ModFlat:
		mods.ModifyFlat(sm.Stat, sm.Type, sm.Value, apply)
	case ModMult:
		mods.ModifyMult(sm.Stat, sm.Type, sm.Value, apply)
	case ModPercent:
		mods.ModifyPercent(sm.Stat, sm.Type, sm.Value, apply)
	}
}

// StatModifierProvider is optionally implemented by Effect types that modify stats.
type StatModifierProvider interface {
	StatModifiers() []StatModifier
}
