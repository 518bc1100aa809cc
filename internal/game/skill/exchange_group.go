package skill

import (
	"cmp"
	"math"
	"slices"

	"github.com/udisondev/worldsim/internal/unitmod"
)

type groupKey struct {
	stat  unitmod.Stat
	typ   unitmod.ModType
	group string
	mult  bool
}

// groupState: участники группы и значение, реально применённое к юниту.
type groupState struct {
	members []float64
	active  float64
}

// exchangeGroups keeps, per (stat, tier, group), only the strongest member
// applied to the unit. Flat members compete by |v|, multipliers by |v-1|.
type exchangeGroups map[groupKey]*groupState

func keyOf(sm StatModifier) (groupKey, float64) {
	key := groupKey{stat: sm.Stat, typ: sm.Type, group: sm.Group, mult: sm.Kind != ModFlat}
	if key.mult {
		return key, sm.multiplier()
	}
	return key, sm.Value
}

func (k groupKey) identity() float64 {
	if k.mult {
		return 1
	}
	return 0
}

func (k groupKey) magnitude(v float64) float64 {
	return math.Abs(v - k.identity())
}

func (k groupKey) exchange(mods *unitmod.Manager, current, candidate float64) float64 {
	if k.mult {
		return mods.ModifyMaxMultWithExchange(k.stat, k.typ, current, candidate)
	}
	return mods.ModifyMaxFlatWithExchange(k.stat, k.typ, current, candidate)
}

func (k groupKey) unapply(mods *unitmod.Manager, v float64) {
	if k.mult {
		mods.ModifyMult(k.stat, k.typ, v, false)
		return
	}
	mods.ModifyFlat(k.stat, k.typ, v, false)
}

// enter adds a member and makes it active if it beats the current one.
func (g exchangeGroups) enter(mods *unitmod.Manager, sm StatModifier) {
	key, v := keyOf(sm)
	st := g[key]
	if st == nil {
		st = &groupState{active: key.identity()}
		g[key] = st
	}
	st.members = append(st.members, v)
	st.active = key.exchange(mods, st.active, v)
}

// leave removes a member. If it was the active one, it is unapplied and the
// strongest remaining member takes over.
func (g exchangeGroups) leave(mods *unitmod.Manager, sm StatModifier) {
	key, v := keyOf(sm)
	st := g[key]
	if st == nil {
		return
	}
	if i := slices.Index(st.members, v); i >= 0 {
		st.members = slices.Delete(st.members, i, i+1)
	}
	if slices.Contains(st.members, st.active) {
		return
	}

	idle := key.identity()
	if st.active != idle {
		key.unapply(mods, st.active)
	}
	st.active = idle

	if len(st.members) == 0 {
		delete(g, key)
		return
	}
	best := slices.MaxFunc(st.members, func(a, b float64) int {
		return cmp.Compare(key.magnitude(a), key.magnitude(b))
	})
	st.active = key.exchange(mods, idle, best)
}

// active returns the value currently applied for a group (identity when none).
func (g exchangeGroups) active(sm StatModifier) float64 {
	key, _ := keyOf(sm)
	if st := g[key]; st != nil {
		return st.active
	}
	return key.identity()
}
