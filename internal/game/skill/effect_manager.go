package skill

import (
	"log/slog"
	"slices"
	"sync"
)

const (
	maxBuffs   = 24
	maxDebuffs = 8
)

// EffectManager tracks active buffs/debuffs of one unit and keeps the
// unit's modifiers in sync with them.
//
// The mutex serializes effect changes; the unit's modifiers must not be
// mutated concurrently from elsewhere.
type EffectManager struct {
	mu       sync.RWMutex
	target   Target
	buffs    []*ActiveEffect
	debuffs  []*ActiveEffect
	passives []*ActiveEffect

	groups exchangeGroups
}

// NewEffectManager creates a new empty EffectManager for target.
func NewEffectManager(target Target) *EffectManager {
	return &EffectManager{
		target:   target,
		buffs:    make([]*ActiveEffect, 0, maxBuffs),
		debuffs:  make([]*ActiveEffect, 0, maxDebuffs),
		passives: make([]*ActiveEffect, 0, 8),
		groups:   make(exchangeGroups),
	}
}

// Target returns the unit the manager belongs to.
func (m *EffectManager) Target() Target {
	return m.target
}

// AddBuff adds a buff effect with stacking check.
// Returns true if the effect was added/replaced, false if rejected.
//
// Stacking rules (same AbnormalType):
//   - Higher AbnormalLevel → replaces existing
//   - Same AbnormalLevel → refreshes duration
//   - Lower AbnormalLevel → rejected
//
// If buff limit (24) is reached, oldest buff is removed.
func (m *EffectManager) AddBuff(ae *ActiveEffect) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	added, list := m.add(m.buffs, ae, maxBuffs)
	m.buffs = list
	return added
}

// AddDebuff adds a debuff effect with stacking check.
// Same stacking rules as AddBuff, with 8 debuff limit.
func (m *EffectManager) AddDebuff(ae *ActiveEffect) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	added, list := m.add(m.debuffs, ae, maxDebuffs)
	m.debuffs = list
	return added
}

func (m *EffectManager) add(list []*ActiveEffect, ae *ActiveEffect, limit int) (bool, []*ActiveEffect) {
	if ae.AbnormalType != "" {
		for i, existing := range list {
			if existing.AbnormalType != ae.AbnormalType {
				continue
			}
			switch {
			case ae.AbnormalLevel > existing.AbnormalLevel:
				m.exit(existing)
				list[i] = ae
				m.start(ae)
				return true, list
			case ae.AbnormalLevel == existing.AbnormalLevel:
				existing.RemainingMs = ae.RemainingMs
				return true, list
			default:
				return false, list
			}
		}
	}

	if len(list) >= limit {
		oldest := list[0]
		m.exit(oldest)
		list = slices.Delete(list, 0, 1)

		slog.Debug("effect limit reached, removed oldest",
			"removedSkill", oldest.SkillID,
			"target", m.target.ObjectID())
	}

	list = append(list, ae)
	m.start(ae)
	return true, list
}

// AddPassive adds a passive effect (no stacking or limit checks).
// A passive with the same skill ID is replaced.
func (m *EffectManager) AddPassive(ae *ActiveEffect) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.passives {
		if existing.SkillID == ae.SkillID {
			m.exit(existing)
			m.passives[i] = ae
			m.start(ae)
			return
		}
	}

	m.passives = append(m.passives, ae)
	m.start(ae)
}

// RemoveEffect removes all effects with the given AbnormalType.
func (m *EffectManager) RemoveEffect(abnormalType string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	match := func(ae *ActiveEffect) bool { return ae.AbnormalType == abnormalType }
	m.buffs = m.removeFunc(m.buffs, match)
	m.debuffs = m.removeFunc(m.debuffs, match)
}

// RemoveBySkillID removes effects with a specific skill ID.
func (m *EffectManager) RemoveBySkillID(skillID int32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	match := func(ae *ActiveEffect) bool { return ae.SkillID == skillID }
	m.buffs = m.removeFunc(m.buffs, match)
	m.debuffs = m.removeFunc(m.debuffs, match)
	m.passives = m.removeFunc(m.passives, match)
}

// ExitAll ends every effect, passives included. Used when the unit leaves the world.
func (m *EffectManager) ExitAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := func(*ActiveEffect) bool { return true }
	m.buffs = m.removeFunc(m.buffs, all)
	m.debuffs = m.removeFunc(m.debuffs, all)
	m.passives = m.removeFunc(m.passives, all)
}

// Tick advances timers on buffs and debuffs by deltaMs: periodic effects
// run OnActionTime once per elapsed period, expired effects are removed.
func (m *EffectManager) Tick(deltaMs int32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buffs = m.tickEffects(m.buffs, deltaMs)
	m.debuffs = m.tickEffects(m.debuffs, deltaMs)
}

// ActiveBuffs returns a copy of active buff effects.
func (m *EffectManager) ActiveBuffs() []*ActiveEffect {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.buffs)
}

// ActiveDebuffs returns a copy of active debuff effects.
func (m *EffectManager) ActiveDebuffs() []*ActiveEffect {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.debuffs)
}

// BuffCount returns current number of active buffs.
func (m *EffectManager) BuffCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.buffs)
}

// DebuffCount returns current number of active debuffs.
func (m *EffectManager) DebuffCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.debuffs)
}

// PassiveCount returns current number of passives.
func (m *EffectManager) PassiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.passives)
}

// start runs OnStart and applies the effect's stat modifiers.
// Must be called with mu held.
func (m *EffectManager) start(ae *ActiveEffect) {
	ae.Effect.OnStart(ae.CasterObjID, m.target)

	provider, ok := ae.Effect.(StatModifierProvider)
	if !ok {
		return
	}
	ae.applied = slices.Clone(provider.StatModifiers())
	mods := m.target.Mods()
	for _, sm := range ae.applied {
		if sm.Group != "" {
			m.groups.enter(mods, sm)
			continue
		}
		sm.applyTo(mods, true)
	}
}

// exit unapplies exactly the modifiers start applied, then runs OnExit.
// Must be called with mu held.
func (m *EffectManager) exit(ae *ActiveEffect) {
	mods := m.target.Mods()
	for _, sm := range ae.applied {
		if sm.Group != "" {
			m.groups.leave(mods, sm)
			continue
		}
		sm.applyTo(mods, false)
	}
	ae.applied = nil

	ae.Effect.OnExit(ae.CasterObjID, m.target)
}

// removeFunc removes effects matching fn, calling exit for each.
func (m *EffectManager) removeFunc(effects []*ActiveEffect, fn func(*ActiveEffect) bool) []*ActiveEffect {
	n := 0
	for _, ae := range effects {
		if fn(ae) {
			m.exit(ae)
		} else {
			effects[n] = ae
			n++
		}
	}
	clear(effects[n:])
	return effects[:n]
}

// tickEffects decrements timers, runs periodic actions and removes expired effects.
func (m *EffectManager) tickEffects(effects []*ActiveEffect, deltaMs int32) []*ActiveEffect {
	return m.removeFunc(effects, func(ae *ActiveEffect) bool {
		if !m.runPeriodic(ae, deltaMs) {
			return true
		}
		return !ae.Tick(deltaMs)
	})
}

// runPeriodic returns false when the effect asked to stop.
func (m *EffectManager) runPeriodic(ae *ActiveEffect, deltaMs int32) bool {
	if ae.PeriodMs <= 0 {
		return true
	}
	ae.elapsedMs += min(deltaMs, max(ae.RemainingMs, 0))
	for ae.elapsedMs >= ae.PeriodMs {
		ae.elapsedMs -= ae.PeriodMs
		if !ae.Effect.OnActionTime(ae.CasterObjID, m.target) {
			return false
		}
	}
	return true
}
