package skill

import "github.com/udisondev/worldsim/internal/unitmod"

// Target is the unit an effect runs on.
type Target interface {
	ObjectID() uint32
	Mods() *unitmod.Manager
	CurrentHealth() int32
	ReduceCurrentHealth(damage int32)
	IsDead() bool
}

// Effect interface for all skill effects.
// Instant effects do work in OnStart and return true from IsInstant().
// Continuous effects tick via OnActionTime and clean up in OnExit.
//
// Stat changes are not applied by the effect itself: the EffectManager
// applies whatever StatModifierProvider reports on start and unapplies the
// same modifiers on exit.
type Effect interface {
	Name() string
	IsInstant() bool
	OnStart(casterObjID uint32, target Target)
	OnActionTime(casterObjID uint32, target Target) bool // returns true to continue
	OnExit(casterObjID uint32, target Target)
}

// ActiveEffect tracks a running effect on a unit.
type ActiveEffect struct {
	CasterObjID   uint32
	SkillID       int32
	SkillLevel    int32
	Effect        Effect
	RemainingMs   int32
	PeriodMs      int32 // 0 = no periodic OnActionTime
	AbnormalType  string
	AbnormalLevel int32

	elapsedMs int32
	applied   []StatModifier
}

// IsExpired returns true if the effect duration has elapsed.
func (ae *ActiveEffect) IsExpired() bool {
	return ae.RemainingMs <= 0
}

// Tick decrements remaining time by deltaMs.
// Returns true if effect is still active, false if expired.
func (ae *ActiveEffect) Tick(deltaMs int32) bool {
	ae.RemainingMs -= deltaMs
	return ae.RemainingMs > 0
}

// Applied returns the modifiers the effect currently holds on its target.
func (ae *ActiveEffect) Applied() []StatModifier {
	return ae.applied
}
