package skill

import (
	"fmt"
	"log/slog"
	"strconv"
)

// DamageOverTimeEffect deals periodic damage (DOT).
// Params: "power" (float64 per tick), "canKill" (bool, default false).
//
// If canKill is false, damage cannot reduce HP below 1.
type DamageOverTimeEffect struct {
	power   float64
	canKill bool
}

func NewDamageOverTimeEffect(params map[string]string) (Effect, error) {
	power, err := strconv.ParseFloat(params["power"], 64)
	if err != nil {
		return nil, fmt.Errorf("DamageOverTime effect power: %w", err)
	}
	var canKill bool
	if raw := params["canKill"]; raw != "" {
		if canKill, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("DamageOverTime effect canKill: %w", err)
		}
	}
	return &DamageOverTimeEffect{power: power, canKill: canKill}, nil
}

func (e *DamageOverTimeEffect) Name() string    { return "DamageOverTime" }
func (e *DamageOverTimeEffect) IsInstant() bool { return false }

func (e *DamageOverTimeEffect) OnStart(casterObjID uint32, target Target) {
	slog.Debug("dot started", "power", e.power, "canKill", e.canKill, "target", target.ObjectID())
}

func (e *DamageOverTimeEffect) OnActionTime(casterObjID uint32, target Target) bool {
	if target.IsDead() {
		return false // Stop ticking on dead target
	}

	damage := int32(e.power)
	if damage <= 0 {
		return true
	}

	// Kill protection: без canKill урон не опускает HP ниже 1.
	currentHP := target.CurrentHealth()
	if !e.canKill && damage >= currentHP {
		damage = currentHP - 1
		if damage <= 0 {
			return true
		}
	}

	target.ReduceCurrentHealth(damage)

	slog.Debug("dot tick",
		"power", e.power,
		"damage", damage,
		"target", target.ObjectID())

	return true
}

func (e *DamageOverTimeEffect) OnExit(casterObjID uint32, target Target) {
	slog.Debug("dot ended", "target", target.ObjectID())
}
