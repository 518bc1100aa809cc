package skill

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/udisondev/worldsim/internal/unitmod"
)

// StatUpEffect is a generic stat change effect.
// Params: "stat" (e.g. "attack_power"), "type" (mod tier, e.g. "total_temporary"),
// "kind" ("flat"/"mult"/"percent"), "value" (float64), "group" (optional).
//
// "Buff" is the same effect with total_temporary as the default tier,
// "StatUp" defaults to base_temporary.
type StatUpEffect struct {
	name string
	mod  StatModifier
}

// NewStatUpEffect builds a StatUp effect from params.
func NewStatUpEffect(params map[string]string) (Effect, error) {
	return newStatUpEffect("StatUp", unitmod.BaseTemporary, params)
}

// NewBuffEffect builds a Buff effect from params.
func NewBuffEffect(params map[string]string) (Effect, error) {
	return newStatUpEffect("Buff", unitmod.TotalTemporary, params)
}

func newStatUpEffect(name string, defaultType unitmod.ModType, params map[string]string) (Effect, error) {
	stat, err := unitmod.ParseStat(params["stat"])
	if err != nil {
		return nil, fmt.Errorf("%s effect: %w", name, err)
	}

	modType := defaultType
	if raw := params["type"]; raw != "" {
		if modType, err = unitmod.ParseModType(raw); err != nil {
			return nil, fmt.Errorf("%s effect: %w", name, err)
		}
	}

	kind, err := ParseModKind(params["kind"])
	if err != nil {
		return nil, fmt.Errorf("%s effect: %w", name, err)
	}

	value, err := strconv.ParseFloat(params["value"], 64)
	if err != nil {
		return nil, fmt.Errorf("%s effect value: %w", name, err)
	}
	if kind == ModMult && value <= 0 {
		return nil, fmt.Errorf("%s effect: multiplier must be positive, got %v", name, value)
	}
	if kind == ModPercent && value <= -100 {
		return nil, fmt.Errorf("%s effect: percent must be above -100, got %v", name, value)
	}

	return &StatUpEffect{
		name: name,
		mod: StatModifier{
			Stat:  stat,
			Type:  modType,
			Kind:  kind,
			Value: value,
			Group: params["group"],
		},
	}, nil
}

func (e *StatUpEffect) Name() string    { return e.name }
func (e *StatUpEffect) IsInstant() bool { return false }

func (e *StatUpEffect) OnStart(casterObjID uint32, target Target) {
	slog.Debug("stat up applied",
		"stat", e.mod.Stat,
		"kind", e.mod.Kind,
		"value", e.mod.Value,
		"target", target.ObjectID())
}

func (e *StatUpEffect) OnActionTime(casterObjID uint32, target Target) bool {
	return true
}

func (e *StatUpEffect) OnExit(casterObjID uint32, target Target) {
	slog.Debug("stat up removed", "stat", e.mod.Stat, "target", target.ObjectID())
}

// StatModifiers returns the stat modification.
func (e *StatUpEffect) StatModifiers() []StatModifier {
	return []StatModifier{e.mod}
}
