package data

import (
	"errors"
	"fmt"

	"github.com/udisondev/worldsim/internal/unitmod"
)

// ErrTemplateNotFound is returned when no template has the requested id.
var ErrTemplateNotFound = errors.New("unit template not found")

// Weapon: базовый урон оружия в слоте.
type Weapon struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Speed float64 `yaml:"speed"` // seconds per swing
}

// UnitTemplate holds the unmodified values a unit starts from.
// Modifiers from the unitmod package are folded on top of these.
type UnitTemplate struct {
	ID    int32
	Name  string
	Level int32

	base    [unitmod.StatEnd]float64
	weapons map[unitmod.Stat]Weapon
}

// BaseValue returns the template's base for stat (0 when not listed).
func (t *UnitTemplate) BaseValue(stat unitmod.Stat) float64 {
	if stat >= unitmod.StatEnd {
		return 0
	}
	return t.base[stat]
}

// Weapon returns the weapon for a damage slot.
func (t *UnitTemplate) Weapon(slot unitmod.Stat) (Weapon, bool) {
	w, ok := t.weapons[slot]
	return w, ok
}

// NewUnitTemplate builds a template from stat-keyed base values.
// Used by the YAML loader and by tests that need ad-hoc units.
func NewUnitTemplate(id int32, name string, level int32, base map[unitmod.Stat]float64, weapons map[unitmod.Stat]Weapon) (*UnitTemplate, error) {
	t := &UnitTemplate{
		ID:      id,
		Name:    name,
		Level:   level,
		weapons: make(map[unitmod.Stat]Weapon, len(weapons)),
	}
	for stat, v := range base {
		if _, err := unitmod.FamilyOf(stat); err != nil {
			return nil, fmt.Errorf("template %d base: %w", id, err)
		}
		t.base[stat] = v
	}
	for slot, w := range weapons {
		family, err := unitmod.FamilyOf(slot)
		if err != nil {
			return nil, fmt.Errorf("template %d weapon: %w", id, err)
		}
		if family != unitmod.FamilyWeaponDamage {
			return nil, fmt.Errorf("template %d weapon slot %s is not a weapon damage stat", id, slot)
		}
		if w.Speed <= 0 {
			return nil, fmt.Errorf("template %d weapon %s: speed must be positive", id, slot)
		}
		t.weapons[slot] = w
	}
	return t, nil
}
