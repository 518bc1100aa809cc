package data

import (
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/worldsim/internal/unitmod"
)

//go:embed templates/units.yaml
var unitTemplatesYAML []byte

// UnitTemplates: все загруженные шаблоны по ID.
// Заполняется LoadUnitTemplates при старте сервера.
var UnitTemplates map[int32]*UnitTemplate

type unitTemplateDef struct {
	ID      int32              `yaml:"id"`
	Name    string             `yaml:"name"`
	Level   int32              `yaml:"level"`
	Base    map[string]float64 `yaml:"base"`
	Weapons map[string]Weapon  `yaml:"weapons"`
}

type unitTemplateFile struct {
	Units []unitTemplateDef `yaml:"units"`
}

// LoadUnitTemplates загружает встроенные шаблоны (templates/units.yaml).
func LoadUnitTemplates() error {
	return LoadUnitTemplatesFrom(unitTemplatesYAML)
}

// LoadUnitTemplatesFrom replaces UnitTemplates with the templates in raw.
func LoadUnitTemplatesFrom(raw []byte) error {
	templates, err := ParseUnitTemplates(raw)
	if err != nil {
		return err
	}
	UnitTemplates = templates
	slog.Info("loaded unit templates", "count", len(UnitTemplates))
	return nil
}

// ParseUnitTemplates decodes a YAML template document without touching the registry.
func ParseUnitTemplates(raw []byte) (map[int32]*UnitTemplate, error) {
	var file unitTemplateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing unit templates: %w", err)
	}

	out := make(map[int32]*UnitTemplate, len(file.Units))
	for i := range file.Units {
		def := &file.Units[i]
		if _, dup := out[def.ID]; dup {
			return nil, fmt.Errorf("duplicate unit template id %d", def.ID)
		}
		tmpl, err := convertUnitTemplateDef(def)
		if err != nil {
			return nil, err
		}
		out[tmpl.ID] = tmpl
	}
	return out, nil
}

// convertUnitTemplateDef конвертирует unitTemplateDef → UnitTemplate.
func convertUnitTemplateDef(def *unitTemplateDef) (*UnitTemplate, error) {
	base := make(map[unitmod.Stat]float64, len(def.Base))
	for name, v := range def.Base {
		stat, err := unitmod.ParseStat(name)
		if err != nil {
			return nil, fmt.Errorf("unit template %d: %w", def.ID, err)
		}
		base[stat] = v
	}

	weapons := make(map[unitmod.Stat]Weapon, len(def.Weapons))
	for name, w := range def.Weapons {
		slot, err := unitmod.ParseStat(name)
		if err != nil {
			return nil, fmt.Errorf("unit template %d: %w", def.ID, err)
		}
		weapons[slot] = w
	}

	return NewUnitTemplate(def.ID, def.Name, def.Level, base, weapons)
}

// GetUnitTemplate returns a loaded template by id.
func GetUnitTemplate(id int32) (*UnitTemplate, error) {
	tmpl, ok := UnitTemplates[id]
	if !ok {
		return nil, fmt.Errorf("unit template %d: %w", id, ErrTemplateNotFound)
	}
	return tmpl, nil
}
