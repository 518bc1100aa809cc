package skill

import (
	"errors"
	"fmt"
)

// ErrUnknownEffect is returned by CreateEffect for an unregistered name.
var ErrUnknownEffect = errors.New("unknown effect type")

// EffectFactory builds an effect from its string params.
type EffectFactory func(params map[string]string) (Effect, error)

// effectRegistry maps effect name → factory function.
var effectRegistry = map[string]EffectFactory{}

// RegisterEffect registers an effect factory by name.
func RegisterEffect(name string, factory EffectFactory) {
	effectRegistry[name] = factory
}

// CreateEffect creates an effect by name using the registered factory.
// Returns error if name is not registered or params are invalid.
func CreateEffect(name string, params map[string]string) (Effect, error) {
	factory, ok := effectRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, name)
	}
	return factory(params)
}

func init() {
	RegisterEffect("Buff", NewBuffEffect)
	RegisterEffect("StatUp", NewStatUpEffect)
	RegisterEffect("DamageOverTime", NewDamageOverTimeEffect)
}
