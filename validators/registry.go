// Package validators provides ready-made field and form validators and a
// registry that resolves rule names, as written in form definitions, to
// validator factories.
package validators

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tailored-agentic-units/formstate/form"
)

// Factory builds a field validator from a rule's argument and message. An
// empty message selects the rule's default text.
type Factory func(arg any, message string) (form.FieldValidator, error)

type registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

var register = &registry{
	factories: map[string]Factory{
		"required":  requiredFactory,
		"minLength": minLengthFactory,
		"maxLength": maxLengthFactory,
		"pattern":   patternFactory,
		"email":     emailFactory,
		"oneOf":     oneOfFactory,
		"min":       minFactory,
		"max":       maxFactory,
	},
}

// Register adds a rule to the global registry.
// Returns ErrAlreadyExists if the name is taken; use Replace to override a
// rule, including a built-in one.
func Register(name string, factory Factory) error {
	if name == "" {
		return ErrEmptyName
	}

	register.mu.Lock()
	defer register.mu.Unlock()

	if _, exists := register.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}

	register.factories[name] = factory
	return nil
}

// Replace swaps the factory of a registered rule.
// Returns ErrUnknownRule if no rule with the given name is registered.
func Replace(name string, factory Factory) error {
	if name == "" {
		return ErrEmptyName
	}

	register.mu.Lock()
	defer register.mu.Unlock()

	if _, exists := register.factories[name]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownRule, name)
	}

	register.factories[name] = factory
	return nil
}

// Get retrieves a factory by rule name.
func Get(name string) (Factory, bool) {
	register.mu.RLock()
	defer register.mu.RUnlock()

	f, exists := register.factories[name]
	return f, exists
}

// List returns the registered rule names in sorted order.
func List() []string {
	register.mu.RLock()
	defer register.mu.RUnlock()

	names := make([]string, 0, len(register.factories))
	for name := range register.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build resolves a rule name and constructs its validator.
// Returns ErrUnknownRule if the rule is not registered. Factory errors are
// wrapped with the rule name.
func Build(name string, arg any, message string) (form.FieldValidator, error) {
	register.mu.RLock()
	factory, exists := register.factories[name]
	register.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRule, name)
	}

	v, err := factory(arg, message)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", name, err)
	}
	return v, nil
}
