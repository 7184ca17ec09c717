// Package schema describes forms declaratively. A Definition names a form,
// gives its initial values, and lists the rules for each field and for the
// form as a whole; Build turns it into a running form.Form.
//
// Definitions are YAML (or JSON, which YAML accepts):
//
//	name: signup
//	initialValues:
//	  email: ""
//	  password: ""
//	  confirm: ""
//	fields:
//	  - name: email
//	    rules:
//	      - {rule: required}
//	      - {rule: email, message: invalid email}
//	  - name: password
//	    rules:
//	      - {rule: minLength, arg: 8}
//	formRules:
//	  - {rule: equalFields, fields: [password, confirm], message: passwords differ}
package schema

import (
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/formstate/config"
	"github.com/tailored-agentic-units/formstate/form"
	"github.com/tailored-agentic-units/formstate/validators"
)

// ErrInvalidDefinition wraps every structural or rule error in a definition.
var ErrInvalidDefinition = errors.New("invalid form definition")

// Rule references a registered field rule by name.
type Rule struct {
	Rule    string `json:"rule" yaml:"rule"`
	Arg     any    `json:"arg,omitempty" yaml:"arg,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Field lists the rules for one field path. Rules run in order and a later
// failure replaces an earlier one.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Rules []Rule `json:"rules" yaml:"rules"`
}

// FormRule is a whole-form rule: "equalFields" or "requireAny".
type FormRule struct {
	Rule    string   `json:"rule" yaml:"rule"`
	Fields  []string `json:"fields" yaml:"fields"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
}

type Definition struct {
	Name          string         `json:"name" yaml:"name"`
	InitialValues map[string]any `json:"initialValues,omitempty" yaml:"initialValues,omitempty"`
	Fields        []Field        `json:"fields,omitempty" yaml:"fields,omitempty"`
	FormRules     []FormRule     `json:"formRules,omitempty" yaml:"formRules,omitempty"`
}

// Validate checks names and resolves every rule once, so Build cannot fail
// on a rule later.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}

	seen := make(map[string]bool, len(d.Fields))
	for i, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: %s: field %d has no name", ErrInvalidDefinition, d.Name, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: %s: field %s listed twice", ErrInvalidDefinition, d.Name, f.Name)
		}
		seen[f.Name] = true

		if _, err := BuildRules(f.Rules); err != nil {
			return fmt.Errorf("%w: %s: field %s: %w", ErrInvalidDefinition, d.Name, f.Name, err)
		}
	}

	if _, err := d.formValidator(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, d.Name, err)
	}
	return nil
}

// BuildRules resolves rules through the validators registry, in order.
func BuildRules(rules []Rule) ([]form.FieldValidator, error) {
	out := make([]form.FieldValidator, 0, len(rules))
	for _, r := range rules {
		v, err := validators.Build(r.Rule, r.Arg, r.Message)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *Definition) formValidator() (form.FormValidator, error) {
	if len(d.FormRules) == 0 {
		return nil, nil
	}

	rules := make([]form.FormValidator, 0, len(d.FormRules))
	for i, r := range d.FormRules {
		if len(r.Fields) == 0 {
			return nil, fmt.Errorf("form rule %d (%s) lists no fields", i, r.Rule)
		}
		switch r.Rule {
		case "equalFields":
			if len(r.Fields) < 2 {
				return nil, fmt.Errorf("form rule %d (equalFields) needs at least two fields", i)
			}
			rules = append(rules, validators.EqualFields(r.Fields, r.Message))
		case "requireAny":
			rules = append(rules, validators.RequireAny(r.Fields, r.Message))
		default:
			return nil, fmt.Errorf("%w: %s", validators.ErrUnknownRule, r.Rule)
		}
	}
	return validators.Combine(rules...), nil
}

// ValidatorOptions registers the definition's field and form rules without
// touching initial values. Use it with form.Resume.
func (d *Definition) ValidatorOptions() ([]form.Option, error) {
	opts := make([]form.Option, 0, len(d.Fields)+1)
	for _, f := range d.Fields {
		fns, err := BuildRules(f.Rules)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: field %s: %w", ErrInvalidDefinition, d.Name, f.Name, err)
		}
		opts = append(opts, form.WithFieldValidators(f.Name, fns...))
	}

	fv, err := d.formValidator()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, d.Name, err)
	}
	if fv != nil {
		opts = append(opts, form.WithFormValidator(fv))
	}
	return opts, nil
}

// Options returns the initial values followed by the validator options.
func (d *Definition) Options() ([]form.Option, error) {
	vopts, err := d.ValidatorOptions()
	if err != nil {
		return nil, err
	}
	return append([]form.Option{form.WithInitialValues(d.InitialValues)}, vopts...), nil
}

// Build creates a form from the definition. The config's name defaults to the
// definition's; extra options are applied after the definition's own.
func (d *Definition) Build(cfg config.FormConfig, opts ...form.Option) (*form.Form, error) {
	defOpts, err := d.Options()
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = d.Name
	}
	return form.New(cfg, append(defOpts, opts...)...)
}

// Resume rebuilds a checkpointed form and registers the definition's rules
// on it again.
func (d *Definition) Resume(cfg config.FormConfig, cp form.Checkpoint, opts ...form.Option) (*form.Form, error) {
	vopts, err := d.ValidatorOptions()
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = d.Name
	}
	return form.Resume(cfg, cp, append(vopts, opts...)...)
}
