// Package replay drives a form through a scripted sequence of interactions.
// Scripts are YAML step lists; each step carries exactly one interaction or
// one expectation about the resulting state:
//
//	name: signup-happy-path
//	steps:
//	  - focus: email
//	  - change: {field: email, value: a@b.com}
//	  - blur: email
//	  - expect: {valid: true, touched: [email]}
//	  - submit: {}
//	  - expect: {phase: succeeded}
//
// Submit steps simulate the server's answer: no keys accept the values,
// "fail" rejects them with field errors (a SubmissionError), and "error"
// returns an unrecognized error that leaves the form submitting.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/formstate/schema"
)

var (
	ErrInvalidScript = errors.New("invalid script")
	ErrExpectation   = errors.New("expectation failed")
)

type Script struct {
	Name  string `yaml:"name,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Step is one scripted interaction. Exactly one field is set.
type Step struct {
	Focus    string         `yaml:"focus,omitempty"`
	Blur     string         `yaml:"blur,omitempty"`
	Change   *Change        `yaml:"change,omitempty"`
	Rules    *Rules         `yaml:"rules,omitempty"`
	TouchAll bool           `yaml:"touchAll,omitempty"`
	Validate bool           `yaml:"validate,omitempty"`
	Errors   map[string]any `yaml:"errors,omitempty"`
	Submit   *Submit        `yaml:"submit,omitempty"`
	Expect   *Expect        `yaml:"expect,omitempty"`
}

type Change struct {
	Field string `yaml:"field"`
	Value any    `yaml:"value"`
}

// Rules replaces a field's validators with rules from the validators
// registry.
type Rules struct {
	Field string        `yaml:"field"`
	Rules []schema.Rule `yaml:"rules"`
}

type Submit struct {
	Fail  map[string]any `yaml:"fail,omitempty"`
	Error string         `yaml:"error,omitempty"`
}

// Expect checks the form after the previous steps. Unset fields are not
// checked; Values and FieldErrors must match as a whole.
type Expect struct {
	Values      map[string]any `yaml:"values,omitempty"`
	FieldErrors map[string]any `yaml:"fieldErrors,omitempty"`
	FormError   any            `yaml:"formError,omitempty"`
	Valid       *bool          `yaml:"valid,omitempty"`
	Dirty       *bool          `yaml:"dirty,omitempty"`
	Submitting  *bool          `yaml:"submitting,omitempty"`
	Active      *string        `yaml:"active,omitempty"`
	Touched     []string       `yaml:"touched,omitempty"`
	Phase       string         `yaml:"phase,omitempty"`
}

// Kind names the step's interaction, or "" when no field is set.
func (s Step) Kind() string {
	kinds := s.kinds()
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

func (s Step) kinds() []string {
	var kinds []string
	if s.Focus != "" {
		kinds = append(kinds, "focus")
	}
	if s.Blur != "" {
		kinds = append(kinds, "blur")
	}
	if s.Change != nil {
		kinds = append(kinds, "change")
	}
	if s.Rules != nil {
		kinds = append(kinds, "rules")
	}
	if s.TouchAll {
		kinds = append(kinds, "touchAll")
	}
	if s.Validate {
		kinds = append(kinds, "validate")
	}
	if s.Errors != nil {
		kinds = append(kinds, "errors")
	}
	if s.Submit != nil {
		kinds = append(kinds, "submit")
	}
	if s.Expect != nil {
		kinds = append(kinds, "expect")
	}
	return kinds
}

func (s *Script) Validate() error {
	for i, step := range s.Steps {
		kinds := step.kinds()
		switch len(kinds) {
		case 1:
		case 0:
			return fmt.Errorf("%w: step %d is empty", ErrInvalidScript, i)
		default:
			return fmt.Errorf("%w: step %d mixes %v", ErrInvalidScript, i, kinds)
		}

		switch {
		case step.Change != nil && step.Change.Field == "":
			return fmt.Errorf("%w: step %d: change needs a field", ErrInvalidScript, i)
		case step.Rules != nil && step.Rules.Field == "":
			return fmt.Errorf("%w: step %d: rules needs a field", ErrInvalidScript, i)
		case step.Submit != nil && step.Submit.Fail != nil && step.Submit.Error != "":
			return fmt.Errorf("%w: step %d: submit sets both fail and error", ErrInvalidScript, i)
		}
	}
	return nil
}

// Parse decodes a YAML script. Unknown keys are an error.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
