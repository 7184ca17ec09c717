package form_test

import (
	"encoding/json"
	"testing"

	"github.com/tailored-agentic-units/formstate/form"
)

func TestView_Pristine(t *testing.T) {
	initial := map[string]any{
		"name":    "ada",
		"address": map[string]any{"city": "london"},
	}

	s := form.NewState(initial)
	v := form.Project(s)
	if !v.Pristine || v.Dirty {
		t.Fatalf("new state Pristine = %v, Dirty = %v", v.Pristine, v.Dirty)
	}

	s = reduceAll(t, s, form.ChangeValue("address.city", "paris"))
	v = form.Project(s)
	if v.Pristine || !v.Dirty {
		t.Errorf("after change Pristine = %v, Dirty = %v", v.Pristine, v.Dirty)
	}
	if !v.FieldDirty("address.city") {
		t.Error("changed field not dirty")
	}
	if !v.FieldPristine("name") {
		t.Error("untouched field not pristine")
	}

	s = reduceAll(t, s, form.ChangeValue("address.city", "london"))
	v = form.Project(s)
	if !v.Pristine || v.Dirty {
		t.Errorf("after round trip Pristine = %v, Dirty = %v", v.Pristine, v.Dirty)
	}
	if !v.FieldPristine("address.city") {
		t.Error("restored field not pristine")
	}
}

func TestView_FieldWithoutInitialValue(t *testing.T) {
	s := form.NewState(nil)
	v := form.Project(s)
	if !v.FieldPristine("nickname") {
		t.Error("absent field should be pristine")
	}

	s = reduceAll(t, s, form.ChangeValue("nickname", "al"))
	v = form.Project(s)
	if !v.FieldDirty("nickname") {
		t.Error("field set from nothing should be dirty")
	}
	if v.InitialValue("nickname") != nil {
		t.Errorf("InitialValue = %v, want nil", v.InitialValue("nickname"))
	}
}

func TestView_ValidFormError(t *testing.T) {
	s := reduceAll(t, form.NewState(nil),
		form.SetErrors(map[string]any{form.FormErrorKey: "server rejected"}),
	)
	if form.Project(s).Valid() {
		t.Error("form error did not make the form invalid")
	}

	s = reduceAll(t, s, form.SetErrors(map[string]any{"email": false}))
	if !form.Project(s).Valid() {
		t.Error("falsy field error made the form invalid")
	}
}

func TestView_UnknownField(t *testing.T) {
	v := form.Project(form.NewState(nil))

	if v.FieldActive("x") || v.FieldTouched("x") || v.FieldVisited("x") {
		t.Error("unknown field reported interaction flags")
	}
	if v.FieldValue("x.y[2]") != nil || v.FieldError("x") != nil {
		t.Error("unknown field reported a value or error")
	}
}

func TestRestoreView(t *testing.T) {
	initial := map[string]any{"name": "ada", "age": 36}
	s := form.NewState(initial)
	s, _ = form.Reduce(s, form.ChangeValue("name", "grace"))

	data, err := json.Marshal(form.Project(s))
	if err != nil {
		t.Fatal(err)
	}
	var decoded form.View
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	v := form.RestoreView(decoded.FormState, map[string]any{"name": "ada", "age": 36.0})
	if !v.Dirty || v.Pristine {
		t.Errorf("Dirty/Pristine = %t/%t, want true/false", v.Dirty, v.Pristine)
	}
	if !v.FieldDirty("name") {
		t.Error("name should be dirty")
	}
	if !v.FieldPristine("age") {
		t.Error("age should be pristine after a JSON round trip")
	}
	if got := v.InitialValue("name"); got != "ada" {
		t.Errorf("InitialValue(name) = %v, want %q", got, "ada")
	}

	if empty := form.RestoreView(form.FormState{}, nil); !empty.Pristine {
		t.Error("empty state with no initial values should be pristine")
	}
}
