package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tailored-agentic-units/formstate/config"
	"github.com/tailored-agentic-units/formstate/observability"
)

const signup = `
name: signup
initialValues: {email: ""}
fields:
  - name: email
    rules:
      - {rule: required}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Form.Observer = "noop"
	cfg.Form.Checkpoint.Store = ""
	cfg.Server.Addr = "127.0.0.1:0"
	return cfg
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "signup.yaml", signup)
	writeFile(t, dir, "notes.txt", "ignored")

	catalog, err := loadCatalog(dir)
	if err != nil {
		t.Fatalf("loadCatalog failed: %v", err)
	}
	if diff := cmp.Diff([]string{"signup"}, catalog.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	empty, err := loadCatalog("")
	if err != nil || len(empty.Names()) != 0 {
		t.Errorf("loadCatalog(\"\") = %v, %v", empty.Names(), err)
	}

	if _, err := loadCatalog(filepath.Join(dir, "missing")); err == nil {
		t.Error("loadCatalog(missing) succeeded")
	}
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	def := writeFile(t, dir, "signup.yaml", signup)
	script := writeFile(t, dir, "script.yaml", `
name: fill
steps:
  - change: {field: email, value: a@b.com}
  - submit: {}
`)

	recorder := observability.NewRecorder(0)
	var buf bytes.Buffer
	err := runScript(context.Background(), &buf, testConfig().Form, def, script, recorder, recorder)
	if err != nil {
		t.Fatalf("runScript failed: %v", err)
	}

	var out output
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if out.Name != "signup" || out.Steps != 2 || out.Phase != "succeeded" {
		t.Errorf("output = %+v", out)
	}
	if out.FormID == "" {
		t.Error("output has no form ID")
	}
	if out.View.Values["email"] != "a@b.com" {
		t.Errorf("email = %v", out.View.Values["email"])
	}
	if len(out.Events) == 0 {
		t.Error("recorded events were not written")
	}
}

func TestRunScript_FailedStep(t *testing.T) {
	dir := t.TempDir()
	def := writeFile(t, dir, "signup.yaml", signup)
	script := writeFile(t, dir, "script.yaml", "steps:\n  - expect: {valid: true}\n")

	var buf bytes.Buffer
	err := runScript(context.Background(), &buf, testConfig().Form, def, script, observability.NoOpObserver{}, nil)
	if err == nil {
		t.Fatal("runScript succeeded")
	}

	var out output
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if out.Error == "" || out.Steps != 0 {
		t.Errorf("output = %+v", out)
	}
}

func TestRunServer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "signup.yaml", signup)

	cfg := testConfig()
	cfg.Server.Definitions = dir
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := runServer(ctx, cfg, logger); err != nil {
		t.Errorf("runServer failed: %v", err)
	}

	cfg.Server.Definitions = filepath.Join(dir, "missing")
	if err := runServer(context.Background(), cfg, logger); err == nil {
		t.Error("runServer with a missing definitions directory succeeded")
	}
}
