package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validSDL = `type Query { hello: String }`

func writeSchema(t *testing.T, name, sdl string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(sdl), 0644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return path
}

func TestRunMissingCommand(t *testing.T) {
	if err := run(nil); err == nil {
		t.Fatal("expected error for missing command")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	err := run([]string{"frobnicate"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckValidSchema(t *testing.T) {
	path := writeSchema(t, "schema.graphql", validSDL)
	if err := run([]string{"check", "-schema", path}); err != nil {
		t.Fatalf("check failed: %v", err)
	}
}

func TestCheckInvalidSchema(t *testing.T) {
	path := writeSchema(t, "schema.graphql", `type Query { hello: Missing }`)
	err := run([]string{"check", "-schema", path})
	if err == nil || !strings.Contains(err.Error(), "invalid schema") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckRequiresSchemaFlag(t *testing.T) {
	if err := run([]string{"check"}); err == nil {
		t.Fatal("expected error without -schema")
	}
}

func TestCheckMergesDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.graphql"), []byte(`type Query { user: User }`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.graphql"), []byte(`type User { id: ID! }`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := run([]string{"check", "-schema", dir}); err != nil {
		t.Fatalf("check failed: %v", err)
	}
}

func TestRenderToFile(t *testing.T) {
	path := writeSchema(t, "schema.graphql", validSDL)
	out := filepath.Join(t.TempDir(), "out.graphql")
	if err := run([]string{"render", "-schema", path, "-out", out}); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(content), "type Query") {
		t.Fatalf("unexpected render output:\n%s", content)
	}
}
